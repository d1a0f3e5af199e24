package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchEntities Phase = iota
	PublishSongs
	ExportEntity
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchEntities:
		return "fetch_entities"
	case PublishSongs:
		return "publish_songs"
	case ExportEntity:
		return "export_entity"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingEntitiesUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchEntities,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Fetching %d playlists and memories...", total),
	}
}

func publishSongUpdate(step, total int, title string, err error) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✓ %s", step, total, title)
	if err != nil {
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err)
	}
	return ProgressUpdate{
		Phase:   PublishSongs,
		Step:    step,
		Total:   total,
		Message: msg,
	}
}

func exportingUpdate(step, total int, job exportJob) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportEntity,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting %s: %s...", step, total, job.kind, job.name),
	}
}

func exportCompletedUpdate(step, total int, res ExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportEntity,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, res.Name, len(res.Files)),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res ExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportEntity,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Name, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote manifest %s", path),
	}
}
