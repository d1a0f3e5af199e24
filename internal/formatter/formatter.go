// package formatter renders playlists, memories and activity logs for display and export (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/reminisce/internal/models"
)

// DefaultTruncateLength is used by [Truncate] for non-positive lengths.
const DefaultTruncateLength = 50

// FormatDate renders epoch ms as "January 2, 2006" in local time. Zero is "Unknown date".
func FormatDate(ms int64) string {
	if ms == 0 {
		return "Unknown date"
	}
	return models.FromMillis(ms).Local().Format("January 2, 2006")
}

// FormatDateTime renders epoch ms as "January 2, 2006 at 03:04 PM" in local time.
func FormatDateTime(ms int64) string {
	if ms == 0 {
		return "Unknown date"
	}
	return models.FromMillis(ms).Local().Format("January 2, 2006 at 03:04 PM")
}

// FormatTime renders a position in milliseconds as MM:SS.
func FormatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatDuration renders seconds as m:ss, or h:mm:ss from an hour up.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds) * time.Second
	h, m, s := int(d.Hours()), int(d.Minutes())%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Truncate shortens text to max runes, appending "...".
func Truncate(text string, max int) string {
	if max <= 0 {
		max = DefaultTruncateLength
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// Track is one exported song row.
type Track struct {
	models.PlaylistSong
	Tags []string
}

// Export is the format-neutral view of a playlist or memory.
type Export struct {
	Kind        string
	ID          string
	Title       string
	Description string
	Date        string
	CreatedAt   int64
	Tracks      []Track

	// Metadata is written alongside CSV exports.
	Metadata any
}

func FromPlaylist(p models.Playlist) *Export {
	tracks := make([]Track, 0, len(p.Songs))
	for _, s := range p.Songs {
		tracks = append(tracks, Track{PlaylistSong: s})
	}
	meta := p
	meta.Songs = nil
	return &Export{
		Kind:        "playlist",
		ID:          p.ID,
		Title:       p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		Tracks:      tracks,
		Metadata:    meta,
	}
}

func FromMemory(m models.Memory) *Export {
	tracks := make([]Track, 0, len(m.Songs))
	for _, s := range m.Songs {
		tags := make([]string, 0, len(s.MemoryTags))
		for _, tag := range s.MemoryTags {
			tags = append(tags, tag.Label)
		}
		tracks = append(tracks, Track{PlaylistSong: s.PlaylistSong, Tags: tags})
	}
	meta := m
	meta.Songs = nil
	return &Export{
		Kind:        "memory",
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Date:        m.Date,
		CreatedAt:   m.CreatedAt,
		Tracks:      tracks,
		Metadata:    meta,
	}
}

func (e *Export) totalDuration() int {
	total := 0
	for _, t := range e.Tracks {
		total += t.Duration
	}
	return total
}

// ExportToCSV writes columns ID, Title, Artist, Album, Duration, URI, Tags.
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Title", "Artist", "Album", "Duration", "URI", "Tags"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			strconv.Itoa(track.Duration),
			track.URI,
			strings.Join(track.Tags, "; "),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Title)
	if export.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", export.Description)
	}
	if export.Date != "" {
		fmt.Fprintf(&buf, "**When**: %s\n", export.Date)
	}
	fmt.Fprintf(&buf, "**Created**: %s\n", FormatDate(export.CreatedAt))
	fmt.Fprintf(&buf, "**Songs**: %d\n", len(export.Tracks))
	fmt.Fprintf(&buf, "**Total time**: %s\n\n", FormatDuration(export.totalDuration()))

	buf.WriteString("## Songs\n\n")
	for i, track := range export.Tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.Artist, track.Title, albumPart, FormatDuration(track.Duration))
		if len(track.Tags) > 0 {
			fmt.Fprintf(&buf, "   - Tags: %s\n", strings.Join(track.Tags, ", "))
		}
	}
	return buf.Bytes(), nil
}

func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	label := "Playlist"
	if export.Kind == "memory" {
		label = "Memory"
	}
	fmt.Fprintf(&buf, "%s: %s\n", label, export.Title)
	if export.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.Description)
	}
	fmt.Fprintf(&buf, "Songs: %d\n\n", len(export.Tracks))

	for i, track := range export.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.Artist, track.Title)
	}
	return buf.Bytes(), nil
}

// ToMetadataJSON renders the entity without its songs.
func ToMetadataJSON(export *Export) ([]byte, error) {
	return MarshalJSON(export.Metadata, true)
}

// MarshalJSON encodes v, indented when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// LogsToCSV writes columns ID, Time, Type, Description.
func LogsToCSV(entries []models.ActivityLogEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Time", "Type", "Description"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, e := range entries {
		record := []string{e.ID, models.FromMillis(e.Timestamp).UTC().Format(time.RFC3339), string(e.ActivityType), e.Describe()}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// LogsToText renders one line per entry, newest first as given.
func LogsToText(entries []models.ActivityLogEntry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		fmt.Fprintf(&buf, "%s  %s\n", FormatDateTime(e.Timestamp), e.Describe())
		if d, ok := e.Details.(*models.CaregiverNoteDetails); ok && d.Note != "" {
			fmt.Fprintf(&buf, "    Note: %s\n", d.Note)
		}
	}
	return buf.Bytes()
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport writes {base}_songs.csv and {base}_metadata.json. base defaults to the export ID.
func WriteCSVExport(export *Export, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.ID
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_songs.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{TracksFile: tracksFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
}

// WriteMarkdownExport writes {dir}/README.md. dir defaults to the export ID.
func WriteMarkdownExport(export *Export, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = export.ID
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return &MarkdownExportResult{Directory: outputDir, Files: []string{mdFile}}, nil
}

// WriteTextExport writes plain text, defaulting to {ID}_songs.txt.
func WriteTextExport(export *Export, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_songs.txt", export.ID)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// WriteJSONExport writes the full entity, songs included, to path (default {ID}.json).
func WriteJSONExport(export *Export, entity any, path string) (string, error) {
	if path == "" {
		path = export.ID + ".json"
	}
	data, err := MarshalJSON(entity, true)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}
	return path, nil
}

// ManifestItem is one entry of an export manifest.
type ManifestItem struct {
	Kind   string   `json:"kind"`
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Status string   `json:"status"`
	Files  []string `json:"files,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// Manifest summarizes a bulk export.
type Manifest struct {
	ExportedAt        string         `json:"exported_at"`
	Format            string         `json:"format"`
	OutputDirectory   string         `json:"output_directory"`
	Total             int            `json:"total"`
	SuccessfulExports int            `json:"successful_exports"`
	FailedExports     int            `json:"failed_exports"`
	Items             []ManifestItem `json:"items"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m Manifest, path string) error {
	if m.ExportedAt == "" {
		m.ExportedAt = time.Now().UTC().Format(time.RFC3339)
	}
	data, err := MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
