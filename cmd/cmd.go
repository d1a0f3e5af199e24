// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/reminisce/internal/tasks"
	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func idArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "id"}}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create config.toml if missing, then initialize the local cache and remote schema",
		Action: r.Setup,
	}
}

func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Browse the song catalog",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List every catalog song",
				Flags:  jsonFlags(),
				Action: r.SongsList,
			},
			{
				Name:      "show",
				Usage:     "Show one song",
				Arguments: idArg(),
				Flags:     jsonFlags(),
				Action:    r.SongsShow,
			},
			{
				Name:      "mood",
				Usage:     "List songs tagged with a mood",
				Arguments: []cli.Argument{&cli.StringArg{Name: "mood"}},
				Flags:     jsonFlags(),
				Action:    r.SongsByMood,
			},
		},
	}
}

func moodsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "moods",
		Usage:  "List mood categories present in the catalog",
		Flags:  jsonFlags(),
		Action: r.Moods,
	}
}

func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Manage playlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List playlists",
				Flags:  jsonFlags(),
				Action: r.PlaylistsList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist and its songs",
				Arguments: idArg(),
				Flags:     jsonFlags(),
				Action:    r.PlaylistsShow,
			},
			{
				Name:  "create",
				Usage: "Create a playlist from catalog songs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Playlist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Playlist description",
					},
					&cli.StringFlag{
						Name:  "mood",
						Usage: "Mood category id",
					},
					&cli.StringSliceFlag{
						Name:  "song",
						Usage: "Catalog song id to add (repeatable)",
					},
				},
				Action: r.PlaylistsCreate,
			},
			{
				Name:      "update",
				Usage:     "Rename a playlist or change its songs",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "New name",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "New description",
					},
					&cli.StringFlag{
						Name:  "mood",
						Usage: "New mood category id",
					},
					&cli.StringSliceFlag{
						Name:  "add",
						Usage: "Catalog song id to append (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "remove",
						Usage: "Song id to remove (repeatable)",
					},
				},
				Action: r.PlaylistsUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete a playlist",
				Arguments: idArg(),
				Action:    r.PlaylistsDelete,
			},
			{
				Name:      "play",
				Usage:     "Start a playlist and log it",
				Arguments: idArg(),
				Action:    r.PlaylistsPlay,
			},
		},
	}
}

func memoriesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "memories",
		Aliases: []string{"mem"},
		Usage:   "Manage memories",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List memories",
				Flags:  jsonFlags(),
				Action: r.MemoriesList,
			},
			{
				Name:      "show",
				Usage:     "Show a memory with its songs and tags",
				Arguments: idArg(),
				Flags:     jsonFlags(),
				Action:    r.MemoriesShow,
			},
			{
				Name:  "create",
				Usage: "Create a memory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Memory title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Free-text period, e.g. \"Summer 1965\"",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Memory description",
					},
					&cli.StringSliceFlag{
						Name:  "song",
						Usage: "Catalog song id to attach (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Memory tag as songID:tagID (repeatable)",
					},
				},
				Action: r.MemoriesCreate,
			},
			{
				Name:      "tag",
				Usage:     "Replace the tags of one song in a memory",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "song",
						Usage:    "Song id within the memory",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Memory tag id (repeatable, none clears)",
					},
				},
				Action: r.MemoriesTag,
			},
			{
				Name:      "delete",
				Usage:     "Delete a memory",
				Arguments: idArg(),
				Action:    r.MemoriesDelete,
			},
			{
				Name:      "play",
				Usage:     "Start a memory and log it",
				Arguments: idArg(),
				Action:    r.MemoriesPlay,
			},
		},
	}
}

func logsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "Activity log",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show recent activity, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "filter",
						Usage: "all, playlists, memories, songs, reactions or notes",
						Value: "all",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of entries",
						Value: 50,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: text, csv, json",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.LogsList,
			},
			{
				Name:  "react",
				Usage: "Record a patient reaction to a song",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "song",
						Usage:    "Catalog song id",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "reaction",
						Usage:    "Reaction id (happy, calm, nostalgic, neutral, sad, agitated, no_response)",
						Required: true,
					},
				},
				Action: r.LogsReact,
			},
			{
				Name:  "note",
				Usage: "Add a caregiver note for a song",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "song",
						Usage:    "Catalog song id",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "note",
						Usage:    "Note text",
						Required: true,
					},
				},
				Action: r.LogsNote,
			},
		},
	}
}

func prefsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Device preferences (never synced)",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show preferences",
				Flags:  jsonFlags(),
				Action: r.PrefsShow,
			},
			{
				Name:  "set",
				Usage: "Set a preference: theme (light|dark), caregiver-mode or welcome-seen (true|false)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
					&cli.StringArg{Name: "value"},
				},
				Action: r.PrefsSet,
			},
		},
	}
}

func clearCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete all playlists, memories and activity, locally and remotely",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "Confirm the wipe",
			},
		},
		Action: r.Clear,
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Remote identity",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show the signed-in owner and whether the remote store answers",
				Action: r.AuthStatus,
			},
			{
				Name:   "signout",
				Usage:  "Forget stored anonymous credentials",
				Action: r.AuthSignOut,
			},
		},
	}
}

func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Shared song catalog",
		Commands: []*cli.Command{
			{
				Name:  "publish",
				Usage: "Push the bundled catalog to the remote songs collection",
				Flags: []cli.Flag{
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Songs per second (default from config)",
					},
				},
				Action: r.CatalogPublish,
			},
		},
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export playlists and memories to files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: json, csv, markdown, txt",
				Value:   tasks.FormatJSON,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: reminisce_export_{epoch})",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent export workers (max 10)",
				Value: 5,
			},
			&cli.StringSliceFlag{
				Name:  "playlist",
				Usage: "Playlist id to export (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "memory",
				Usage: "Memory id to export (repeatable)",
			},
		},
		Action: r.Export,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the document server backed by PostgreSQL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default from config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default from config)",
			},
		},
		Action: r.Serve,
	}
}
