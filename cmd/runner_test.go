package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/reminisce/internal/auth"
	"github.com/desertthunder/reminisce/internal/cache"
	"github.com/desertthunder/reminisce/internal/remote"
	"github.com/desertthunder/reminisce/internal/shared"
	tu "github.com/desertthunder/reminisce/internal/testing"
	"github.com/urfave/cli/v3"
)

const testOwner = "owner-1"

type testApp struct {
	runner *Runner
	output *bytes.Buffer
	remote *tu.MemoryRemote
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	output := &bytes.Buffer{}
	rem := tu.NewMemoryRemote()
	runner := NewRunner(RunnerOpts{
		Config: shared.DefaultConfig(),
		Output: output,
		Cache:  cache.NewMemoryCache(),
		Remote: rem,
		Auth:   auth.Static{UID: testOwner},
	})
	t.Cleanup(func() { runner.Close() })
	return &testApp{runner: runner, output: output, remote: rem}
}

// run executes one command line against the shared runner and returns what it printed.
func (a *testApp) run(args ...string) (string, error) {
	a.output.Reset()
	app := &cli.Command{
		Name: "reminisce",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config"},
			&cli.BoolFlag{Name: "verbose"},
		},
		Before:   a.runner.before,
		Commands: a.runner.register(),
	}
	err := app.Run(context.Background(), append([]string{"reminisce"}, args...))
	return a.output.String(), err
}

func (a *testApp) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := a.run(args...)
	if err != nil {
		t.Fatalf("%v: unexpected error: %v", args, err)
	}
	return out
}

// createdID extracts the "ID: ..." line printed by the create commands.
func createdID(t *testing.T, out string) string {
	t.Helper()
	for line := range strings.Lines(out) {
		if id, ok := strings.CutPrefix(strings.TrimSpace(line), "ID: "); ok {
			return id
		}
	}
	t.Fatalf("no id in output %q", out)
	return ""
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			c := cache.NewMemoryCache()
			rem := tu.NewMemoryRemote()
			a := auth.Static{UID: testOwner}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Cache:      c,
				Remote:     rem,
				Auth:       a,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.cache != c {
				t.Error("expected cache to be set")
			}
			if runner.remote != rem {
				t.Error("expected remote to be set")
			}
			if runner.auth != a {
				t.Error("expected auth to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient")
			}
		})

		t.Run("does not open the store eagerly", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.store != nil || runner.session != nil {
				t.Error("expected store to be built on first use")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: tu.NewLimitedWriter(1, &bytes.Buffer{})})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes formatted text", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("Hello %s\n", "World"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "Hello World\n" {
				t.Errorf("expected %q, got %q", "Hello World\n", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		names := map[string]bool{}
		for _, cmd := range runner.register() {
			if cmd == nil {
				t.Fatal("nil command registered")
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "songs", "moods", "playlists", "memories", "logs", "prefs", "clear", "auth", "catalog", "export", "serve"} {
			if !names[want] {
				t.Errorf("expected command %q to be registered", want)
			}
		}
	})
}

func TestLibraryCommands(t *testing.T) {
	app := newTestApp(t)

	t.Run("songs list prints the catalog", func(t *testing.T) {
		out := app.mustRun(t, "songs", "list")
		if !strings.Contains(out, "Moon River") || !strings.Contains(out, "Songs (15)") {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("songs show unknown id", func(t *testing.T) {
		_, err := app.run("songs", "show", "999")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("songs mood filters", func(t *testing.T) {
		out := app.mustRun(t, "songs", "mood", "sad")
		if !strings.Contains(out, "Too Sad To Cry") {
			t.Errorf("expected sad songs, got %s", out)
		}
		if strings.Contains(out, "Happy Place") {
			t.Errorf("unexpected happy song in %s", out)
		}
	})

	t.Run("songs mood without argument", func(t *testing.T) {
		_, err := app.run("songs", "mood")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("moods json", func(t *testing.T) {
		out := app.mustRun(t, "moods", "--json")
		if !strings.Contains(out, `"id":"happy"`) {
			t.Errorf("expected happy mood, got %s", out)
		}
	})
}

func TestPlaylistCommands(t *testing.T) {
	app := newTestApp(t)

	out := app.mustRun(t, "playlists", "create", "--name", "Evening", "--mood", "relaxing", "--song", "1", "--song", "3")
	id := createdID(t, out)

	t.Run("create writes through to the remote", func(t *testing.T) {
		if n := app.remote.Len(remote.Playlists); n != 1 {
			t.Errorf("expected 1 remote playlist, got %d", n)
		}
	})

	t.Run("list", func(t *testing.T) {
		out := app.mustRun(t, "playlists", "list")
		if !strings.Contains(out, "Evening") {
			t.Errorf("expected playlist in list, got %s", out)
		}
	})

	t.Run("show", func(t *testing.T) {
		out := app.mustRun(t, "pl", "show", id)
		if !strings.Contains(out, "Moon River") || !strings.Contains(out, "What a Wonderful World") {
			t.Errorf("expected songs in detail, got %s", out)
		}
	})

	t.Run("update removes and adds songs", func(t *testing.T) {
		app.mustRun(t, "playlists", "update", id, "--name", "Night", "--remove", "1", "--add", "10")

		out := app.mustRun(t, "playlists", "show", id, "--json")
		if !strings.Contains(out, `"name":"Night"`) {
			t.Errorf("expected renamed playlist, got %s", out)
		}
		if strings.Contains(out, "What a Wonderful World") {
			t.Errorf("expected song 1 removed, got %s", out)
		}
		if !strings.Contains(out, "Relax") {
			t.Errorf("expected song 10 added, got %s", out)
		}
	})

	t.Run("create with unknown song", func(t *testing.T) {
		_, err := app.run("playlists", "create", "--name", "Bad", "--song", "999")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("create without name", func(t *testing.T) {
		if _, err := app.run("playlists", "create"); err == nil {
			t.Error("expected missing required flag error")
		}
	})

	t.Run("play logs the playlist", func(t *testing.T) {
		out := app.mustRun(t, "playlists", "play", id)
		if !strings.Contains(out, "Now playing: JJ Heller - Moon River") {
			t.Errorf("unexpected output: %s", out)
		}
		app.runner.session.Wait()

		out = app.mustRun(t, "logs", "list", "--filter", "playlists", "--format", "json")
		for _, want := range []string{"playlist_created", "playlist_updated", "playlist_played"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %s in logs, got %s", want, out)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		app.mustRun(t, "playlists", "delete", id)

		_, err := app.run("playlists", "show", id)
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if n := app.remote.Len(remote.Playlists); n != 0 {
			t.Errorf("expected remote playlist removed, got %d", n)
		}
	})

	t.Run("show without id", func(t *testing.T) {
		_, err := app.run("playlists", "show")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestMemoryCommands(t *testing.T) {
	app := newTestApp(t)

	out := app.mustRun(t, "memories", "create", "--title", "Our Wedding", "--date", "Summer 1965", "--song", "1", "--tag", "3:wedding")
	id := createdID(t, out)

	t.Run("tagged songs are attached", func(t *testing.T) {
		out := app.mustRun(t, "mem", "show", id)
		for _, want := range []string{"Our Wedding", "When: Summer 1965", "Moon River", "Wedding Day"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in %s", want, out)
			}
		}
	})

	t.Run("tag replaces song tags", func(t *testing.T) {
		app.mustRun(t, "memories", "tag", id, "--song", "3", "--tag", "family", "--tag", "favorite")

		out := app.mustRun(t, "memories", "show", id)
		if strings.Contains(out, "Wedding Day") {
			t.Errorf("expected old tag replaced, got %s", out)
		}
		if !strings.Contains(out, "Family Moments") || !strings.Contains(out, "Favorite Song") {
			t.Errorf("expected new tags, got %s", out)
		}
	})

	t.Run("tag song outside memory", func(t *testing.T) {
		_, err := app.run("memories", "tag", id, "--song", "12", "--tag", "family")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("unknown tag", func(t *testing.T) {
		_, err := app.run("memories", "create", "--title", "X", "--tag", "3:graduation")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("malformed tag", func(t *testing.T) {
		_, err := app.run("memories", "create", "--title", "X", "--tag", "wedding")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("logs memory activity", func(t *testing.T) {
		out := app.mustRun(t, "logs", "list", "--filter", "memories", "--format", "json")
		if !strings.Contains(out, "memory_created") {
			t.Errorf("expected memory_created, got %s", out)
		}

		out = app.mustRun(t, "logs", "list", "--format", "json")
		if !strings.Contains(out, "tag_updated") {
			t.Errorf("expected tag_updated, got %s", out)
		}
	})

	t.Run("delete", func(t *testing.T) {
		app.mustRun(t, "memories", "delete", id)
		out := app.mustRun(t, "memories", "list")
		if !strings.Contains(out, "No memories yet") {
			t.Errorf("expected empty list, got %s", out)
		}
	})
}

func TestLogCommands(t *testing.T) {
	app := newTestApp(t)

	app.mustRun(t, "logs", "react", "--song", "3", "--reaction", "happy")
	app.mustRun(t, "logs", "note", "--song", "3", "--note", "Hummed along")
	app.runner.session.Wait()

	t.Run("filter reactions", func(t *testing.T) {
		out := app.mustRun(t, "logs", "list", "--filter", "reactions", "--format", "json")
		if !strings.Contains(out, "reaction_recorded") {
			t.Errorf("expected reaction, got %s", out)
		}
		if strings.Contains(out, "caregiver_note_added") {
			t.Errorf("expected notes filtered out, got %s", out)
		}
	})

	t.Run("text shows note", func(t *testing.T) {
		out := app.mustRun(t, "logs", "list", "--filter", "notes")
		if !strings.Contains(out, "Hummed along") {
			t.Errorf("expected note text, got %s", out)
		}
	})

	t.Run("csv to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs.csv")
		app.mustRun(t, "logs", "list", "--format", "csv", "--output", path)

		tu.AssertFileExists(t, path)
		content := tu.MustReadFile(t, path)
		if !strings.Contains(content, "reaction_recorded") || !strings.Contains(content, "caregiver_note_added") {
			t.Errorf("unexpected csv: %s", content)
		}
	})

	t.Run("unknown reaction", func(t *testing.T) {
		_, err := app.run("logs", "react", "--song", "3", "--reaction", "ecstatic")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("unknown filter", func(t *testing.T) {
		_, err := app.run("logs", "list", "--filter", "everything")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := app.run("logs", "list", "--format", "xml")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestPrefsAndClear(t *testing.T) {
	app := newTestApp(t)

	t.Run("set and show", func(t *testing.T) {
		app.mustRun(t, "prefs", "set", "theme", "dark")
		app.mustRun(t, "prefs", "set", "caregiver-mode", "true")

		out := app.mustRun(t, "prefs", "show", "--json")
		if !strings.Contains(out, `"theme":"dark"`) || !strings.Contains(out, `"caregiverMode":true`) {
			t.Errorf("unexpected prefs: %s", out)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
			want error
		}{
			{"bad theme", []string{"prefs", "set", "theme", "purple"}, shared.ErrInvalidArgument},
			{"bad bool", []string{"prefs", "set", "welcome-seen", "maybe"}, shared.ErrInvalidArgument},
			{"unknown key", []string{"prefs", "set", "volume", "11"}, shared.ErrInvalidArgument},
			{"missing value", []string{"prefs", "set", "theme"}, shared.ErrMissingArgument},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := app.run(tt.args...)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("clear requires confirmation", func(t *testing.T) {
		_, err := app.run("clear")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("clear keeps preferences", func(t *testing.T) {
		app.mustRun(t, "playlists", "create", "--name", "Morning", "--song", "6")
		app.mustRun(t, "clear", "--yes")

		out := app.mustRun(t, "playlists", "list")
		if !strings.Contains(out, "No playlists yet") {
			t.Errorf("expected playlists cleared, got %s", out)
		}
		if n := app.remote.Len(remote.Playlists); n != 0 {
			t.Errorf("expected remote playlists cleared, got %d", n)
		}

		out = app.mustRun(t, "prefs", "show")
		if !strings.Contains(out, "dark") {
			t.Errorf("expected theme to survive clear, got %s", out)
		}
	})
}

func TestCatalogAndExport(t *testing.T) {
	app := newTestApp(t)

	t.Run("publish pushes every song", func(t *testing.T) {
		out := app.mustRun(t, "catalog", "publish", "--rate", "500")
		if !strings.Contains(out, "Published 15/15 songs") {
			t.Errorf("unexpected output: %s", out)
		}
		if n := app.remote.Len(remote.Songs); n != 15 {
			t.Errorf("expected 15 remote songs, got %d", n)
		}
	})

	t.Run("export writes files and manifest", func(t *testing.T) {
		out := app.mustRun(t, "playlists", "create", "--name", "Evening", "--song", "3")
		id := createdID(t, out)

		dir := t.TempDir()
		out = app.mustRun(t, "export", "--format", "txt", "--output", dir)
		if !strings.Contains(out, "Exported:   1/1") {
			t.Errorf("unexpected output: %s", out)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		content := tu.MustReadFile(t, filepath.Join(dir, "playlist_"+id+"_songs.txt"))
		if !strings.Contains(content, "1. JJ Heller - Moon River") {
			t.Errorf("unexpected export: %s", content)
		}
	})

	t.Run("export rejects unknown format", func(t *testing.T) {
		_, err := app.run("export", "--format", "xml", "--output", t.TempDir())
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestAuthAndServe(t *testing.T) {
	t.Run("status reports the owner", func(t *testing.T) {
		app := newTestApp(t)
		out := app.mustRun(t, "auth", "status")
		if !strings.Contains(out, testOwner) {
			t.Errorf("expected owner in output, got %s", out)
		}
	})

	t.Run("signout with static identity", func(t *testing.T) {
		app := newTestApp(t)
		out := app.mustRun(t, "auth", "signout")
		if !strings.Contains(out, "Static identity") {
			t.Errorf("unexpected output: %s", out)
		}
	})

	t.Run("serve needs postgres", func(t *testing.T) {
		app := newTestApp(t)
		_, err := app.run("serve")
		if !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
