package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/moodtune/internal/models"
	"github.com/desertthunder/moodtune/internal/services"
	"github.com/desertthunder/moodtune/internal/shared"
	tu "github.com/desertthunder/moodtune/internal/testing"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

type fakeDeezer struct {
	tu.MockExporter
	token *oauth2.Token
}

func (f *fakeDeezer) AuthURL(state string) string {
	return "https://connect.deezer.test/oauth/auth.php?state=" + state
}

func (f *fakeDeezer) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: code}, nil
}

func (f *fakeDeezer) SetToken(token *oauth2.Token) { f.token = token }

func sampleResult() *models.DiscoverResult {
	return &models.DiscoverResult{
		Success: true,
		Tracks: []models.Track{
			{ID: "11", Title: "First", Artist: "A", Album: "One", PreviewURL: "https://cdn/11.mp3", Link: "https://deezer.test/track/11", Duration: 30},
			{ID: "12", Title: "Second", Artist: "B", Album: "Two", Link: "https://deezer.test/track/12", Duration: 95},
		},
		Metadata: models.Metadata{InterpretedMood: "Calm", Energy: models.EnergyLow, Genres: []string{"ambient"}},
	}
}

func authenticated() *fakeDeezer {
	return &fakeDeezer{MockExporter: tu.MockExporter{
		AuthStatus: models.AuthStatus{Enabled: true, Authenticated: true},
		Playlist: &models.ExportedPlaylist{
			ID: "99", Title: "MoodTune: Calm", URL: "https://www.deezer.com/playlist/99", AppURL: "deezer://www.deezer.com/playlist/99", TrackCount: 2,
		},
	}}
}

// newTestRunner wires a runner to a temp database and config file.
func newTestRunner(t *testing.T, discovery services.Discoverer, deezer DeezerClient) (*Runner, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(dir, "moodtune.db")
	configPath := filepath.Join(dir, "config.toml")
	if err := shared.SaveConfig(configPath, config); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Discovery:  discovery,
		Deezer:     deezer,
		Logger:     shared.NewLogger(io.Discard),
		Output:     output,
	})
	t.Cleanup(func() { runner.Close() })
	return runner, output
}

func run(r *Runner, args ...string) error {
	app := &cli.Command{Name: "moodtune", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"moodtune"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			discovery := &tu.MockDiscoverer{}
			deezer := &fakeDeezer{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Discovery:  discovery,
				Deezer:     deezer,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
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
			if runner.discovery != discovery {
				t.Error("expected discovery to be set")
			}
			if runner.deezer != deezer {
				t.Error("expected deezer to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.configPath != "" {
				t.Errorf("expected empty configPath, got %s", runner.configPath)
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

			if err := runner.writeJSON(map[string]string{"key": "<value>"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"<value>"}` + "\n"
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
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("stops at the first failed write", func(t *testing.T) {
			buf := &bytes.Buffer{}
			limited := tu.NewLimitedWriter(1, 0, buf)
			runner := NewRunner(RunnerOpts{Output: &limited})

			if err := runner.writePlain("first\n"); err != nil {
				t.Fatalf("expected first write to succeed, got %v", err)
			}
			if err := runner.writePlainln("second"); err == nil {
				t.Fatal("expected error from exhausted writer")
			}
			if buf.String() != "first\n" {
				t.Errorf("unexpected output %q", buf.String())
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		seen := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if seen[cmd.Name] {
				t.Errorf("duplicate command %q", cmd.Name)
			}
			seen[cmd.Name] = true
		}
		for _, name := range []string{"setup", "discover", "deezer", "voice", "settings", "cache", "health", "tui"} {
			if !seen[name] {
				t.Errorf("expected %q to be registered", name)
			}
		}
	})

	t.Run("saveTokens", func(t *testing.T) {
		t.Run("saves tokens to config and client", func(t *testing.T) {
			deezer := &fakeDeezer{}
			runner, _ := newTestRunner(t, nil, deezer)

			token := &oauth2.Token{AccessToken: "new_access_token"}
			if err := runner.saveTokens(token); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			loaded, err := shared.LoadConfig(runner.configPath)
			if err != nil {
				t.Fatalf("failed to reload config: %v", err)
			}
			if loaded.Credentials.Deezer.AccessToken != "new_access_token" {
				t.Errorf("expected access token to be saved, got %q", loaded.Credentials.Deezer.AccessToken)
			}
			if deezer.token != token {
				t.Error("expected client session to be updated")
			}
		})

		t.Run("handles nil config error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/tmp/test.toml"})
			runner.config = nil

			err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})
			if err == nil || !strings.Contains(err.Error(), "config is nil") {
				t.Errorf("expected nil config error, got %v", err)
			}
		})

		t.Run("empty configPath keeps the change in memory", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{Config: config})

			if err := runner.saveTokens(&oauth2.Token{AccessToken: "in_memory"}); err != nil {
				t.Fatalf("expected no error with empty path, got %v", err)
			}
			if config.Credentials.Deezer.AccessToken != "in_memory" {
				t.Error("expected config to be updated in memory")
			}
		})

		t.Run("handles SaveConfig failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: filepath.Join(t.TempDir(), "missing", "config.toml")})

			err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})
			if err == nil || !strings.Contains(err.Error(), "failed to save config") {
				t.Errorf("expected save config error, got %v", err)
			}
		})

		t.Run("rejects an empty token", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			err := runner.saveTokens(nil)
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("expected invalid credentials, got %v", err)
			}
			if err == nil || !strings.Contains(err.Error(), "failed to update deezer configuration") {
				t.Errorf("expected update error, got %v", err)
			}
		})
	})
}

func TestDiscover(t *testing.T) {
	t.Run("prints tracks", func(t *testing.T) {
		mock := &tu.MockDiscoverer{Result: sampleResult()}
		r, out := newTestRunner(t, mock, nil)

		if err := run(r, "discover", "a calm rainy evening at home"); err != nil {
			t.Fatalf("discover failed: %v", err)
		}

		for _, want := range []string{"Mood: Calm", "1. A - First", "2. B - Second"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("expected %q in output:\n%s", want, out.String())
			}
		}
		if mock.Requests[0].Language != models.English {
			t.Errorf("expected default language, got %q", mock.Requests[0].Language)
		}
	})

	t.Run("second run is served from cache", func(t *testing.T) {
		mock := &tu.MockDiscoverer{Result: sampleResult()}
		r, out := newTestRunner(t, mock, nil)

		for range 2 {
			if err := run(r, "discover", "a calm rainy evening at home"); err != nil {
				t.Fatalf("discover failed: %v", err)
			}
		}
		if mock.Calls() != 1 {
			t.Errorf("expected one backend call, got %d", mock.Calls())
		}
		if !strings.Contains(out.String(), "served from cache") {
			t.Error("expected cache notice")
		}
	})

	t.Run("no-cache skips the cache", func(t *testing.T) {
		mock := &tu.MockDiscoverer{Result: sampleResult()}
		r, _ := newTestRunner(t, mock, nil)

		for range 2 {
			if err := run(r, "discover", "--no-cache", "a calm rainy evening at home"); err != nil {
				t.Fatalf("discover failed: %v", err)
			}
		}
		if mock.Calls() != 2 {
			t.Errorf("expected two backend calls, got %d", mock.Calls())
		}
	})

	t.Run("json output with language", func(t *testing.T) {
		mock := &tu.MockDiscoverer{Result: sampleResult()}
		r, out := newTestRunner(t, mock, nil)

		if err := run(r, "discover", "--json", "--lang", "es", "una tarde tranquila de lluvia"); err != nil {
			t.Fatalf("discover failed: %v", err)
		}
		if !strings.Contains(out.String(), `"interpreted_mood": "Calm"`) {
			t.Errorf("expected JSON result, got %s", out.String())
		}
		if mock.Requests[0].Language != models.Spanish {
			t.Errorf("expected es, got %q", mock.Requests[0].Language)
		}
	})

	t.Run("writes files", func(t *testing.T) {
		mock := &tu.MockDiscoverer{Result: sampleResult()}
		r, _ := newTestRunner(t, mock, nil)
		dir := filepath.Join(t.TempDir(), "out")

		if err := run(r, "discover", "--format", "txt", "--output", dir, "a calm rainy evening at home"); err != nil {
			t.Fatalf("discover failed: %v", err)
		}
		content := tu.MustReadFile(t, filepath.Join(dir, "calm_tracks.txt"))
		if !strings.Contains(content, "A - First") {
			t.Errorf("unexpected file content:\n%s", content)
		}
	})

	t.Run("rejections", func(t *testing.T) {
		tc := []struct {
			name string
			args []string
			want error
		}{
			{"too short", []string{"discover", "sad"}, shared.ErrQueryTooShort},
			{"missing", []string{"discover"}, shared.ErrMissingArgument},
			{"language", []string{"discover", "--lang", "fr", "a calm rainy evening"}, shared.ErrInvalidLanguage},
			{"format", []string{"discover", "--format", "xml", "a calm rainy evening"}, shared.ErrInvalidFlag},
		}

		for _, c := range tc {
			t.Run(c.name, func(t *testing.T) {
				mock := &tu.MockDiscoverer{Result: sampleResult()}
				r, _ := newTestRunner(t, mock, nil)

				if err := run(r, c.args...); !errors.Is(err, c.want) {
					t.Errorf("expected %v, got %v", c.want, err)
				}
				if mock.Calls() != 0 {
					t.Errorf("expected no backend calls, got %d", mock.Calls())
				}
			})
		}
	})

	t.Run("batch", func(t *testing.T) {
		mock := &tu.MockDiscoverer{Result: sampleResult()}
		r, out := newTestRunner(t, mock, nil)

		dir := t.TempDir()
		batch := filepath.Join(dir, "moods.txt")
		lines := "# weekend\na calm rainy evening at home\n\nhappy sunday morning run\n"
		if err := os.WriteFile(batch, []byte(lines), 0644); err != nil {
			t.Fatal(err)
		}

		output := filepath.Join(dir, "batch")
		if err := run(r, "discover", "--batch", batch, "--format", "txt", "--output", output, "--rate", "100"); err != nil {
			t.Fatalf("batch failed: %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(output, "batch_manifest.json"))
		tu.AssertFileExists(t, filepath.Join(output, "01_calm_tracks.txt"))
		tu.AssertFileExists(t, filepath.Join(output, "02_calm_tracks.txt"))
		if !strings.Contains(out.String(), "Succeeded: 2/2") {
			t.Errorf("expected summary, got:\n%s", out.String())
		}
	})
}

func TestReadQueries(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.txt")
	os.WriteFile(empty, []byte("# nothing\n\n"), 0644)
	if _, err := readQueries(empty); !errors.Is(err, shared.ErrMissingArgument) {
		t.Errorf("expected missing argument, got %v", err)
	}

	if _, err := readQueries(filepath.Join(dir, "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}

	ok := filepath.Join(dir, "ok.txt")
	os.WriteFile(ok, []byte("  first mood line  \n#skip\nsecond mood line\n"), 0644)
	got, err := readQueries(ok)
	if err != nil || len(got) != 2 || got[0] != "first mood line" {
		t.Errorf("unexpected queries %q (%v)", got, err)
	}
}

func TestDeezer(t *testing.T) {
	t.Run("export refused without network", func(t *testing.T) {
		tc := []struct {
			name   string
			status models.AuthStatus
			want   error
		}{
			{"oauth disabled", models.AuthStatus{}, shared.ErrOAuthDisabled},
			{"not authenticated", models.AuthStatus{Enabled: true}, shared.ErrNotAuthenticated},
		}

		for _, c := range tc {
			t.Run(c.name, func(t *testing.T) {
				mock := &tu.MockDiscoverer{Result: sampleResult()}
				deezer := authenticated()
				deezer.AuthStatus = c.status
				r, _ := newTestRunner(t, mock, deezer)

				if err := run(r, "deezer", "export", "a calm rainy evening at home"); !errors.Is(err, c.want) {
					t.Errorf("expected %v, got %v", c.want, err)
				}
				if deezer.NetworkCalls() != 0 || mock.Calls() != 0 {
					t.Errorf("expected no calls, got deezer=%d discovery=%d", deezer.NetworkCalls(), mock.Calls())
				}
			})
		}
	})

	t.Run("unconfigured service never dials", func(t *testing.T) {
		transport := &tu.CountingTransport{}
		deezer := services.NewDeezerService(map[string]string{}, services.WithHTTPClient(&http.Client{Transport: transport}))
		deezer.SetToken(&oauth2.Token{AccessToken: "stale"})
		r, _ := newTestRunner(t, &tu.MockDiscoverer{Result: sampleResult()}, deezer)

		if err := run(r, "deezer", "export", "a calm rainy evening at home"); !errors.Is(err, shared.ErrOAuthDisabled) {
			t.Errorf("expected oauth disabled, got %v", err)
		}
		if err := run(r, "deezer", "whoami"); !errors.Is(err, shared.ErrOAuthDisabled) {
			t.Errorf("expected oauth disabled, got %v", err)
		}
		if transport.Calls != 0 {
			t.Errorf("expected no requests, got %d", transport.Calls)
		}
	})

	t.Run("export records history", func(t *testing.T) {
		deezer := authenticated()
		r, out := newTestRunner(t, &tu.MockDiscoverer{Result: sampleResult()}, deezer)

		if err := run(r, "deezer", "export", "a calm rainy evening at home"); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(out.String(), "Playlist created: MoodTune: Calm") {
			t.Errorf("expected confirmation, got:\n%s", out.String())
		}
		if got := deezer.Requests[0].TrackIDs; len(got) != 2 || got[0] != "11" {
			t.Errorf("unexpected track ids %v", got)
		}

		out.Reset()
		if err := run(r, "deezer", "history"); err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(out.String(), "MoodTune: Calm (2 tracks)") || !strings.Contains(out.String(), "Mood: Calm") {
			t.Errorf("expected history entry, got:\n%s", out.String())
		}
	})

	t.Run("expired session suggests auth", func(t *testing.T) {
		deezer := authenticated()
		deezer.Err = shared.ErrTokenExpired
		r, _ := newTestRunner(t, &tu.MockDiscoverer{Result: sampleResult()}, deezer)

		err := run(r, "deezer", "export", "a calm rainy evening at home")
		if !errors.Is(err, shared.ErrTokenExpired) || !errors.Is(err, shared.ErrExportFailed) {
			t.Fatalf("expected wrapped expiry, got %v", err)
		}
		if !strings.Contains(err.Error(), "moodtune deezer auth") {
			t.Errorf("expected auth hint, got %v", err)
		}
	})

	t.Run("status", func(t *testing.T) {
		tc := []struct {
			name   string
			status models.AuthStatus
			want   string
		}{
			{"disabled", models.AuthStatus{}, "OAuth not configured"},
			{"signed out", models.AuthStatus{Enabled: true}, "Not authenticated"},
			{"signed in", models.AuthStatus{Enabled: true, Authenticated: true}, "Expires: never"},
		}

		for _, c := range tc {
			t.Run(c.name, func(t *testing.T) {
				deezer := &fakeDeezer{MockExporter: tu.MockExporter{AuthStatus: c.status}}
				r, out := newTestRunner(t, nil, deezer)

				if err := run(r, "deezer", "status"); err != nil {
					t.Fatalf("status failed: %v", err)
				}
				if !strings.Contains(out.String(), c.want) {
					t.Errorf("expected %q, got:\n%s", c.want, out.String())
				}
				if deezer.NetworkCalls() != 0 {
					t.Error("status must not call Deezer")
				}
			})
		}
	})

	t.Run("whoami", func(t *testing.T) {
		deezer := authenticated()
		deezer.User = &models.DeezerUser{ID: 7, Name: "listener", Country: "ES"}
		r, out := newTestRunner(t, nil, deezer)

		if err := run(r, "deezer", "whoami"); err != nil {
			t.Fatalf("whoami failed: %v", err)
		}
		if !strings.Contains(out.String(), "User: listener (id 7)") {
			t.Errorf("unexpected output:\n%s", out.String())
		}
	})

	t.Run("logout clears the session", func(t *testing.T) {
		deezer := authenticated()
		r, _ := newTestRunner(t, nil, deezer)
		r.config.Credentials.Deezer.AccessToken = "secret"
		deezer.token = &oauth2.Token{AccessToken: "secret"}

		if err := run(r, "deezer", "logout"); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if deezer.token != nil {
			t.Error("expected client session cleared")
		}
		loaded, _ := shared.LoadConfig(r.configPath)
		if loaded.Credentials.Deezer.AccessToken != "" {
			t.Error("expected saved session cleared")
		}
	})

	t.Run("auth requires app credentials", func(t *testing.T) {
		r, _ := newTestRunner(t, nil, &fakeDeezer{})
		if err := run(r, "deezer", "auth"); !errors.Is(err, shared.ErrOAuthDisabled) {
			t.Errorf("expected oauth disabled, got %v", err)
		}
	})
}

func TestCallbackPath(t *testing.T) {
	tc := map[string]string{
		"http://localhost:3000/callback":     "/callback",
		"http://127.0.0.1:8080/oauth/deezer": "/oauth/deezer",
		"http://localhost:3000":              "/callback",
		"":                                   "/callback",
	}
	for in, want := range tc {
		if got := callbackPath(in); got != want {
			t.Errorf("callbackPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSettings(t *testing.T) {
	r, out := newTestRunner(t, nil, nil)

	if err := run(r, "settings", "language", "ES"); err != nil {
		t.Fatalf("set language failed: %v", err)
	}
	if err := run(r, "settings", "theme", "light"); err != nil {
		t.Fatalf("set theme failed: %v", err)
	}

	loaded, err := shared.LoadConfig(r.configPath)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Language() != "es" || loaded.Theme() != "light" {
		t.Errorf("preferences not saved: %s %s", loaded.Language(), loaded.Theme())
	}

	if err := run(r, "settings", "language", "fr"); !errors.Is(err, shared.ErrInvalidLanguage) {
		t.Errorf("expected invalid language, got %v", err)
	}
	if err := run(r, "settings", "theme", "neon"); !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}

	out.Reset()
	if err := run(r, "settings", "show"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Language: es") || !strings.Contains(out.String(), "(not configured)") {
		t.Errorf("unexpected settings:\n%s", out.String())
	}
}

func TestCache(t *testing.T) {
	r, out := newTestRunner(t, &tu.MockDiscoverer{Result: sampleResult()}, nil)

	if err := run(r, "cache", "list"); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Cache is empty") {
		t.Errorf("expected empty cache, got %s", out.String())
	}

	if err := run(r, "discover", "a calm rainy evening at home"); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := run(r, "cache", "list"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[en] a calm rainy evening at home") {
		t.Errorf("expected cached entry, got:\n%s", out.String())
	}

	out.Reset()
	if err := run(r, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Removed 1 cached discoveries") {
		t.Errorf("unexpected output %s", out.String())
	}
}

func TestHealth(t *testing.T) {
	r, out := newTestRunner(t, &tu.MockDiscoverer{}, nil)
	if err := run(r, "health"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Status: healthy") {
		t.Errorf("unexpected output %s", out.String())
	}

	down, _ := newTestRunner(t, &tu.MockDiscoverer{Err: shared.ErrServiceUnavailable}, nil)
	if err := run(down, "health"); !errors.Is(err, shared.ErrServiceUnavailable) {
		t.Errorf("expected unavailable, got %v", err)
	}

	none, _ := newTestRunner(t, nil, nil)
	if err := run(none, "health"); !errors.Is(err, shared.ErrServiceUnavailable) {
		t.Errorf("expected unavailable without a backend, got %v", err)
	}
}

func TestVoice(t *testing.T) {
	t.Run("unsupported", func(t *testing.T) {
		r, _ := newTestRunner(t, nil, nil)
		if err := run(r, "voice"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected unavailable, got %v", err)
		}
	})

	t.Run("prints the transcript", func(t *testing.T) {
		r, out := newTestRunner(t, nil, nil)
		r.config.Speech = shared.SpeechConfig{Command: "sh", Args: []string{"-c", "echo '  quiet   evening by the sea '"}}

		if err := run(r, "voice"); err != nil {
			t.Fatalf("voice failed: %v", err)
		}
		if !strings.HasSuffix(out.String(), "quiet evening by the sea\n") {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("discovers from the transcript", func(t *testing.T) {
		mock := &tu.MockDiscoverer{Result: sampleResult()}
		r, out := newTestRunner(t, mock, nil)
		r.config.Speech = shared.SpeechConfig{Command: "sh", Args: []string{"-c", "echo quiet evening by the sea"}}

		if err := run(r, "voice", "--discover", "--lang", "es"); err != nil {
			t.Fatalf("voice failed: %v", err)
		}
		if mock.Calls() != 1 || mock.Requests[0].Query != "quiet evening by the sea" || mock.Requests[0].Language != models.Spanish {
			t.Errorf("unexpected requests %+v", mock.Requests)
		}
		if !strings.Contains(out.String(), "1. A - First") {
			t.Errorf("expected tracks, got:\n%s", out.String())
		}
	})

	t.Run("no speech", func(t *testing.T) {
		r, _ := newTestRunner(t, nil, nil)
		r.config.Speech = shared.SpeechConfig{Command: "sh", Args: []string{"-c", "true"}}

		err := run(r, "voice")
		if err == nil || !strings.Contains(err.Error(), "no speech") {
			t.Errorf("expected no speech error, got %v", err)
		}
	})
}
