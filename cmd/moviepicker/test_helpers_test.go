package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"moviepicker/internal/config"
	"moviepicker/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

type envOption func(*config.Config)

func setupCLITestEnv(t *testing.T, opts ...envOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("OMDB_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("MOVIEPICKER_API_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("INSTAGRAM_COOKIES_PATH", "")

	// No model in CLI tests: descriptions are skipped, recommend reports missing credentials.
	cfg.OpenAI.APIKey = ""
	cfg.Logging.Level = "error"

	env := &cliTestEnv{cfg: cfg}
	server := httptest.NewServer(http.HandlerFunc(env.serveOMDb))
	t.Cleanup(server.Close)
	cfg.OMDb.BaseURL = server.URL + "/"
	cfg.OMDb.APIKey = "test-omdb-key"

	for _, opt := range opts {
		opt(cfg)
	}

	env.configPath = filepath.Join(base, "config.toml")
	writeTestConfig(t, env.configPath, cfg)
	return env
}

const inceptionPoster = "https://m.media-amazon.com/images/M/inception.jpg"

// serveOMDb answers lookups for Inception and a one-hit search.
func (e *cliTestEnv) serveOMDb(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case q.Get("s") != "":
		_, _ = w.Write([]byte(`{"Response":"True","Search":[{"Title":"Inception","Year":"2010","imdbID":"tt1375666","Poster":"` + inceptionPoster + `"}]}`))
	case strings.EqualFold(q.Get("t"), "inception"), q.Get("i") == "tt1375666":
		_, _ = w.Write([]byte(`{"Response":"True","Title":"Inception","Year":"2010","Genre":"Action, Sci-Fi","Director":"Christopher Nolan","Actors":"Leonardo DiCaprio, Joseph Gordon-Levitt","Plot":"A thief who steals corporate secrets.","Awards":"Won 4 Oscars.","Poster":"` + inceptionPoster + `","imdbRating":"8.8","imdbID":"tt1375666"}`))
	default:
		_, _ = w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), args, configPath)
}

func runCLIContext(t *testing.T, ctx context.Context, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
