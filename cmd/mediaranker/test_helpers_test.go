package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mediaranker/internal/catalog"
	"mediaranker/internal/config"
	"mediaranker/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("TMDB_API_KEY", "")

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustRunCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string) {
	t.Helper()
	stdout, stderr, err := runCLI(t, env, args...)
	if err != nil {
		t.Fatalf("%s: %v (stderr: %s)", strings.Join(args, " "), err, stderr)
	}
	return stdout, stderr
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return v
}

// newFakeTMDB answers the search, credits and configuration endpoints.
func newFakeTMDB(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	respond := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("/configuration", func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]any{"images": map[string]any{}})
	})
	mux.HandleFunc("/search/multi", func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]any{"page": 1, "results": []catalog.Record{
			{ID: 27205, Title: "Inception", MediaType: "movie", ReleaseDate: "2010-07-15", PosterPath: "/inc.jpg"},
			{ID: 500, Name: "Leonardo DiCaprio", MediaType: "person", ProfilePath: "/leo.jpg"},
			{ID: 64, Title: "Inception: The Cobol Job", MediaType: "movie", ReleaseDate: "2010-12-07"},
		}})
	})
	mux.HandleFunc("/search/person", func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]any{"page": 1, "results": []catalog.Record{
			{ID: 31, Name: "Tom Hanks", KnownForDepartment: "Acting", ProfilePath: "/hanks.jpg"},
		}})
	})
	mux.HandleFunc("/person/31/combined_credits", func(w http.ResponseWriter, r *http.Request) {
		respond(w, map[string]any{"id": 31, "cast": []catalog.Record{
			{ID: 1, Title: "Big", MediaType: "movie", ReleaseDate: "1988-06-03", PosterPath: "/big.jpg", Popularity: 10},
			{ID: 2, Title: "Cast Away", MediaType: "movie", ReleaseDate: "2000-12-22", PosterPath: "/cast.jpg", Popularity: 50},
			{ID: 3, Title: "Toy Story", MediaType: "movie", ReleaseDate: "1995-11-22", PosterPath: "/toy.jpg", Popularity: 90},
			{ID: 4, Title: "Splash", MediaType: "movie", ReleaseDate: "1984-03-09", PosterPath: "/splash.jpg", Popularity: 5},
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}
