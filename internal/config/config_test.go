package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mediaranker/internal/config"
)

func TestLoadDefaultConfigUsesEnvTMDBKeyAndExpandsPaths(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "mediaranker")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "mediaranker.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if cfg.Paths.APIBind != "127.0.0.1:7488" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != config.Default().TMDB.BaseURL {
		t.Fatalf("unexpected TMDB base url: %q", cfg.TMDB.BaseURL)
	}
	if cfg.SearchDebounce() != 300*time.Millisecond {
		t.Fatalf("unexpected debounce: %v", cfg.SearchDebounce())
	}
	if cfg.Search.MinQueryLength != 2 || cfg.Search.ResultLimit != 5 || cfg.Search.PersonCreditLimit != 3 {
		t.Fatalf("unexpected search defaults: %+v", cfg.Search)
	}
	if cfg.Export.FileName != "media-ranker-export.json" {
		t.Fatalf("unexpected export file name: %q", cfg.Export.FileName)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadWithoutAPIKeySucceedsButRequireTMDBFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TMDB_API_KEY", "")
	os.Unsetenv("TMDB_API_KEY")
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.RequireTMDB(); err == nil {
		t.Fatal("expected RequireTMDB to fail without key")
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mediaranker.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		TMDB struct {
			APIKey  string `toml:"api_key"`
			BaseURL string `toml:"base_url"`
		} `toml:"tmdb"`
		Search struct {
			ResultLimit int `toml:"result_limit"`
			DebounceMS  int `toml:"debounce_ms"`
		} `toml:"search"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.TMDB.APIKey = "abc123"
	custom.TMDB.BaseURL = "https://example.com/tmdb/"
	custom.Search.ResultLimit = 6
	custom.Search.DebounceMS = 150
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.TMDB.APIKey != "abc123" {
		t.Fatalf("expected TMDB key from file, got %q", cfg.TMDB.APIKey)
	}
	if cfg.TMDB.BaseURL != "https://example.com/tmdb" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.TMDB.BaseURL)
	}
	if cfg.Search.ResultLimit != 6 {
		t.Fatalf("expected result limit 6, got %d", cfg.Search.ResultLimit)
	}
	if cfg.SearchDebounce() != 150*time.Millisecond {
		t.Fatalf("expected 150ms debounce, got %v", cfg.SearchDebounce())
	}
	if cfg.Paths.DataDir != filepath.Join(tempDir, "data") {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_tmdb_api_key_here") {
		t.Fatalf("sample config missing placeholder TMDB key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "mediaranker") {
		t.Fatalf("expected data dir to contain mediaranker, got %q", cfg.Paths.DataDir)
	}
	if cfg.Search.PersonCreditLimit != 3 {
		t.Fatalf("unexpected person credit limit in sample: %d", cfg.Search.PersonCreditLimit)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = "/tmp/data"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}

	cfg = config.Default()
	cfg.Paths.DataDir = "/tmp/data"
	cfg.TMDB.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for relative base url")
	}

	cfg = config.Default()
	cfg.Paths.DataDir = "/tmp/data"
	cfg.Search.ResultLimit = 50
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for oversized result limit")
	}

	cfg = config.Default()
	cfg.Paths.DataDir = "/tmp/data"
	cfg.TMDB.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}

	cfg = config.Default()
	cfg.Paths.DataDir = "/tmp/data"
	cfg.Export.FileName = "nested/export.json"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for export file name with directories")
	}
}
