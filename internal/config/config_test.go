package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"seminar/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndAppliesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

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

	wantInbox := filepath.Join(tempHome, "seminar", "inbox")
	if cfg.Paths.InboxDir != wantInbox {
		t.Fatalf("unexpected inbox dir: got %q want %q", cfg.Paths.InboxDir, wantInbox)
	}
	wantData := filepath.Join(tempHome, ".local", "share", "seminar")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.StorePath() != filepath.Join(wantData, "seminar.db") {
		t.Fatalf("unexpected store path: %q", cfg.StorePath())
	}
	if cfg.Transcriber.Model != "large-v3-turbo" {
		t.Fatalf("unexpected transcriber model: %q", cfg.Transcriber.Model)
	}
	if cfg.Transcriber.Device != "cpu" {
		t.Fatalf("unexpected transcriber device: %q", cfg.Transcriber.Device)
	}
	if cfg.Mail.Endpoint != "" {
		t.Fatalf("expected mail endpoint empty by default, got %q", cfg.Mail.Endpoint)
	}
	if cfg.Gradebook.DefaultItemType != "assignment" {
		t.Fatalf("unexpected gradebook item type: %q", cfg.Gradebook.DefaultItemType)
	}
	if cfg.Workflow.TickInterval != config.Default().Workflow.TickInterval {
		t.Fatalf("unexpected tick interval: %d", cfg.Workflow.TickInterval)
	}
	if cfg.Workflow.TranscribingTimeoutMinutes != 60 {
		t.Fatalf("unexpected transcribing timeout: %d", cfg.Workflow.TranscribingTimeoutMinutes)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %q %q", cfg.Logging.Format, cfg.Logging.Level)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.InboxDir, cfg.Paths.ProcessingDir, cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "seminar.toml")

	type payload struct {
		Paths struct {
			InboxDir string `toml:"inbox_dir"`
		} `toml:"paths"`
		Transcriber struct {
			Device string `toml:"device"`
		} `toml:"transcriber"`
		Workflow struct {
			TickInterval int `toml:"tick_interval"`
		} `toml:"workflow"`
	}
	custom := payload{}
	custom.Paths.InboxDir = filepath.Join(tempDir, "drop")
	custom.Transcriber.Device = "CUDA"
	custom.Workflow.TickInterval = 30

	encoded, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, encoded, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.InboxDir != custom.Paths.InboxDir {
		t.Fatalf("unexpected inbox dir: %q", cfg.Paths.InboxDir)
	}
	if cfg.Transcriber.Device != "cuda" {
		t.Fatalf("expected device normalized to cuda, got %q", cfg.Transcriber.Device)
	}
	if cfg.Workflow.TickInterval != 30 {
		t.Fatalf("unexpected tick interval: %d", cfg.Workflow.TickInterval)
	}
	// Untouched sections keep their defaults.
	if cfg.Gradebook.PageSize != config.Default().Gradebook.PageSize {
		t.Fatalf("unexpected gradebook page size: %d", cfg.Gradebook.PageSize)
	}
}

func TestValidateRejectsSharedInboxAndProcessing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "seminar.toml")
	body := strings.Join([]string{
		"[paths]",
		`inbox_dir = "` + filepath.Join(tempDir, "shared") + `"`,
		`processing_dir = "` + filepath.Join(tempDir, "shared") + `"`,
	}, "\n")
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected validation error for shared inbox and processing dirs")
	}
}

func TestValidateRejectsUnknownDevice(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "seminar.toml")
	body := "[transcriber]\ndevice = \"tpu\"\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected validation error for unknown transcriber device")
	}
}

func TestGradebookRequiresTokenWhenConfigured(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SEMINAR_GRADEBOOK_TOKEN", "")

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "seminar.toml")
	body := "[gradebook]\nbase_url = \"https://lms.example.edu/api\"\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected validation error for gradebook without token")
	}
}

func TestCreateSampleWritesParsableConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	} else if !exists {
		t.Fatal("expected sample config to exist")
	}
}
