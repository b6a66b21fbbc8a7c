package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"seminar/internal/config"
	"seminar/internal/records"
	"seminar/internal/store"
	"seminar/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	catalog    *records.Catalog
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("SEMINAR_LLM_API_KEY", "test")

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	st, err := store.Open(cfg.StorePath())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return &cliTestEnv{
		cfg:        cfg,
		catalog:    records.NewCatalog(st),
		configPath: configPath,
	}
}

func (env *cliTestEnv) seedDiscussion(t *testing.T) *records.Discussion {
	t.Helper()
	ctx := context.Background()
	disc, err := env.catalog.NewDiscussion(ctx, "/tmp/rec-1.mp4", "rec-1.mp4", "2026-03-14", "B", "PHIL101")
	if err != nil {
		t.Fatalf("seed discussion: %v", err)
	}
	return disc
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
