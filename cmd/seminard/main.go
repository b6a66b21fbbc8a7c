package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"seminar/internal/config"
	"seminar/internal/daemon"
	"seminar/internal/intake"
	"seminar/internal/logging"
	"seminar/internal/notifications"
	"seminar/internal/records"
	"seminar/internal/services/llm"
	"seminar/internal/services/transcribe"
	"seminar/internal/speakers"
	"seminar/internal/store"
	"seminar/internal/transcription"
	"seminar/internal/workflow"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, path, exists, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !exists {
		fmt.Fprintf(os.Stderr, "no config file at %s, using defaults\n", path)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	st, err := store.Open(cfg.StorePath())
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	catalog := records.NewCatalog(st)

	l := cfg.GetLLM()
	suggester := llm.NewClient(llm.Config{
		APIKey:         l.APIKey,
		BaseURL:        l.BaseURL,
		Model:          l.Model,
		Referer:        l.Referer,
		Title:          l.Title,
		TimeoutSeconds: l.TimeoutSeconds,
	})

	transcriber := transcribe.NewService(transcribe.Config{
		Model:    cfg.Transcriber.Model,
		Device:   cfg.Transcriber.Device,
		HFToken:  cfg.Transcriber.HuggingFaceToken,
		Language: cfg.Transcriber.Language,
		CacheDir: cfg.Transcriber.CacheDir,
	}, cfg.UvxBinary(), cfg.FFmpegBinary())

	notifier := notifications.NewService(cfg)
	handler := transcription.NewHandler(catalog, transcriber, notifier, cfg.Paths.ProcessingDir)
	scanner := intake.NewScanner(cfg.Paths.InboxDir, cfg.Paths.ProcessingDir)
	resolver := speakers.NewResolver(catalog, suggester)
	manager := workflow.NewManager(cfg, catalog, logger, notifier, scanner, handler, resolver)

	d, err := daemon.New(cfg, st, catalog, logger, manager)
	if err != nil {
		st.Close()
		return err
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")
	d.Stop()
	return nil
}
