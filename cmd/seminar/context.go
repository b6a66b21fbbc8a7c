package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"seminar/internal/config"
	"seminar/internal/distribution"
	"seminar/internal/feedback"
	"seminar/internal/intake"
	"seminar/internal/logging"
	"seminar/internal/notifications"
	"seminar/internal/records"
	"seminar/internal/services/gradebook"
	"seminar/internal/services/llm"
	"seminar/internal/services/mail"
	"seminar/internal/services/transcribe"
	"seminar/internal/speakers"
	"seminar/internal/store"
	"seminar/internal/transcription"
	"seminar/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	storeOnce sync.Once
	store     *store.Store
	catalog   *records.Catalog
	storeErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureCatalog() (*records.Catalog, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	c.storeOnce.Do(func() {
		st, err := store.Open(cfg.StorePath())
		if err != nil {
			c.storeErr = err
			return
		}
		c.store = st
		c.catalog = records.NewCatalog(st)
	})
	return c.catalog, c.storeErr
}

func (c *commandContext) llmClient() (*llm.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	l := cfg.GetLLM()
	return llm.NewClient(llm.Config{
		APIKey:         l.APIKey,
		BaseURL:        l.BaseURL,
		Model:          l.Model,
		Referer:        l.Referer,
		Title:          l.Title,
		TimeoutSeconds: l.TimeoutSeconds,
	}), nil
}

func (c *commandContext) mailClient() (*mail.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return mail.NewClient(mail.Config{
		Endpoint:       cfg.Mail.Endpoint,
		Token:          cfg.Mail.Token,
		FromAddress:    cfg.Mail.FromAddress,
		SubjectPrefix:  cfg.Mail.SubjectPrefix,
		TimeoutSeconds: cfg.Mail.TimeoutSeconds,
	}), nil
}

func (c *commandContext) gradebookClient() (*gradebook.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return gradebook.NewClient(gradebook.Config{
		BaseURL:         cfg.Gradebook.BaseURL,
		Token:           cfg.Gradebook.Token,
		DefaultItemType: cfg.Gradebook.DefaultItemType,
		PageSize:        cfg.Gradebook.PageSize,
		TimeoutSeconds:  cfg.Gradebook.TimeoutSeconds,
	}), nil
}

func (c *commandContext) transcribeService() (*transcribe.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return transcribe.NewService(transcribe.Config{
		Model:    cfg.Transcriber.Model,
		Device:   cfg.Transcriber.Device,
		HFToken:  cfg.Transcriber.HuggingFaceToken,
		Language: cfg.Transcriber.Language,
		CacheDir: cfg.Transcriber.CacheDir,
	}, cfg.UvxBinary(), cfg.FFmpegBinary()), nil
}

func (c *commandContext) resolver() (*speakers.Resolver, error) {
	catalog, err := c.ensureCatalog()
	if err != nil {
		return nil, err
	}
	client, err := c.llmClient()
	if err != nil {
		return nil, err
	}
	return speakers.NewResolver(catalog, client), nil
}

func (c *commandContext) feedbackService() (*feedback.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	catalog, err := c.ensureCatalog()
	if err != nil {
		return nil, err
	}
	client, err := c.llmClient()
	if err != nil {
		return nil, err
	}
	delay := time.Duration(cfg.Workflow.ExternalCallDelaySeconds) * time.Second
	return feedback.NewService(catalog, client, delay, c.logger()), nil
}

func (c *commandContext) distributionService() (*distribution.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	catalog, err := c.ensureCatalog()
	if err != nil {
		return nil, err
	}
	mailer, err := c.mailClient()
	if err != nil {
		return nil, err
	}
	poster, err := c.gradebookClient()
	if err != nil {
		return nil, err
	}
	delay := time.Duration(cfg.Workflow.ExternalCallDelaySeconds) * time.Second
	return distribution.NewService(catalog, mailer, poster, delay, c.logger()), nil
}

func (c *commandContext) workflowManager() (*workflow.Manager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	catalog, err := c.ensureCatalog()
	if err != nil {
		return nil, err
	}
	transcriber, err := c.transcribeService()
	if err != nil {
		return nil, err
	}
	resolver, err := c.resolver()
	if err != nil {
		return nil, err
	}
	notifier := notifications.NewService(cfg)
	handler := transcription.NewHandler(catalog, transcriber, notifier, cfg.Paths.ProcessingDir)
	scanner := intake.NewScanner(cfg.Paths.InboxDir, cfg.Paths.ProcessingDir)
	return workflow.NewManager(cfg, catalog, c.logger(), notifier, scanner, handler, resolver), nil
}

func (c *commandContext) logger() *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logging.NewNop()
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for parent := cmd; parent != nil; parent = parent.Parent() {
		if parent.Annotations != nil && parent.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
