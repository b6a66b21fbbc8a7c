package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTranscriber(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeMail()
	c.normalizeGradebook()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InboxDir, err = expandPath(c.Paths.InboxDir); err != nil {
		return fmt.Errorf("paths.inbox_dir: %w", err)
	}
	if c.Paths.ProcessingDir, err = expandPath(c.Paths.ProcessingDir); err != nil {
		return fmt.Errorf("paths.processing_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscriber() error {
	c.Transcriber.Model = strings.TrimSpace(c.Transcriber.Model)
	if c.Transcriber.Model == "" {
		c.Transcriber.Model = defaultTranscriberModel
	}
	c.Transcriber.Device = strings.ToLower(strings.TrimSpace(c.Transcriber.Device))
	if c.Transcriber.Device == "" {
		c.Transcriber.Device = defaultTranscriberDevice
	}
	c.Transcriber.Language = strings.ToLower(strings.TrimSpace(c.Transcriber.Language))
	c.Transcriber.HuggingFaceToken = strings.TrimSpace(c.Transcriber.HuggingFaceToken)
	if c.Transcriber.HuggingFaceToken == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.Transcriber.HuggingFaceToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Transcriber.HuggingFaceToken = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Transcriber.CacheDir) != "" {
		expanded, err := expandPath(c.Transcriber.CacheDir)
		if err != nil {
			return fmt.Errorf("transcriber.cache_dir: %w", err)
		}
		c.Transcriber.CacheDir = expanded
	}
	if c.Transcriber.TimeoutSeconds <= 0 {
		c.Transcriber.TimeoutSeconds = defaultTranscriberTimeout
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("SEMINAR_LLM_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeMail() {
	c.Mail.Endpoint = strings.TrimSpace(c.Mail.Endpoint)
	c.Mail.FromAddress = strings.TrimSpace(c.Mail.FromAddress)
	c.Mail.Token = strings.TrimSpace(c.Mail.Token)
	if c.Mail.Token == "" {
		if value, ok := os.LookupEnv("SEMINAR_MAIL_TOKEN"); ok {
			c.Mail.Token = strings.TrimSpace(value)
		}
	}
	if c.Mail.SubjectPrefix == "" {
		c.Mail.SubjectPrefix = defaultMailSubjectPrefix
	}
	if c.Mail.TimeoutSeconds <= 0 {
		c.Mail.TimeoutSeconds = defaultMailTimeoutSeconds
	}
}

func (c *Config) normalizeGradebook() {
	c.Gradebook.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.Gradebook.BaseURL), "/")
	c.Gradebook.Token = strings.TrimSpace(c.Gradebook.Token)
	if c.Gradebook.Token == "" {
		if value, ok := os.LookupEnv("SEMINAR_GRADEBOOK_TOKEN"); ok {
			c.Gradebook.Token = strings.TrimSpace(value)
		}
	}
	c.Gradebook.DefaultItemType = strings.ToLower(strings.TrimSpace(c.Gradebook.DefaultItemType))
	if c.Gradebook.DefaultItemType == "" {
		c.Gradebook.DefaultItemType = defaultGradebookItemType
	}
	if c.Gradebook.PageSize <= 0 {
		c.Gradebook.PageSize = defaultGradebookPageSize
	}
	if c.Gradebook.TimeoutSeconds <= 0 {
		c.Gradebook.TimeoutSeconds = defaultGradebookTimeout
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.TickInterval <= 0 {
		c.Workflow.TickInterval = defaultWorkflowTickInterval
	}
	if c.Workflow.TranscribingTimeoutMinutes <= 0 {
		c.Workflow.TranscribingTimeoutMinutes = defaultTranscribingTimeoutMinutes
	}
	if c.Workflow.ExternalCallDelaySeconds < 0 {
		c.Workflow.ExternalCallDelaySeconds = defaultExternalCallDelaySeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
