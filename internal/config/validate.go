package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranscriber(); err != nil {
		return err
	}
	if err := c.validateMail(); err != nil {
		return err
	}
	if err := c.validateGradebook(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.InboxDir) == "" {
		return errors.New("paths.inbox_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ProcessingDir) == "" {
		return errors.New("paths.processing_dir must be set")
	}
	if c.Paths.InboxDir == c.Paths.ProcessingDir {
		return errors.New("paths.processing_dir must differ from paths.inbox_dir")
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateTranscriber() error {
	switch c.Transcriber.Device {
	case "cpu", "cuda":
	default:
		return fmt.Errorf("transcriber.device must be cpu or cuda, got %q", c.Transcriber.Device)
	}
	return nil
}

func (c *Config) validateMail() error {
	if c.Mail.Endpoint == "" {
		return nil
	}
	if c.Mail.FromAddress == "" {
		return errors.New("mail.from_address must be set when mail.endpoint is configured")
	}
	return nil
}

func (c *Config) validateGradebook() error {
	if c.Gradebook.BaseURL == "" {
		return nil
	}
	if c.Gradebook.Token == "" {
		return errors.New("gradebook.token must be set when gradebook.base_url is configured (or set SEMINAR_GRADEBOOK_TOKEN)")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.tick_interval":                c.Workflow.TickInterval,
		"workflow.transcribing_timeout_minutes": c.Workflow.TranscribingTimeoutMinutes,
		"transcriber.timeout_seconds":           c.Transcriber.TimeoutSeconds,
		"llm.timeout_seconds":                   c.LLM.TimeoutSeconds,
		"mail.timeout_seconds":                  c.Mail.TimeoutSeconds,
		"gradebook.timeout_seconds":             c.Gradebook.TimeoutSeconds,
		"notifications.request_timeout":         c.Notifications.RequestTimeout,
	})
}

func (c *Config) validateNotifications() error {
	if c.Workflow.ExternalCallDelaySeconds < 0 {
		return errors.New("workflow.external_call_delay_seconds must be >= 0")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
