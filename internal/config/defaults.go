package config

const (
	defaultInboxDir      = "~/seminar/inbox"
	defaultProcessingDir = "~/.local/share/seminar/processing"
	defaultDataDir       = "~/.local/share/seminar"
	defaultLogDir        = "~/.local/share/seminar/logs"

	defaultTranscriberModel   = "large-v3-turbo"
	defaultTranscriberDevice  = "cpu"
	defaultTranscriberTimeout = 3600

	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMTimeoutSeconds = 120

	defaultMailTimeoutSeconds = 30
	defaultMailSubjectPrefix  = "Discussion feedback"

	defaultGradebookItemType = "assignment"
	defaultGradebookPageSize = 100
	defaultGradebookTimeout  = 30

	defaultNotifyRequestTimeout = 10

	defaultWorkflowTickInterval       = 5
	defaultTranscribingTimeoutMinutes = 60
	defaultExternalCallDelaySeconds   = 1

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InboxDir:      defaultInboxDir,
			ProcessingDir: defaultProcessingDir,
			DataDir:       defaultDataDir,
			LogDir:        defaultLogDir,
		},
		Transcriber: Transcriber{
			Model:          defaultTranscriberModel,
			Device:         defaultTranscriberDevice,
			TimeoutSeconds: defaultTranscriberTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Mail: Mail{
			SubjectPrefix:  defaultMailSubjectPrefix,
			TimeoutSeconds: defaultMailTimeoutSeconds,
		},
		Gradebook: Gradebook{
			DefaultItemType: defaultGradebookItemType,
			PageSize:        defaultGradebookPageSize,
			TimeoutSeconds:  defaultGradebookTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Transcription:  true,
			Review:         true,
			Distribution:   true,
			Errors:         true,
		},
		Workflow: Workflow{
			TickInterval:               defaultWorkflowTickInterval,
			TranscribingTimeoutMinutes: defaultTranscribingTimeoutMinutes,
			ExternalCallDelaySeconds:   defaultExternalCallDelaySeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
