// Package transcription is the pipeline step that turns an uploaded
// recording into a stored diarized transcript.
package transcription

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"seminar/internal/logging"
	"seminar/internal/notifications"
	"seminar/internal/records"
	"seminar/internal/services"
	"seminar/internal/services/transcribe"
	"seminar/internal/stage"
	"seminar/internal/store"
)

const stepName = "transcription"

type Handler struct {
	catalog       *records.Catalog
	service       *transcribe.Service
	notifier      notifications.Service
	processingDir string
	logger        *slog.Logger
}

func NewHandler(catalog *records.Catalog, service *transcribe.Service, notifier notifications.Service, processingDir string) *Handler {
	return &Handler{
		catalog:       catalog,
		service:       service,
		notifier:      notifier,
		processingDir: processingDir,
		logger:        logging.NewNop(),
	}
}

func (h *Handler) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = logging.NewNop()
	}
	h.logger = logger
}

// Prepare verifies the staged recording is still present before the long
// external call starts.
func (h *Handler) Prepare(_ context.Context, disc *records.Discussion) error {
	source := h.sourcePath(disc)
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrValidation, stepName, "locate recording", source, err)
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, disc *records.Discussion) error {
	source := h.sourcePath(disc)
	workDir := filepath.Join(h.processingDir, fmt.Sprintf("transcribe-%d", disc.ID))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, stepName, "create work dir", workDir, err)
	}
	defer os.RemoveAll(workDir)

	utterances, err := h.service.Transcribe(ctx, source, workDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, stepName, "transcribe", disc.RecordingName, err)
	}

	encoded, err := records.EncodeUtterances(utterances)
	if err != nil {
		return services.Wrap(services.ErrTransient, stepName, "encode utterances", "", err)
	}
	if _, err := h.catalog.UpsertTranscript(ctx, disc.ID, store.Fields{
		"raw_text":        rawText(utterances),
		"utterances_json": encoded,
	}); err != nil {
		return err
	}

	h.logger.Info("transcript stored", logging.Args(
		logging.Int64(logging.FieldDiscussionID, disc.ID),
		logging.Int("utterances", len(utterances)))...)
	if h.notifier != nil {
		if err := h.notifier.NotifyTranscriptionComplete(ctx, disc.RecordingName, len(utterances)); err != nil {
			h.logger.Debug("transcription notification failed", logging.Args(logging.Error(err))...)
		}
	}
	return nil
}

func (h *Handler) HealthCheck(context.Context) stage.Health {
	if err := h.service.HealthCheck(); err != nil {
		return stage.Unhealthy(stepName, err.Error())
	}
	return stage.Healthy(stepName)
}

func (h *Handler) sourcePath(disc *records.Discussion) string {
	ref := disc.RecordingRef
	if !filepath.IsAbs(ref) {
		ref = filepath.Join(h.processingDir, ref)
	}
	return ref
}

func rawText(utterances []records.Utterance) string {
	var builder strings.Builder
	for _, u := range utterances {
		builder.WriteString(u.Speaker)
		builder.WriteString(": ")
		builder.WriteString(u.Text)
		builder.WriteString("\n")
	}
	return strings.TrimRight(builder.String(), "\n")
}
