package transcription_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"seminar/internal/records"
	"seminar/internal/services/transcribe"
	"seminar/internal/store"
	"seminar/internal/transcription"
)

type fakeNotifier struct {
	transcriptions []string
}

func (f *fakeNotifier) NotifyTranscriptionComplete(_ context.Context, name string, _ int) error {
	f.transcriptions = append(f.transcriptions, name)
	return nil
}
func (f *fakeNotifier) NotifyReviewReady(context.Context, string, string) error { return nil }
func (f *fakeNotifier) NotifyDistributionComplete(context.Context, string, int, int) error {
	return nil
}
func (f *fakeNotifier) NotifyError(context.Context, error, string) error { return nil }
func (f *fakeNotifier) TestNotification(context.Context) error           { return nil }

func newCatalog(t *testing.T) *records.Catalog {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "seminar.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return records.NewCatalog(st)
}

func TestExecuteStoresTranscript(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)
	processingDir := t.TempDir()

	recording := "PHIL101_B_2026-03-14.mp4"
	if err := os.WriteFile(filepath.Join(processingDir, recording), []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}
	disc, err := catalog.NewDiscussion(ctx, recording, recording, "2026-03-14", "B", "PHIL101")
	if err != nil {
		t.Fatalf("NewDiscussion: %v", err)
	}

	payload := map[string]any{
		"segments": []map[string]any{
			{"text": "Welcome back everyone.", "start": 0.0, "end": 2.5, "speaker": "SPEAKER_00"},
			{"text": "Thanks, glad to be here.", "start": 2.7, "end": 4.1, "speaker": "SPEAKER_01"},
		},
	}
	svc := transcribe.NewService(transcribe.Config{Device: "cpu"}, "", "")
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		if name != transcribe.UVXCommand {
			return nil
		}
		outputDir := ""
		for i, arg := range args {
			if arg == "--output_dir" && i+1 < len(args) {
				outputDir = args[i+1]
			}
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		base := strings.TrimSuffix(recording, filepath.Ext(recording))
		return os.WriteFile(filepath.Join(outputDir, base+".json"), encoded, 0o644)
	})

	notifier := &fakeNotifier{}
	handler := transcription.NewHandler(catalog, svc, notifier, processingDir)

	if err := handler.Prepare(ctx, disc); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(ctx, disc); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	transcript, err := catalog.TranscriptForDiscussion(ctx, disc.ID)
	if err != nil {
		t.Fatalf("TranscriptForDiscussion: %v", err)
	}
	if transcript == nil {
		t.Fatal("transcript not stored")
	}
	if !strings.Contains(transcript.RawText, "SPEAKER_00: Welcome back everyone.") {
		t.Fatalf("raw text = %q", transcript.RawText)
	}
	utterances, err := transcript.Utterances()
	if err != nil {
		t.Fatalf("Utterances: %v", err)
	}
	if len(utterances) != 2 {
		t.Fatalf("utterance count = %d", len(utterances))
	}
	if len(notifier.transcriptions) != 1 || notifier.transcriptions[0] != recording {
		t.Fatalf("notifications = %v", notifier.transcriptions)
	}
}

func TestPrepareFailsWhenRecordingMissing(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)
	disc, err := catalog.NewDiscussion(ctx, "gone.mp4", "gone.mp4", "2026-03-14", "B", "PHIL101")
	if err != nil {
		t.Fatalf("NewDiscussion: %v", err)
	}
	handler := transcription.NewHandler(catalog, transcribe.NewService(transcribe.Config{}, "", ""), nil, t.TempDir())
	if err := handler.Prepare(ctx, disc); err == nil {
		t.Fatal("expected error for missing recording")
	}
}
