package transcribe

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildArgsCPUDiarization(t *testing.T) {
	svc := NewService(Config{Model: "large-v3-turbo", Device: "cpu", HFToken: "hf_abc", Language: "en"}, "", "")
	args := svc.buildArgs("/tmp/audio.wav", "/tmp/out")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"whisperx /tmp/audio.wav",
		"--model large-v3-turbo",
		"--diarize",
		"--hf_token hf_abc",
		"--language en",
		"--device cpu --compute_type float32",
	} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected args to contain %q, got %q", want, joined)
		}
	}
	if strings.Contains(joined, "--extra-index-url") {
		t.Fatalf("did not expect CUDA index for cpu device, got %q", joined)
	}
}

func TestBuildArgsCUDA(t *testing.T) {
	svc := NewService(Config{Device: "cuda"}, "", "")
	joined := strings.Join(svc.buildArgs("in.wav", "out"), " ")
	if !strings.Contains(joined, "--device cuda") {
		t.Fatalf("expected cuda device, got %q", joined)
	}
	if !strings.Contains(joined, CUDAIndexURL) {
		t.Fatalf("expected CUDA index url, got %q", joined)
	}
	if !strings.Contains(joined, "--model "+DefaultModel) {
		t.Fatalf("expected default model, got %q", joined)
	}
}

func TestTranscribeParsesDiarizedOutput(t *testing.T) {
	workDir := t.TempDir()
	source := filepath.Join(t.TempDir(), "section-b.mp4")
	if err := os.WriteFile(source, []byte("fake recording"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	payload := map[string]any{
		"segments": []map[string]any{
			{"text": " Let's start with the second chapter.", "start": 0.0, "end": 3.2, "speaker": "SPEAKER_00"},
			{"text": "I disagree with the framing.", "start": 3.4, "end": 5.0, "speaker": "SPEAKER_01"},
			{"text": "Here is why.", "start": 5.1, "end": 6.0, "speaker": "SPEAKER_01"},
			{"text": "   ", "start": 6.0, "end": 6.2, "speaker": "SPEAKER_00"},
		},
	}

	var commands [][]string
	svc := NewService(Config{Device: "cpu"}, "", "")
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		commands = append(commands, append([]string{name}, args...))
		if name == UVXCommand {
			encoded, err := json.Marshal(payload)
			if err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(workDir, "section-b.json"), encoded, 0o644)
		}
		return nil
	})

	utterances, err := svc.Transcribe(context.Background(), source, workDir)
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if len(commands) != 2 {
		t.Fatalf("expected ffmpeg then uvx, got %d commands", len(commands))
	}
	if commands[0][0] != FFmpegCommand {
		t.Fatalf("expected ffmpeg first, got %v", commands[0])
	}
	if len(utterances) != 2 {
		t.Fatalf("expected merged utterances, got %d: %v", len(utterances), utterances)
	}
	if utterances[0].Speaker != "SPEAKER_00" {
		t.Fatalf("unexpected first speaker: %q", utterances[0].Speaker)
	}
	if utterances[1].Text != "I disagree with the framing. Here is why." {
		t.Fatalf("expected same-speaker merge, got %q", utterances[1].Text)
	}
	if utterances[1].End != 6.0 {
		t.Fatalf("expected merged end time 6.0, got %v", utterances[1].End)
	}
}

func TestTranscribeFailsOnEmptyTranscript(t *testing.T) {
	workDir := t.TempDir()
	source := filepath.Join(t.TempDir(), "silence.wav")
	if err := os.WriteFile(source, []byte("x"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	svc := NewService(Config{}, "", "")
	svc.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		if name == UVXCommand {
			return os.WriteFile(filepath.Join(workDir, "silence.json"), []byte(`{"segments":[]}`), 0o644)
		}
		return nil
	})

	if _, err := svc.Transcribe(context.Background(), source, workDir); err == nil {
		t.Fatal("expected error for empty transcript")
	}
}

func TestExtractArgsProduceMono16k(t *testing.T) {
	args := buildFFmpegExtractArgs("in.mp4", "out.wav")
	joined := strings.Join(args, " ")
	for _, want := range []string{"-map 0:a:0", "-ac 1", "-ar 16000", "-c:a pcm_s16le"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in ffmpeg args, got %q", want, joined)
		}
	}
}
