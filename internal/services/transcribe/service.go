package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"seminar/internal/records"
)

// Service runs WhisperX transcription with diarization.
type Service struct {
	cfg           Config
	uvxBinary     string
	ffmpegBinary  string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a transcription service with the given configuration.
func NewService(cfg Config, uvxBinary, ffmpegBinary string) *Service {
	if uvxBinary == "" {
		uvxBinary = UVXCommand
	}
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	return &Service{
		cfg:          cfg,
		uvxBinary:    uvxBinary,
		ffmpegBinary: ffmpegBinary,
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	env := os.Environ()
	// Torch 2.6 changed torch.load default to weights_only=true, breaking
	// WhisperX/pyannote checkpoint loading.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		env = append(env, "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	if s.cfg.CacheDir != "" {
		env = append(env, "HF_HOME="+s.cfg.CacheDir)
	}
	cmd.Env = env

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Transcribe extracts audio from the recording, runs WhisperX with
// diarization, and returns the speaker-labeled utterances in order.
// workDir holds the intermediate WAV and the WhisperX output files.
func (s *Service) Transcribe(ctx context.Context, source, workDir string) ([]records.Utterance, error) {
	if source == "" {
		return nil, fmt.Errorf("transcribe: source path required")
	}
	if workDir == "" {
		return nil, fmt.Errorf("transcribe: work dir required")
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("transcribe: ensure work dir: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	wavPath := filepath.Join(workDir, baseName+".wav")
	if err := s.extract(ctx, source, wavPath); err != nil {
		return nil, err
	}

	args := s.buildArgs(wavPath, workDir)
	if err := s.run(ctx, s.uvxBinary, args...); err != nil {
		return nil, fmt.Errorf("whisperx: %w", err)
	}

	jsonPath := filepath.Join(workDir, baseName+".json")
	segments, err := LoadSegments(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	utterances := UtterancesFromSegments(segments)
	if len(utterances) == 0 {
		return nil, fmt.Errorf("transcribe: no speech found in %s", filepath.Base(source))
	}
	return utterances, nil
}

func (s *Service) extract(ctx context.Context, source, dest string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, s.ffmpegBinary, buildFFmpegExtractArgs(source, dest)...)
	}
	return ExtractAudio(ctx, s.ffmpegBinary, source, dest)
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 24)

	if s.cfg.Device == CUDADevice {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	model := s.cfg.Model
	if model == "" {
		model = DefaultModel
	}

	args = append(args,
		"whisperx",
		source,
		"--model", model,
		"--batch_size", BatchSize,
		"--chunk_size", ChunkSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--diarize",
	)
	if s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}
	if s.cfg.Language != "" {
		args = append(args, "--language", s.cfg.Language)
	}
	if s.cfg.Device == CUDADevice {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}
	return args
}

// HealthCheck verifies the external tools are available on PATH.
func (s *Service) HealthCheck() error {
	for _, binary := range []string{s.uvxBinary, s.ffmpegBinary} {
		if _, err := exec.LookPath(binary); err != nil {
			return fmt.Errorf("transcribe: %s not found: %w", binary, err)
		}
	}
	return nil
}

// Segment represents a transcribed segment from WhisperX JSON output.
type Segment struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

type whisperXPayload struct {
	Segments []Segment `json:"segments"`
}

// LoadSegments loads segments from a WhisperX JSON file.
func LoadSegments(jsonPath string) ([]Segment, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload.Segments, nil
}

// UtterancesFromSegments converts WhisperX segments into ordered utterances.
// Empty segments are dropped; consecutive segments from the same speaker are
// merged so the transcript reads as turns rather than sentence fragments.
func UtterancesFromSegments(segments []Segment) []records.Utterance {
	utterances := make([]records.Utterance, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		speaker := strings.TrimSpace(seg.Speaker)
		if speaker == "" {
			speaker = "SPEAKER_00"
		}
		if n := len(utterances); n > 0 && utterances[n-1].Speaker == speaker {
			utterances[n-1].Text += " " + text
			utterances[n-1].End = seg.End
			continue
		}
		utterances = append(utterances, records.Utterance{
			Speaker: speaker,
			Start:   seg.Start,
			End:     seg.End,
			Text:    text,
		})
	}
	return utterances
}
