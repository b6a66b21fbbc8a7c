// Package transcribe runs WhisperX with diarization over uploaded recordings
// and converts its JSON output into speaker-labeled utterances. WhisperX is
// launched through uvx so no Python environment management leaks into the
// daemon; ffmpeg first reduces the recording to a mono 16kHz WAV.
package transcribe
