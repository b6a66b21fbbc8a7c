// Package llm provides an OpenRouter-compatible chat client.
//
// This package is used by:
//   - Speaker resolution: suggest names for diarization labels
//   - Feedback generation: produce group and individual feedback text
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive JSON response.
// Client.CompleteText: send system/user prompts, receive plain text.
// Client.SuggestSpeakerNames: rendered prompt in, label-to-name mapping out.
// Client.HealthCheck: verify API key and model availability.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 10s, up to 5 attempts by default).
// Context cancellation aborts retries immediately.
package llm
