// Package speakers resolves diarization labels into participant names. An
// excerpt from the start of the discussion goes to the LLM for suggestions,
// the full transcript is scanned so no label is missed, and the reviewer
// confirms or corrects the resulting mapping before individual reports exist.
package speakers
