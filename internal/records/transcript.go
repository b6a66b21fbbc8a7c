package records

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"seminar/internal/store"
)

// Transcript stores the diarized output for one discussion. Exactly one row
// exists per discussion id; writes after creation update in place.
type Transcript struct {
	ID             int64
	DiscussionID   int64
	RawText        string
	UtterancesJSON string
	SpeakerMapJSON string
	NamedText      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Utterance is one speaker-labeled span of the diarized transcript.
type Utterance struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
}

// Utterances decodes the stored utterance sequence.
func (t *Transcript) Utterances() ([]Utterance, error) {
	if t == nil || t.UtterancesJSON == "" {
		return nil, nil
	}
	var utterances []Utterance
	if err := json.Unmarshal([]byte(t.UtterancesJSON), &utterances); err != nil {
		return nil, fmt.Errorf("decode utterances: %w", err)
	}
	return utterances, nil
}

// SpeakerMap decodes the stored label-to-name mapping.
func (t *Transcript) SpeakerMap() (map[string]string, error) {
	if t == nil || t.SpeakerMapJSON == "" {
		return map[string]string{}, nil
	}
	mapping := make(map[string]string)
	if err := json.Unmarshal([]byte(t.SpeakerMapJSON), &mapping); err != nil {
		return nil, fmt.Errorf("decode speaker map: %w", err)
	}
	return mapping, nil
}

// EncodeUtterances serializes an utterance sequence for storage.
func EncodeUtterances(utterances []Utterance) (string, error) {
	data, err := json.Marshal(utterances)
	if err != nil {
		return "", fmt.Errorf("encode utterances: %w", err)
	}
	return string(data), nil
}

// EncodeSpeakerMap serializes a label-to-name mapping for storage.
func EncodeSpeakerMap(mapping map[string]string) (string, error) {
	data, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("encode speaker map: %w", err)
	}
	return string(data), nil
}

func transcriptFromRow(row store.Row) *Transcript {
	return &Transcript{
		ID:             row.ID,
		DiscussionID:   parseID(row.Get("discussion_id")),
		RawText:        row.Get("raw_text"),
		UtterancesJSON: row.Get("utterances_json"),
		SpeakerMapJSON: row.Get("speaker_map_json"),
		NamedText:      row.Get("named_text"),
		CreatedAt:      parseTimeString(row.Get("created_at")),
		UpdatedAt:      parseTimeString(row.Get("updated_at")),
	}
}

// TranscriptForDiscussion returns the transcript row for a discussion, or nil.
func (c *Catalog) TranscriptForDiscussion(ctx context.Context, discussionID int64) (*Transcript, error) {
	row, err := c.store.FindOne(ctx, Transcripts, "discussion_id", formatID(discussionID))
	if err != nil || row == nil {
		return nil, err
	}
	return transcriptFromRow(*row), nil
}

// UpsertTranscript creates the transcript row for a discussion on first call
// and thereafter updates only the supplied fields in place. Calling it twice
// for the same discussion never yields a second row.
func (c *Catalog) UpsertTranscript(ctx context.Context, discussionID int64, fields store.Fields) (*Transcript, error) {
	existing, err := c.TranscriptForDiscussion(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = store.Fields{}
	}
	fields["updated_at"] = c.timestamp()
	if existing != nil {
		if err := c.store.Update(ctx, Transcripts, existing.ID, fields); err != nil {
			return nil, err
		}
		return c.TranscriptForDiscussion(ctx, discussionID)
	}
	fields["discussion_id"] = formatID(discussionID)
	fields["created_at"] = fields["updated_at"]
	if _, err := c.store.Insert(ctx, Transcripts, fields); err != nil {
		return nil, err
	}
	return c.TranscriptForDiscussion(ctx, discussionID)
}
