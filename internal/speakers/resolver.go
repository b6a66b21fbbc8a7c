package speakers

import (
	"context"
	"fmt"
	"strings"

	"seminar/internal/records"
	"seminar/internal/store"
	"seminar/internal/templates"
)

// Suggester produces a diarization label to name mapping for an excerpt.
type Suggester interface {
	SuggestSpeakerNames(ctx context.Context, prompt string) (map[string]string, error)
}

// Resolver runs the speaker resolution step for one discussion.
type Resolver struct {
	catalog   *records.Catalog
	suggester Suggester
}

// NewResolver constructs a resolver over the given catalog and suggester.
func NewResolver(catalog *records.Catalog, suggester Suggester) *Resolver {
	return &Resolver{catalog: catalog, suggester: suggester}
}

// Resolve suggests names for the discussion's speakers and reconciles the
// suggestions against every label that actually occurs in the transcript.
// One mapping row is upserted per detected label; labels the suggester
// missed get "?". In group mode every row auto-confirms since individual
// attribution is immaterial there.
func (r *Resolver) Resolve(ctx context.Context, disc *records.Discussion, utterances []records.Utterance, mode records.Mode) error {
	if len(utterances) == 0 {
		return fmt.Errorf("speakers: discussion %d has no utterances", disc.ID)
	}

	suggestions, err := r.suggest(ctx, disc, utterances)
	if err != nil {
		return err
	}

	autoConfirm := mode == records.ModeGroup
	for _, label := range DistinctLabels(utterances) {
		name, ok := suggestions[label]
		if !ok {
			name = records.UnknownName
		}
		fields := store.Fields{
			"suggested_name": NormalizeName(name),
		}
		if autoConfirm {
			fields["confirmed"] = "true"
		}
		if _, err := r.catalog.UpsertSpeakerMapping(ctx, disc.ID, label, fields); err != nil {
			return fmt.Errorf("speakers: upsert mapping %s: %w", label, err)
		}
	}

	return r.RenderTranscript(ctx, disc.ID)
}

func (r *Resolver) suggest(ctx context.Context, disc *records.Discussion, utterances []records.Utterance) (map[string]string, error) {
	body, err := templates.Lookup(ctx, r.catalog, templates.SpeakerNames)
	if err != nil {
		return nil, err
	}
	participants, err := r.catalog.ParticipantsForDiscussion(ctx, disc)
	if err != nil {
		return nil, err
	}
	roster := make([]string, 0, len(participants))
	for _, p := range participants {
		roster = append(roster, p.Name)
	}
	rosterText := strings.Join(roster, ", ")
	if rosterText == "" {
		rosterText = "(no roster available)"
	}

	prompt := templates.Render(body, map[string]string{
		"excerpt":      Excerpt(utterances),
		"participants": rosterText,
	})
	suggestions, err := r.suggester.SuggestSpeakerNames(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("speakers: suggest names: %w", err)
	}
	return suggestions, nil
}

// RenderTranscript rebuilds the canonical speaker map and named transcript
// from the current mapping rows. Called after resolution and again whenever
// the reviewer confirms or corrects a name.
func (r *Resolver) RenderTranscript(ctx context.Context, discussionID int64) error {
	transcript, err := r.catalog.TranscriptForDiscussion(ctx, discussionID)
	if err != nil {
		return err
	}
	if transcript == nil {
		return fmt.Errorf("speakers: discussion %d has no transcript", discussionID)
	}
	utterances, err := transcript.Utterances()
	if err != nil {
		return err
	}
	mappings, err := r.catalog.MappingsForDiscussion(ctx, discussionID)
	if err != nil {
		return err
	}

	canonical := CanonicalMap(mappings)
	encoded, err := records.EncodeSpeakerMap(canonical)
	if err != nil {
		return err
	}
	_, err = r.catalog.UpsertTranscript(ctx, discussionID, store.Fields{
		"speaker_map_json": encoded,
		"named_text":       RenderNamed(utterances, canonical),
	})
	return err
}
