// Package modes implements the grading-mode branch of the pipeline. The two
// variants share one discussion state machine; the strategy only changes
// where grades and feedback live and how many generation and distribution
// calls one discussion produces.
package modes

import (
	"context"
	"fmt"
	"strings"

	"seminar/internal/records"
	"seminar/internal/speakers"
	"seminar/internal/store"
	"seminar/internal/templates"
)

// TextGenerator produces feedback text from rendered prompts.
type TextGenerator interface {
	CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Target is one recipient of an approved distribution batch.
type Target struct {
	Participant *records.Participant
	// Report is nil in group mode, where grade and feedback live on the
	// discussion row itself.
	Report   *records.Report
	Grade    string
	Feedback string
}

// Strategy is the mode-dependent half of the pipeline.
type Strategy interface {
	Mode() records.Mode

	// PrepareReview materializes any per-participant rows the review phase
	// needs and returns the reviewer-facing hint for the discussion.
	PrepareReview(ctx context.Context, disc *records.Discussion) (string, error)

	// MissingGrades names the grade holders that still lack a grade.
	MissingGrades(ctx context.Context, disc *records.Discussion) ([]string, error)

	// GenerateFeedback drafts feedback for every graded holder that has none
	// yet, skipping holders whose feedback already exists. It returns how
	// many generation calls were made.
	GenerateFeedback(ctx context.Context, disc *records.Discussion, gen TextGenerator) (int, error)

	// DistributionTargets lists the recipients eligible for sending right now.
	DistributionTargets(ctx context.Context, disc *records.Discussion) ([]Target, error)
}

// ForMode returns the strategy for the given mode.
func ForMode(mode records.Mode, catalog *records.Catalog) Strategy {
	if mode == records.ModeIndividual {
		return &individualStrategy{catalog: catalog}
	}
	return &groupStrategy{catalog: catalog}
}

const feedbackSystemPrompt = "You are a thoughtful teaching assistant. Write in plain prose, two short paragraphs at most."

func generateFromTemplate(ctx context.Context, catalog *records.Catalog, gen TextGenerator, templateName string, vars map[string]string) (string, error) {
	body, err := templates.Lookup(ctx, catalog, templateName)
	if err != nil {
		return "", err
	}
	text, err := gen.CompleteText(ctx, feedbackSystemPrompt, templates.Render(body, vars))
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("feedback generation returned empty text")
	}
	return text, nil
}

func namedTranscript(ctx context.Context, catalog *records.Catalog, disc *records.Discussion) (string, error) {
	transcript, err := catalog.TranscriptForDiscussion(ctx, disc.ID)
	if err != nil {
		return "", err
	}
	if transcript == nil || strings.TrimSpace(transcript.NamedText) == "" {
		return "", fmt.Errorf("discussion %d has no named transcript", disc.ID)
	}
	return transcript.NamedText, nil
}

type groupStrategy struct {
	catalog *records.Catalog
}

func (s *groupStrategy) Mode() records.Mode { return records.ModeGroup }

func (s *groupStrategy) PrepareReview(ctx context.Context, disc *records.Discussion) (string, error) {
	if disc.Grade == "" {
		return "Awaiting group grade", nil
	}
	if disc.GroupFeedback == "" {
		return "Ready for feedback generation", nil
	}
	return "Awaiting approval", nil
}

func (s *groupStrategy) MissingGrades(_ context.Context, disc *records.Discussion) ([]string, error) {
	if strings.TrimSpace(disc.Grade) == "" {
		return []string{"group"}, nil
	}
	return nil, nil
}

func (s *groupStrategy) GenerateFeedback(ctx context.Context, disc *records.Discussion, gen TextGenerator) (int, error) {
	if strings.TrimSpace(disc.Grade) == "" || strings.TrimSpace(disc.GroupFeedback) != "" {
		return 0, nil
	}
	transcript, err := namedTranscript(ctx, s.catalog, disc)
	if err != nil {
		return 0, err
	}
	text, err := generateFromTemplate(ctx, s.catalog, gen, templates.GroupFeedback, map[string]string{
		"course":     disc.Course,
		"section":    disc.Section,
		"transcript": transcript,
	})
	if err != nil {
		return 0, err
	}
	if err := s.catalog.UpdateDiscussion(ctx, disc.ID, store.Fields{"group_feedback": text}); err != nil {
		return 0, err
	}
	disc.GroupFeedback = text
	return 1, nil
}

func (s *groupStrategy) DistributionTargets(ctx context.Context, disc *records.Discussion) ([]Target, error) {
	if !disc.Approved {
		return nil, nil
	}
	participants, err := s.catalog.ParticipantsForDiscussion(ctx, disc)
	if err != nil {
		return nil, err
	}
	targets := make([]Target, 0, len(participants))
	for _, participant := range participants {
		targets = append(targets, Target{
			Participant: participant,
			Grade:       disc.Grade,
			Feedback:    disc.GroupFeedback,
		})
	}
	return targets, nil
}

type individualStrategy struct {
	catalog *records.Catalog
}

func (s *individualStrategy) Mode() records.Mode { return records.ModeIndividual }

// PrepareReview lazily materializes one report per detected named
// participant once the speaker mapping is fully confirmed. Existing reports
// are left untouched so a re-run never duplicates or resets them.
func (s *individualStrategy) PrepareReview(ctx context.Context, disc *records.Discussion) (string, error) {
	transcript, err := s.catalog.TranscriptForDiscussion(ctx, disc.ID)
	if err != nil {
		return "", err
	}
	if transcript == nil {
		return "", fmt.Errorf("discussion %d has no transcript", disc.ID)
	}
	utterances, err := transcript.Utterances()
	if err != nil {
		return "", err
	}
	names, err := transcript.SpeakerMap()
	if err != nil {
		return "", err
	}

	for name, lines := range speakers.ParticipantLines(utterances, names) {
		participant, err := s.catalog.FindParticipantByName(ctx, disc, name)
		if err != nil {
			return "", err
		}
		if participant == nil {
			participant, err = s.catalog.UpsertParticipant(ctx, name, disc.Section, disc.Course, nil)
			if err != nil {
				return "", err
			}
		}
		if _, err := s.catalog.EnsureReport(ctx, disc.ID, participant.ID, lines); err != nil {
			return "", err
		}
	}

	missing, err := s.MissingGrades(ctx, disc)
	if err != nil {
		return "", err
	}
	if len(missing) > 0 {
		return "Awaiting grades: " + strings.Join(missing, ", "), nil
	}
	return "Ready for feedback generation", nil
}

func (s *individualStrategy) MissingGrades(ctx context.Context, disc *records.Discussion) ([]string, error) {
	reports, err := s.catalog.ReportsForDiscussion(ctx, disc.ID)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, report := range reports {
		if strings.TrimSpace(report.Grade) != "" {
			continue
		}
		participant, err := s.catalog.GetParticipant(ctx, report.ParticipantID)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("participant %d", report.ParticipantID)
		if participant != nil {
			name = participant.Name
		}
		missing = append(missing, name)
	}
	return missing, nil
}

// GenerateFeedback runs once per report that has a grade but no feedback.
// Reports with existing feedback are skipped, never regenerated.
func (s *individualStrategy) GenerateFeedback(ctx context.Context, disc *records.Discussion, gen TextGenerator) (int, error) {
	reports, err := s.catalog.ReportsForDiscussion(ctx, disc.ID)
	if err != nil {
		return 0, err
	}
	generated := 0
	for _, report := range reports {
		if strings.TrimSpace(report.Grade) == "" || strings.TrimSpace(report.Feedback) != "" {
			continue
		}
		participant, err := s.catalog.GetParticipant(ctx, report.ParticipantID)
		if err != nil {
			return generated, err
		}
		name := fmt.Sprintf("participant %d", report.ParticipantID)
		if participant != nil {
			name = participant.Name
		}
		text, err := generateFromTemplate(ctx, s.catalog, gen, templates.IndividualFeedback, map[string]string{
			"course":      disc.Course,
			"section":     disc.Section,
			"participant": name,
			"transcript":  report.Excerpt,
		})
		if err != nil {
			return generated, err
		}
		if err := s.catalog.UpdateReport(ctx, report.ID, store.Fields{"feedback": text}); err != nil {
			return generated, err
		}
		generated++
	}
	return generated, nil
}

func (s *individualStrategy) DistributionTargets(ctx context.Context, disc *records.Discussion) ([]Target, error) {
	reports, err := s.catalog.ReportsForDiscussion(ctx, disc.ID)
	if err != nil {
		return nil, err
	}
	targets := make([]Target, 0, len(reports))
	for _, report := range reports {
		if !report.Approved || report.Sent {
			continue
		}
		participant, err := s.catalog.GetParticipant(ctx, report.ParticipantID)
		if err != nil {
			return nil, err
		}
		if participant == nil {
			continue
		}
		targets = append(targets, Target{
			Participant: participant,
			Report:      report,
			Grade:       report.Grade,
			Feedback:    report.Feedback,
		})
	}
	return targets, nil
}
