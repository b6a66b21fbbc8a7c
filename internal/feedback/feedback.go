// Package feedback implements the reviewer-triggered feedback generation
// action. Generation is idempotent and re-triggerable: a discussion can sit
// in review across many invocations while grades trickle in, and holders
// that already carry feedback are never regenerated.
package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"seminar/internal/logging"
	"seminar/internal/modes"
	"seminar/internal/records"
	"seminar/internal/services"
)

// Result summarizes one generation invocation.
type Result struct {
	Generated int
	// Missing names the grade holders still lacking a grade.
	Missing []string
	// Hint is the next-step text written back to the discussion.
	Hint string
}

// Service drives feedback generation for discussions in review.
type Service struct {
	catalog   *records.Catalog
	generator modes.TextGenerator
	callDelay time.Duration
	sleep     func(time.Duration)
	logger    *slog.Logger
}

func NewService(catalog *records.Catalog, generator modes.TextGenerator, callDelay time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		catalog:   catalog,
		generator: generator,
		callDelay: callDelay,
		sleep:     time.Sleep,
		logger:    logging.NewComponentLogger(logger, "feedback"),
	}
}

// WithSleeper overrides the inter-call pacing sleep, for tests.
func (s *Service) WithSleeper(sleep func(time.Duration)) *Service {
	s.sleep = sleep
	return s
}

// Generate drafts feedback for every graded-but-unwritten holder of the
// discussion and refreshes the reviewer hint. Missing grades are a
// precondition, not an error: generation proceeds for the holders that do
// have grades and the hint reports who is still ungraded.
func (s *Service) Generate(ctx context.Context, discussionID int64) (*Result, error) {
	disc, err := s.catalog.GetDiscussion(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if disc == nil {
		return nil, services.Wrap(services.ErrNotFound, "feedback", "load discussion", fmt.Sprintf("discussion %d", discussionID), nil)
	}
	if disc.Status != records.StatusReview {
		return nil, services.Wrap(services.ErrValidation, "feedback", "generate",
			fmt.Sprintf("discussion %d is %s, feedback generation requires review", discussionID, disc.Status), nil)
	}

	snapshot, err := s.catalog.SettingsSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	strategy := modes.ForMode(snapshot.Mode(), s.catalog)
	ctx = services.WithDiscussionID(ctx, discussionID)

	generated, err := strategy.GenerateFeedback(ctx, disc, s.paced())
	if err != nil {
		return nil, err
	}
	missing, err := strategy.MissingGrades(ctx, disc)
	if err != nil {
		return nil, err
	}

	hint := "Awaiting approval"
	if len(missing) > 0 {
		hint = "Awaiting grades: " + strings.Join(missing, ", ")
	}
	if err := s.catalog.SetNextStep(ctx, discussionID, hint); err != nil {
		return nil, err
	}
	s.logger.Info("feedback generation finished", logging.Args(
		logging.Int64(logging.FieldDiscussionID, discussionID),
		logging.Int("generated", generated),
		logging.Int("missing_grades", len(missing)))...)
	return &Result{Generated: generated, Missing: missing, Hint: hint}, nil
}

// paced wraps the generator so consecutive generation calls within one
// invocation are separated by the configured delay.
func (s *Service) paced() modes.TextGenerator {
	return &pacedGenerator{inner: s.generator, delay: s.callDelay, sleep: s.sleep}
}

type pacedGenerator struct {
	inner  modes.TextGenerator
	delay  time.Duration
	sleep  func(time.Duration)
	called bool
}

func (p *pacedGenerator) CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if p.called && p.delay > 0 {
		p.sleep(p.delay)
	}
	p.called = true
	return p.inner.CompleteText(ctx, systemPrompt, userPrompt)
}
