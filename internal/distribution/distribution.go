// Package distribution fans approved feedback out through the enabled
// delivery channels. Per-recipient failures are recorded and the batch
// continues; the discussion transitions to sent once every enabled channel
// has run, so a later retry only touches recipients that were not served.
package distribution

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

// Mailer delivers feedback text to a participant contact address.
type Mailer interface {
	Enabled() bool
	Send(ctx context.Context, to, subject, body string) error
}

// GradePoster writes a grade and comment into the external gradebook.
type GradePoster interface {
	Enabled() bool
	DefaultItemType() string
	PostGrade(ctx context.Context, courseRef, itemType, itemRef, userRef, grade, comment string) error
}

// Result summarizes one fan-out invocation. Counts are per recipient and
// channel: a participant reached over two channels contributes two sends.
type Result struct {
	Sent   int
	Failed int
	Errors []string
}

type Service struct {
	catalog   *records.Catalog
	mailer    Mailer
	poster    GradePoster
	callDelay time.Duration
	sleep     func(time.Duration)
	logger    *slog.Logger
}

func NewService(catalog *records.Catalog, mailer Mailer, poster GradePoster, callDelay time.Duration, logger *slog.Logger) *Service {
	return &Service{
		catalog:   catalog,
		mailer:    mailer,
		poster:    poster,
		callDelay: callDelay,
		sleep:     time.Sleep,
		logger:    logging.NewComponentLogger(logger, "distribution"),
	}
}

// WithSleeper overrides the inter-call pacing sleep, for tests.
func (s *Service) WithSleeper(sleep func(time.Duration)) *Service {
	s.sleep = sleep
	return s
}

// SendApproved delivers the discussion's approved feedback through every
// enabled channel. A failure for one recipient is appended to the error log
// and the batch continues; after all channels have run the discussion is
// marked sent regardless of partial failures.
func (s *Service) SendApproved(ctx context.Context, discussionID int64) (*Result, error) {
	disc, err := s.catalog.GetDiscussion(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if disc == nil {
		return nil, services.Wrap(services.ErrNotFound, "distribution", "load discussion", fmt.Sprintf("discussion %d", discussionID), nil)
	}
	if disc.Status == records.StatusSent {
		return &Result{}, nil
	}
	if disc.Status != records.StatusReview && disc.Status != records.StatusApproved {
		return nil, services.Wrap(services.ErrValidation, "distribution", "send",
			fmt.Sprintf("discussion %d is %s, distribution requires review or approved", discussionID, disc.Status), nil)
	}

	snapshot, err := s.catalog.SettingsSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	strategy := modes.ForMode(snapshot.Mode(), s.catalog)
	if strategy.Mode() == records.ModeGroup && !disc.Approved {
		return nil, services.Wrap(services.ErrValidation, "distribution", "send",
			fmt.Sprintf("discussion %d is not approved", discussionID), nil)
	}
	targets, err := strategy.DistributionTargets(ctx, disc)
	if err != nil {
		return nil, err
	}
	if strategy.Mode() == records.ModeIndividual && len(targets) == 0 {
		return nil, services.Wrap(services.ErrValidation, "distribution", "send",
			fmt.Sprintf("discussion %d has no approved unsent reports", discussionID), nil)
	}

	ctx = services.WithDiscussionID(ctx, discussionID)
	result := &Result{}
	mailOn := s.mailer != nil && s.mailer.Enabled() &&
		snapshot.ChannelEnabled(records.KeyChannelMail, disc.Course, disc.ID)
	gradebookOn := s.poster != nil && s.poster.Enabled() &&
		snapshot.ChannelEnabled(records.KeyChannelGradebook, disc.Course, disc.ID)

	failedReports := make(map[int64]bool)
	if mailOn {
		s.runMail(ctx, disc, targets, result, failedReports)
	}
	if gradebookOn {
		s.runGradebook(ctx, disc, snapshot, targets, result, failedReports)
	}

	// Report-scoped sent flags flip only for recipients every channel served.
	if mailOn || gradebookOn {
		for _, target := range targets {
			if target.Report == nil || failedReports[target.Report.ID] {
				continue
			}
			if err := s.catalog.MarkReportSent(ctx, target.Report.ID); err != nil {
				return nil, err
			}
		}
	}

	if err := s.catalog.SetDiscussionStatus(ctx, disc.ID, records.StatusSent, "Distribution complete"); err != nil {
		return nil, err
	}
	s.logger.Info("distribution finished", logging.Args(
		logging.Int64(logging.FieldDiscussionID, discussionID),
		logging.Int("sent", result.Sent),
		logging.Int("failed", result.Failed))...)
	return result, nil
}

func (s *Service) runMail(ctx context.Context, disc *records.Discussion, targets []modes.Target, result *Result, failedReports map[int64]bool) {
	subject := fmt.Sprintf("Discussion feedback %s %s", disc.Course, disc.Date)
	for i, target := range targets {
		if i > 0 && s.callDelay > 0 {
			s.sleep(s.callDelay)
		}
		if strings.TrimSpace(target.Participant.Contact) == "" {
			s.recordFailure(ctx, disc, target, result, failedReports,
				fmt.Errorf("participant %s has no contact address", target.Participant.Name))
			continue
		}
		body := target.Feedback
		if target.Grade != "" {
			body = "Grade: " + target.Grade + "\n\n" + body
		}
		if err := s.mailer.Send(ctx, target.Participant.Contact, subject, body); err != nil {
			s.recordFailure(ctx, disc, target, result, failedReports,
				fmt.Errorf("mail to %s: %w", target.Participant.Name, err))
			continue
		}
		result.Sent++
	}
}

func (s *Service) runGradebook(ctx context.Context, disc *records.Discussion, snapshot records.SettingsSnapshot, targets []modes.Target, result *Result, failedReports map[int64]bool) {
	courseRef := disc.Course
	itemType := snapshot.ItemType(disc.Course, disc.ID, s.poster.DefaultItemType())
	if overlay, err := s.catalog.CourseByName(ctx, disc.Course); err == nil && overlay != nil {
		if overlay.GradebookCourse != "" {
			courseRef = overlay.GradebookCourse
		}
		if overlay.ItemType != "" {
			itemType = overlay.ItemType
		}
	}
	if disc.GradebookItemType != "" {
		itemType = disc.GradebookItemType
	}
	if disc.GradebookItem == "" {
		for _, target := range targets {
			s.recordFailure(ctx, disc, target, result, failedReports,
				fmt.Errorf("discussion %d has no gradebook item reference", disc.ID))
		}
		return
	}
	for i, target := range targets {
		if i > 0 && s.callDelay > 0 {
			s.sleep(s.callDelay)
		}
		if strings.TrimSpace(target.Participant.GradebookUser) == "" {
			s.recordFailure(ctx, disc, target, result, failedReports,
				fmt.Errorf("participant %s has no gradebook reference", target.Participant.Name))
			continue
		}
		err := s.poster.PostGrade(ctx, courseRef, itemType, disc.GradebookItem,
			target.Participant.GradebookUser, target.Grade, target.Feedback)
		if err != nil {
			s.recordFailure(ctx, disc, target, result, failedReports,
				fmt.Errorf("gradebook post for %s: %w", target.Participant.Name, err))
			continue
		}
		result.Sent++
	}
}

func (s *Service) recordFailure(ctx context.Context, disc *records.Discussion, target modes.Target, result *Result, failedReports map[int64]bool, err error) {
	result.Failed++
	result.Errors = append(result.Errors, err.Error())
	if target.Report != nil {
		failedReports[target.Report.ID] = true
	}
	s.logger.Warn("distribution recipient failed", logging.Args(
		logging.Int64(logging.FieldDiscussionID, disc.ID),
		logging.String("participant", target.Participant.Name),
		logging.Error(err))...)
	if appendErr := s.catalog.AppendDiscussionError(ctx, disc.ID, err.Error()); appendErr != nil {
		s.logger.Error("error log append failed", logging.Args(logging.Error(appendErr))...)
	}
}
