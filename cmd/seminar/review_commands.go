package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"seminar/internal/records"
	"seminar/internal/store"
)

func newGradeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "grade <discussion-id> [participant] <grade>",
		Short: "Record a grade on the discussion or on one participant's report",
		Long: `Records a grade for a discussion under review.

In group mode the grade lives on the discussion itself:

  seminar grade 12 8.5

In individual mode the grade lives on a participant's report:

  seminar grade 12 "Priya Shah" 9.0`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDiscussionID(args[0])
			if err != nil {
				return err
			}
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			disc, err := requireDiscussion(cmd, catalog, id)
			if err != nil {
				return err
			}
			if disc.Status != records.StatusReview {
				return fmt.Errorf("discussion %d is %s, grades are entered during review", id, disc.Status)
			}

			snapshot, err := catalog.SettingsSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if snapshot.Mode() == records.ModeGroup {
				if len(args) != 2 {
					return fmt.Errorf("group mode takes a single grade: seminar grade <discussion-id> <grade>")
				}
				grade := strings.TrimSpace(args[1])
				if grade == "" {
					return fmt.Errorf("grade must not be empty")
				}
				if err := catalog.UpdateDiscussion(cmd.Context(), id, store.Fields{"grade": grade}); err != nil {
					return err
				}
				fmt.Fprintf(out, "Recorded grade %s for discussion %d\n", grade, id)
				return nil
			}

			if len(args) != 3 {
				return fmt.Errorf("individual mode needs a participant: seminar grade <discussion-id> <participant> <grade>")
			}
			name := strings.TrimSpace(args[1])
			grade := strings.TrimSpace(args[2])
			if name == "" || grade == "" {
				return fmt.Errorf("participant and grade must not be empty")
			}
			report, participant, err := findReport(cmd, catalog, disc, name)
			if err != nil {
				return err
			}
			if err := catalog.UpdateReport(cmd.Context(), report.ID, store.Fields{"grade": grade}); err != nil {
				return err
			}
			fmt.Fprintf(out, "Recorded grade %s for %s\n", grade, participant.Name)
			return nil
		},
	}
}

func newFeedbackCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "feedback <discussion-id>",
		Short: "Generate feedback drafts for every graded record without one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDiscussionID(args[0])
			if err != nil {
				return err
			}
			service, err := ctx.feedbackService()
			if err != nil {
				return err
			}
			result, err := service.Generate(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generated %d feedback draft(s)\n", result.Generated)
			if len(result.Missing) > 0 {
				fmt.Fprintf(out, "Still awaiting grades for: %s\n", strings.Join(result.Missing, ", "))
			}
			if result.Hint != "" {
				fmt.Fprintf(out, "Next step: %s\n", result.Hint)
			}
			return nil
		},
	}
}

func newApproveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <discussion-id> [participant]",
		Short: "Approve generated feedback for distribution",
		Long: `Approves feedback so the send command may distribute it.

In group mode the whole discussion is approved. In individual mode every
report that already has feedback is approved, or just one participant's
report when a name is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDiscussionID(args[0])
			if err != nil {
				return err
			}
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			disc, err := requireDiscussion(cmd, catalog, id)
			if err != nil {
				return err
			}
			if disc.Status != records.StatusReview && disc.Status != records.StatusApproved {
				return fmt.Errorf("discussion %d is %s, only discussions in review can be approved", id, disc.Status)
			}

			snapshot, err := catalog.SettingsSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if snapshot.Mode() == records.ModeGroup {
				if len(args) != 1 {
					return fmt.Errorf("group mode approves the whole discussion: seminar approve <discussion-id>")
				}
				if strings.TrimSpace(disc.GroupFeedback) == "" {
					return fmt.Errorf("discussion %d has no feedback yet, run: seminar feedback %d", id, id)
				}
				if err := catalog.UpdateDiscussion(cmd.Context(), id, store.Fields{"approved": "true"}); err != nil {
					return err
				}
				if err := catalog.SetDiscussionStatus(cmd.Context(), id, records.StatusApproved, "Ready to send"); err != nil {
					return err
				}
				fmt.Fprintf(out, "Approved discussion %d\n", id)
				return nil
			}

			approved := 0
			if len(args) == 2 {
				report, participant, err := findReport(cmd, catalog, disc, args[1])
				if err != nil {
					return err
				}
				if strings.TrimSpace(report.Feedback) == "" {
					return fmt.Errorf("%s has no feedback yet, run: seminar feedback %d", participant.Name, id)
				}
				if err := catalog.UpdateReport(cmd.Context(), report.ID, store.Fields{"approved": "true"}); err != nil {
					return err
				}
				approved = 1
			} else {
				reports, err := catalog.ReportsForDiscussion(cmd.Context(), id)
				if err != nil {
					return err
				}
				for _, report := range reports {
					if report.Approved || strings.TrimSpace(report.Feedback) == "" {
						continue
					}
					if err := catalog.UpdateReport(cmd.Context(), report.ID, store.Fields{"approved": "true"}); err != nil {
						return err
					}
					approved++
				}
				if approved == 0 {
					return fmt.Errorf("no reports with feedback to approve, run: seminar feedback %d", id)
				}
			}
			if disc.Status == records.StatusReview {
				if err := catalog.SetDiscussionStatus(cmd.Context(), id, records.StatusApproved, "Ready to send"); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "Approved %d report(s)\n", approved)
			return nil
		},
	}
}

func newSendCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "send <discussion-id>",
		Short: "Distribute approved feedback through the enabled channels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDiscussionID(args[0])
			if err != nil {
				return err
			}
			service, err := ctx.distributionService()
			if err != nil {
				return err
			}
			result, err := service.SendApproved(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sent %d, failed %d\n", result.Sent, result.Failed)
			for _, detail := range result.Errors {
				fmt.Fprintf(out, "%s%s\n", statusIndent, detail)
			}
			return nil
		},
	}
}

func requireDiscussion(cmd *cobra.Command, catalog *records.Catalog, id int64) (*records.Discussion, error) {
	disc, err := catalog.GetDiscussion(cmd.Context(), id)
	if err != nil {
		return nil, err
	}
	if disc == nil {
		return nil, fmt.Errorf("discussion %d not found", id)
	}
	return disc, nil
}

func findReport(cmd *cobra.Command, catalog *records.Catalog, disc *records.Discussion, name string) (*records.Report, *records.Participant, error) {
	participant, err := catalog.FindParticipantByName(cmd.Context(), disc, strings.TrimSpace(name))
	if err != nil {
		return nil, nil, err
	}
	if participant == nil {
		return nil, nil, fmt.Errorf("no participant named %q in %s %s", name, disc.Course, disc.Section)
	}
	report, err := catalog.ReportFor(cmd.Context(), disc.ID, participant.ID)
	if err != nil {
		return nil, nil, err
	}
	if report == nil {
		return nil, nil, fmt.Errorf("%s has no report for discussion %d yet", participant.Name, disc.ID)
	}
	return report, participant, nil
}
