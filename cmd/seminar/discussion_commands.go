package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"seminar/internal/records"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discussions and their pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			var discussions []*records.Discussion
			if statusFilter != "" {
				status, ok := records.ParseStatus(statusFilter)
				if !ok {
					return fmt.Errorf("unknown status %q", statusFilter)
				}
				discussions, err = catalog.DiscussionsByStatus(cmd.Context(), status)
			} else {
				discussions, err = catalog.ListDiscussions(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(discussions) == 0 {
				fmt.Fprintln(out, "No discussions found")
				return nil
			}
			rows := make([][]string, 0, len(discussions))
			for _, disc := range discussions {
				rows = append(rows, []string{
					strconv.FormatInt(disc.ID, 10),
					disc.RecordingName,
					disc.Course,
					disc.Section,
					disc.Date,
					string(disc.Status),
					disc.NextStep,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Recording", "Course", "Section", "Date", "Status", "Next Step"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))

			stats, err := catalog.DiscussionStats(cmd.Context())
			if err != nil {
				return err
			}
			summary := make([]string, 0, len(stats))
			for _, status := range records.AllStatuses() {
				if count := stats[status]; count > 0 {
					summary = append(summary, fmt.Sprintf("%s %d", status, count))
				}
			}
			if len(summary) > 0 {
				fmt.Fprintln(out, strings.Join(summary, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Only list discussions with this status")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <discussion-id>",
		Short: "Show one discussion in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDiscussionID(args[0])
			if err != nil {
				return err
			}
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			disc, err := catalog.GetDiscussion(cmd.Context(), id)
			if err != nil {
				return err
			}
			if disc == nil {
				return fmt.Errorf("discussion %d not found", id)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader(fmt.Sprintf("Discussion %d", disc.ID), colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Status", statusKindFor(disc.Status), string(disc.Status), colorize))
			fmt.Fprintf(out, "%sRecording:           %s\n", statusIndent, disc.RecordingName)
			fmt.Fprintf(out, "%sCourse:              %s\n", statusIndent, disc.Course)
			fmt.Fprintf(out, "%sSection:             %s\n", statusIndent, disc.Section)
			fmt.Fprintf(out, "%sDate:                %s\n", statusIndent, disc.Date)
			fmt.Fprintf(out, "%sNext step:           %s\n", statusIndent, disc.NextStep)
			fmt.Fprintf(out, "%sApproved:            %s\n", statusIndent, yesNo(disc.Approved))
			if disc.Grade != "" {
				fmt.Fprintf(out, "%sGrade:               %s\n", statusIndent, disc.Grade)
			}
			if disc.GroupFeedback != "" {
				fmt.Fprintf(out, "%sGroup feedback:\n%s\n", statusIndent, indentBlock(disc.GroupFeedback))
			}

			reports, err := catalog.ReportsForDiscussion(cmd.Context(), disc.ID)
			if err != nil {
				return err
			}
			if len(reports) > 0 {
				for _, line := range renderSectionHeader("Reports", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, report := range reports {
					participant, err := catalog.GetParticipant(cmd.Context(), report.ParticipantID)
					if err != nil {
						return err
					}
					name := fmt.Sprintf("participant %d", report.ParticipantID)
					if participant != nil {
						name = participant.Name
					}
					fmt.Fprintf(out, "%s%s: grade=%s approved=%s sent=%s\n",
						statusIndent, name, orDash(report.Grade), yesNo(report.Approved), yesNo(report.Sent))
				}
			}

			if disc.ErrorLog != "" {
				for _, line := range renderSectionHeader("Error Log", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, indentBlock(disc.ErrorLog))
			}
			return nil
		},
	}
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <discussion-id>",
		Short: "Re-enter the failed step for a discussion in error",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDiscussionID(args[0])
			if err != nil {
				return err
			}
			manager, err := ctx.workflowManager()
			if err != nil {
				return err
			}
			status, err := manager.Retry(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Discussion %d moved back to %s\n", id, status)
			return nil
		},
	}
}

func statusKindFor(status records.Status) statusKind {
	switch status {
	case records.StatusError:
		return statusError
	case records.StatusSent:
		return statusOK
	case records.StatusReview, records.StatusApproved:
		return statusWarn
	default:
		return statusInfo
	}
}

func parseDiscussionID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid discussion id %q", arg)
	}
	return id, nil
}

func indentBlock(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = statusIndent + statusIndent + line
	}
	return strings.Join(lines, "\n")
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
