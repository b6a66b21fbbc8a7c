package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"seminar/internal/store"
)

func newRosterCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage the participant roster",
	}
	cmd.AddCommand(newRosterListCommand(ctx))
	cmd.AddCommand(newRosterSyncCommand(ctx))
	cmd.AddCommand(newRosterAddCommand(ctx))
	return cmd
}

func newRosterListCommand(ctx *commandContext) *cobra.Command {
	var course string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known participants",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			participants, err := catalog.ListParticipants(cmd.Context(), course)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(participants) == 0 {
				fmt.Fprintln(out, "No participants found")
				return nil
			}
			rows := make([][]string, 0, len(participants))
			for _, p := range participants {
				rows = append(rows, []string{
					p.Name, p.Course, p.Section, orDash(p.Contact), orDash(p.GradebookUser),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Course", "Section", "Contact", "Gradebook User"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&course, "course", "", "Only list participants in this course")
	return cmd
}

func newRosterSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <course>",
		Short: "Import the course roster from the gradebook",
		Long: `Fetches the student roster from the gradebook API and upserts a
participant per entry, filling contact addresses and gradebook user
references. The course must be registered with a gradebook course
reference first (see seminar settings).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			courseName := strings.TrimSpace(args[0])
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			course, err := catalog.CourseByName(cmd.Context(), courseName)
			if err != nil {
				return err
			}
			if course == nil || strings.TrimSpace(course.GradebookCourse) == "" {
				return fmt.Errorf("course %q has no gradebook reference, set one with: seminar course set %s --gradebook-course <ref>", courseName, courseName)
			}
			client, err := ctx.gradebookClient()
			if err != nil {
				return err
			}
			entries, err := client.Roster(cmd.Context(), course.GradebookCourse)
			if err != nil {
				return err
			}
			synced := 0
			for _, entry := range entries {
				if strings.TrimSpace(entry.Name) == "" {
					continue
				}
				_, err := catalog.UpsertParticipant(cmd.Context(), entry.Name, entry.Section, courseName, store.Fields{
					"contact":        entry.Email,
					"gradebook_user": entry.UserRef,
				})
				if err != nil {
					return err
				}
				synced++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d participant(s) for %s\n", synced, courseName)
			return nil
		},
	}
}

func newRosterAddCommand(ctx *commandContext) *cobra.Command {
	var contact, gradebookUser string

	cmd := &cobra.Command{
		Use:   "add <course> <section> <name>",
		Short: "Add or update one participant by hand",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			fields := store.Fields{}
			if contact != "" {
				fields["contact"] = contact
			}
			if gradebookUser != "" {
				fields["gradebook_user"] = gradebookUser
			}
			participant, err := catalog.UpsertParticipant(cmd.Context(), args[2], args[1], args[0], fields)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s %s)\n", participant.Name, participant.Course, participant.Section)
			return nil
		},
	}

	cmd.Flags().StringVar(&contact, "contact", "", "Mail address for feedback delivery")
	cmd.Flags().StringVar(&gradebookUser, "gradebook-user", "", "Gradebook user reference for grade posting")
	return cmd
}
