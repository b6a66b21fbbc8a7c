package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"seminar/internal/store"
)

func newCourseCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "Manage course records and their gradebook wiring",
	}
	cmd.AddCommand(newCourseListCommand(ctx))
	cmd.AddCommand(newCourseSetCommand(ctx))
	return cmd
}

func newCourseListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			courses, err := catalog.ListCourses(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(courses) == 0 {
				fmt.Fprintln(out, "No courses registered")
				return nil
			}
			rows := make([][]string, 0, len(courses))
			for _, course := range courses {
				rows = append(rows, []string{
					course.Name,
					orDash(course.GradebookCourse),
					orDash(course.ItemType),
					orDash(course.BaseURL),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Course", "Gradebook Ref", "Item Type", "Base URL"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newCourseSetCommand(ctx *commandContext) *cobra.Command {
	var gradebookCourse, itemType, baseURL string

	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Register a course or update its gradebook wiring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			fields := store.Fields{}
			if cmd.Flags().Changed("gradebook-course") {
				fields["gradebook_course"] = gradebookCourse
			}
			if cmd.Flags().Changed("item-type") {
				fields["item_type"] = itemType
			}
			if cmd.Flags().Changed("base-url") {
				fields["base_url"] = baseURL
			}
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			course, err := catalog.UpsertCourse(cmd.Context(), name, fields)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved course %s\n", course.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&gradebookCourse, "gradebook-course", "", "Gradebook course reference used for roster sync and grade posting")
	cmd.Flags().StringVar(&itemType, "item-type", "", "Gradebook item type override for this course")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Gradebook base URL override")
	return cmd
}
