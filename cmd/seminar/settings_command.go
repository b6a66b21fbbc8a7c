package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"seminar/internal/records"
)

var knownSettingKeys = []string{
	records.KeyMode,
	records.KeyChannelMail,
	records.KeyChannelGradebook,
}

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change runtime settings",
		Long: `Runtime settings steer the pipeline without a restart. Each key can
be set globally, per course, or per discussion; the most specific
scope wins.

Keys: ` + strings.Join(knownSettingKeys, ", "),
	}
	cmd.AddCommand(newSettingsListCommand(ctx))
	cmd.AddCommand(newSettingsSetCommand(ctx))
	cmd.AddCommand(newSettingsGetCommand(ctx))
	return cmd
}

func newSettingsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every stored setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			rows, err := catalog.ListSettings(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No settings stored, defaults apply")
				return nil
			}
			table := make([][]string, 0, len(rows))
			for _, row := range rows {
				table = append(table, []string{
					row.Get("scope"),
					orDash(row.Get("scope_id")),
					row.Get("key"),
					row.Get("value"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Scope", "Scope ID", "Key", "Value"},
				table,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	var course string
	var discussion int64

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting globally, per course, or per discussion",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			value := strings.TrimSpace(args[1])
			if course != "" && discussion != 0 {
				return fmt.Errorf("choose either --course or --discussion, not both")
			}
			scope := records.ScopeGlobal
			scopeID := ""
			switch {
			case course != "":
				scope = records.ScopeCourse
				scopeID = course
			case discussion != 0:
				scope = records.ScopeDiscussion
				scopeID = strconv.FormatInt(discussion, 10)
			}
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			if err := catalog.SetSetting(cmd.Context(), scope, scopeID, key, value); err != nil {
				return err
			}
			target := "globally"
			if scopeID != "" {
				target = fmt.Sprintf("for %s %s", scope, scopeID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s=%s %s\n", key, value, target)
			return nil
		},
	}

	cmd.Flags().StringVar(&course, "course", "", "Scope the setting to one course")
	cmd.Flags().Int64Var(&discussion, "discussion", 0, "Scope the setting to one discussion")
	return cmd
}

func newSettingsGetCommand(ctx *commandContext) *cobra.Command {
	var course string
	var discussion int64

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			snapshot, err := catalog.SettingsSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			key := strings.TrimSpace(args[0])
			value := snapshot.Resolve(key, course, discussion)
			if value == "" && key == records.KeyMode {
				value = string(records.ModeGroup)
			}
			if value == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is not set\n", key)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	cmd.Flags().StringVar(&course, "course", "", "Resolve in the context of this course")
	cmd.Flags().Int64Var(&discussion, "discussion", 0, "Resolve in the context of this discussion")
	return cmd
}
