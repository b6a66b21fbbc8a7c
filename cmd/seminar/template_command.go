package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"seminar/internal/templates"
)

func newTemplateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Inspect and override prompt templates",
	}
	cmd.AddCommand(newTemplateListCommand(ctx))
	cmd.AddCommand(newTemplateShowCommand(ctx))
	cmd.AddCommand(newTemplateSetCommand(ctx))
	cmd.AddCommand(newTemplateResetCommand(ctx))
	return cmd
}

func newTemplateListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List template names and whether each is overridden",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			stored, err := catalog.ListTemplates(cmd.Context())
			if err != nil {
				return err
			}
			overridden := make(map[string]bool, len(stored))
			for _, tpl := range stored {
				overridden[tpl.Name] = true
			}
			rows := make([][]string, 0)
			for _, name := range templates.Names() {
				source := "built-in"
				if overridden[name] {
					source = "overridden"
				}
				rows = append(rows, []string{name, source})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Template", "Source"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newTemplateShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Print the effective template body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if !templates.Known(name) {
				return fmt.Errorf("unknown template %q, known: %s", name, strings.Join(templates.Names(), ", "))
			}
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			body, err := templates.Lookup(cmd.Context(), catalog, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), body)
			return nil
		},
	}
}

func newTemplateSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <file>",
		Short: "Override a template with the contents of a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if !templates.Known(name) {
				return fmt.Errorf("unknown template %q, known: %s", name, strings.Join(templates.Names(), ", "))
			}
			body, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			if strings.TrimSpace(string(body)) == "" {
				return fmt.Errorf("template file %s is empty", args[1])
			}
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			if err := catalog.SetTemplate(cmd.Context(), name, string(body)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %s overridden\n", name)
			return nil
		},
	}
}

func newTemplateResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <name>",
		Short: "Remove an override, returning to the built-in body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			removed, err := catalog.DeleteTemplate(cmd.Context(), name)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Template %s had no override\n", name)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %s reset to built-in\n", name)
			return nil
		},
	}
}
