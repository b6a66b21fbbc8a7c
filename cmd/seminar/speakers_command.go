package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSpeakersCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speakers",
		Short: "Inspect and confirm diarized speaker mappings",
	}
	cmd.AddCommand(newSpeakersListCommand(ctx))
	cmd.AddCommand(newSpeakersConfirmCommand(ctx))
	cmd.AddCommand(newSpeakersConfirmAllCommand(ctx))
	return cmd
}

func newSpeakersListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <discussion-id>",
		Short: "Show diarization labels and suggested names",
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
			mappings, err := catalog.MappingsForDiscussion(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(mappings) == 0 {
				fmt.Fprintln(out, "No speaker mappings yet")
				return nil
			}
			rows := make([][]string, 0, len(mappings))
			for _, mapping := range mappings {
				rows = append(rows, []string{
					mapping.Label,
					orDash(mapping.SuggestedName),
					orDash(mapping.ConfirmedName),
					yesNo(mapping.Confirmed),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Label", "Suggested", "Confirmed Name", "Confirmed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newSpeakersConfirmCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <discussion-id> <label> <name>",
		Short: "Confirm one diarization label as a participant name",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseDiscussionID(args[0])
			if err != nil {
				return err
			}
			label := strings.TrimSpace(args[1])
			name := strings.TrimSpace(args[2])
			if label == "" || name == "" {
				return fmt.Errorf("label and name must not be empty")
			}
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			if err := catalog.ConfirmSpeaker(cmd.Context(), id, label, name); err != nil {
				return err
			}
			resolver, err := ctx.resolver()
			if err != nil {
				return err
			}
			if err := resolver.RenderTranscript(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Confirmed %s as %s\n", label, name)
			return nil
		},
	}
}

func newSpeakersConfirmAllCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm-all <discussion-id>",
		Short: "Accept every suggested name that is not confirmed yet",
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
			mappings, err := catalog.MappingsForDiscussion(cmd.Context(), id)
			if err != nil {
				return err
			}
			confirmed := 0
			for _, mapping := range mappings {
				if mapping.Confirmed {
					continue
				}
				if strings.TrimSpace(mapping.SuggestedName) == "" {
					return fmt.Errorf("label %s has no suggested name, confirm it explicitly", mapping.Label)
				}
				if err := catalog.ConfirmSpeaker(cmd.Context(), id, mapping.Label, mapping.SuggestedName); err != nil {
					return err
				}
				confirmed++
			}
			if confirmed > 0 {
				resolver, err := ctx.resolver()
				if err != nil {
					return err
				}
				if err := resolver.RenderTranscript(cmd.Context(), id); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Confirmed %d speaker(s)\n", confirmed)
			return nil
		},
	}
}
