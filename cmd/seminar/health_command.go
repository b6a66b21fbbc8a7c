package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"seminar/internal/deps"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check record store and external tool readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.workflowManager()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("Health", colorize) {
				fmt.Fprintln(out, line)
			}
			failures := 0
			for _, health := range manager.Health(cmd.Context()) {
				kind := statusOK
				if !health.Ready {
					kind = statusError
					failures++
				}
				fmt.Fprintln(out, renderStatusLine(health.Name, kind, health.Detail, colorize))
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			for _, status := range deps.CheckBinaries(deps.Required(cfg.UvxBinary(), cfg.FFmpegBinary())) {
				kind := statusOK
				if !status.Available {
					kind = statusError
					failures++
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, status.Detail, colorize))
			}
			if failures > 0 {
				return fmt.Errorf("%d health check(s) failed", failures)
			}
			return nil
		},
	}
}
