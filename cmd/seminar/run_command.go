package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"seminar/internal/daemon"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline in the foreground",
		Long: `Runs the ingest and advancement loop in the foreground until
interrupted. With --once a single tick is executed and the command
exits, which is useful for cron-style scheduling and debugging.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.workflowManager()
			if err != nil {
				return err
			}
			if once {
				if err := manager.RunOnce(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Tick complete")
				return nil
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			catalog, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			d, err := daemon.New(cfg, catalog.Store(), catalog, ctx.logger(), manager)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := d.Start(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Pipeline running, press Ctrl-C to stop")
			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Execute one tick and exit")
	return cmd
}
