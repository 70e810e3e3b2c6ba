package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/leafcheck/internal/schedule"
	"pkt.systems/leafcheck/internal/telemetry"
	"pkt.systems/leafcheck/internal/version"
	"pkt.systems/pslog"
)

func newScheduleCmd() *cobra.Command {
	var opts runOptions
	var spec string
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the check-in on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if strings.TrimSpace(spec) != "" {
				cfg.Schedule.Cron = spec
			}
			if runOnStart {
				cfg.Schedule.RunOnStart = true
			}
			if err := schedule.Validate(cfg.Schedule.Cron); err != nil {
				return err
			}
			shutdown, err := telemetry.Setup(cfg.Telemetry.Trace, cmd.ErrOrStderr(), serviceName, version.Current())
			if err != nil {
				return err
			}
			defer flushTraces(ctx, shutdown)

			coord, err := newCoordinator(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			sched, err := schedule.New(ctx, cfg.Schedule.Cron, func(ctx context.Context) {
				summary := coord.Run(ctx, cfg.Credentials())
				logger.Info("scheduled run complete", "run", summary.RunID, "succeeded", summary.Succeeded, "total", summary.Total)
			})
			if err != nil {
				return err
			}
			logger.Info("schedule armed", "cron", cfg.Schedule.Cron, "run_on_start", cfg.Schedule.RunOnStart)
			sched.Run(ctx, cfg.Schedule.RunOnStart)
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVar(&spec, "cron", "", "cron spec with seconds field, overrides schedule.cron")
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run once immediately before waiting for the first trigger")
	return cmd
}
