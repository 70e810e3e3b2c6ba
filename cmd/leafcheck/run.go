package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"pkt.systems/leafcheck/internal/appconfig"
	"pkt.systems/leafcheck/internal/checkin"
	"pkt.systems/leafcheck/internal/notify"
	"pkt.systems/leafcheck/internal/runner"
	"pkt.systems/leafcheck/internal/telemetry"
	"pkt.systems/leafcheck/internal/version"
	"pkt.systems/pslog"
)

const serviceName = "leafcheck"

type runOptions struct {
	configPath string
	noNotify   bool
	headed     bool
}

func (o *runOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&o.configPath, "config", "c", "", "config file path (default ~/.leafcheck/config.yaml)")
	flags.BoolVar(&o.noNotify, "no-notify", false, "print the report without sending it to Telegram")
	flags.BoolVar(&o.headed, "headed", false, "show the browser window")
}

// load reads the config and applies flag overrides.
func (o runOptions) load() (appconfig.Config, error) {
	cfg, err := appconfig.Load(o.configPath)
	if err != nil {
		return appconfig.Config{}, err
	}
	if o.headed {
		cfg.Browser.Headless = false
	}
	if o.noNotify {
		cfg.Notify.Telegram.BotToken = ""
		cfg.Notify.Telegram.ChatID = ""
	}
	return cfg, nil
}

func newRunCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check in every configured account once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

// runOnce fails only on setup errors; account outcomes go to the report.
func runOnce(cmd *cobra.Command, opts runOptions) error {
	ctx := cmd.Context()
	logger := pslog.Ctx(ctx)
	cfg, err := opts.load()
	if err != nil {
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
	creds := cfg.Credentials()
	if len(creds) == 0 {
		logger.Warn("no accounts configured", "hint", "set LEAFLOW_ACCOUNTS=email:password,...")
	}
	summary := coord.Run(ctx, creds)
	logger.Info("run complete", "run", summary.RunID, "succeeded", summary.Succeeded, "total", summary.Total)
	return nil
}

// newCoordinator wires the browser, the check-in flow and the notifier.
func newCoordinator(cfg appconfig.Config, out io.Writer) (*runner.Coordinator, error) {
	dispatcher, err := notify.NewDispatcher(cfg.TelegramSettings(), out)
	if err != nil {
		return nil, err
	}
	lo, hi := cfg.Jitter()
	return &runner.Coordinator{
		Accounts: &runner.Runner{
			Open: runner.BrowserOpener(cfg.BrowserOptions()),
			Flow: checkin.NewFlow(cfg.PortalEndpoints(), cfg.FlowTiming()),
		},
		Notifier:  dispatcher,
		JitterMin: lo,
		JitterMax: hi,
	}, nil
}

func flushTraces(ctx context.Context, shutdown telemetry.Shutdown) {
	if err := shutdown(context.WithoutCancel(ctx)); err != nil {
		pslog.Ctx(ctx).Warn("trace flush failed", "err", err)
	}
}
