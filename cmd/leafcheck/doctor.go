package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pkt.systems/leafcheck/internal/browser"
	"pkt.systems/pslog"
)

func newDoctorCmd() *cobra.Command {
	var opts runOptions
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check browser discovery and portal reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)
			out := cmd.OutOrStdout()
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			bopts := cfg.BrowserOptions()
			_, _ = fmt.Fprintf(out, "browser: %s\n", describeBrowser(bopts))
			_, _ = fmt.Fprintf(out, "accounts: %d\n", len(cfg.Credentials()))
			_, _ = fmt.Fprintf(out, "telegram: %t\n", cfg.TelegramSettings().Enabled())

			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			session, err := browser.Open(ctx, bopts)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()
			logger.Info("doctor browser launched", "binary", session.Binary())

			target := cfg.PortalEndpoints().LaunchpadURL()
			if err := session.Navigate(ctx, target); err != nil {
				return err
			}
			title, err := session.Title(ctx)
			if err != nil {
				return err
			}
			current, err := session.URL(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "portal title: %s\nportal url: %s\n", title, current)
			logger.Info("doctor ok", "url", current)
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall timeout for the browser check")
	return cmd
}

// describeBrowser reports which browser Open will use. With no candidate on
// disk Open still tries chromedp's own lookup, so that is not a failure here.
func describeBrowser(opts browser.Options) string {
	if opts.RemoteURL != "" {
		return "remote " + opts.RemoteURL
	}
	if binary, ok := opts.Resolve(); ok {
		return binary
	}
	return fmt.Sprintf("default resolution (none of %s found)", strings.Join(opts.Candidates, ", "))
}
