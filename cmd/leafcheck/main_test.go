package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"pkt.systems/leafcheck/internal/appconfig"
	"pkt.systems/leafcheck/internal/browser"
	"pkt.systems/leafcheck/internal/notify"
	"pkt.systems/leafcheck/internal/runner"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func findCmd(root *cobra.Command, name string) *cobra.Command {
	for _, cmd := range root.Commands() {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

func TestRootSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"run", "schedule", "doctor", "config", "version"} {
		if findCmd(root, name) == nil {
			t.Fatalf("expected root command to include %s", name)
		}
	}
	for _, cmd := range []*cobra.Command{root, findCmd(root, "run"), findCmd(root, "schedule")} {
		for _, flag := range []string{"config", "no-notify", "headed"} {
			if cmd.Flags().Lookup(flag) == nil {
				t.Fatalf("%s: missing --%s", cmd.Name(), flag)
			}
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "leafcheck") {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestConfigInitWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	out, err := execute(t, "config", "init", "-c", path)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("expected written path in output, got %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config missing: %v", err)
	}
	if _, err := execute(t, "config", "init", "-c", path); err == nil {
		t.Fatalf("expected error without --force")
	}
	if _, err := execute(t, "config", "init", "-c", path, "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
}

func TestRunWithoutAccountsReportsEmptyBatch(t *testing.T) {
	t.Setenv("LEAFLOW_ACCOUNTS", "")
	path := filepath.Join(t.TempDir(), "absent.yaml")
	for _, args := range [][]string{
		{"run", "-c", path, "--no-notify"},
		{"-c", path, "--no-notify"},
	} {
		out, err := execute(t, args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if !strings.Contains(out, "📊 成功: 0/0") {
			t.Fatalf("%v: expected empty report, got %q", args, out)
		}
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("config_version: 9\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := execute(t, "run", "-c", path); err == nil {
		t.Fatalf("expected config error")
	}
}

func TestScheduleRejectsBadCron(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	_, err := execute(t, "schedule", "-c", path, "--cron", "not a cron")
	if err == nil || !strings.Contains(err.Error(), "parse schedule") {
		t.Fatalf("expected cron error, got %v", err)
	}
}

func TestRunOptionsOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:ABC")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	opts := runOptions{configPath: filepath.Join(t.TempDir(), "absent.yaml")}

	cfg, err := opts.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.TelegramSettings().Enabled() || !cfg.Browser.Headless {
		t.Fatalf("unexpected baseline %+v", cfg)
	}

	opts.noNotify = true
	opts.headed = true
	cfg, err = opts.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TelegramSettings().Enabled() {
		t.Fatalf("--no-notify should disable telegram")
	}
	if cfg.Browser.Headless {
		t.Fatalf("--headed should disable headless mode")
	}
}

func TestNewCoordinatorWiring(t *testing.T) {
	cfg := appconfig.DefaultConfig()
	cfg.Notify.Telegram.BotToken = "123:ABC"
	cfg.Notify.Telegram.ChatID = "42"
	cfg.Timing.JitterMinSeconds = 1
	cfg.Timing.JitterMaxSeconds = 2

	coord, err := newCoordinator(cfg, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("newCoordinator: %v", err)
	}
	dispatcher, ok := coord.Notifier.(*notify.Dispatcher)
	if !ok || dispatcher.Sender == nil {
		t.Fatalf("expected telegram dispatcher, got %#v", coord.Notifier)
	}
	acct, ok := coord.Accounts.(*runner.Runner)
	if !ok || acct.Open == nil || acct.Flow == nil {
		t.Fatalf("expected browser runner, got %#v", coord.Accounts)
	}
	if coord.JitterMin.Seconds() != 1 || coord.JitterMax.Seconds() != 2 {
		t.Fatalf("unexpected jitter %s..%s", coord.JitterMin, coord.JitterMax)
	}
}

func TestDescribeBrowser(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "chromium")
	if err := os.WriteFile(present, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	missing := filepath.Join(dir, "absent")

	tests := []struct {
		name string
		opts browser.Options
		want string
	}{
		{name: "remote", opts: browser.Options{RemoteURL: "ws://127.0.0.1:9222"}, want: "remote ws://127.0.0.1:9222"},
		{name: "candidate", opts: browser.Options{Candidates: []string{missing, present}}, want: present},
		{name: "fallback", opts: browser.Options{Candidates: []string{missing}}, want: "default resolution"},
	}
	for _, tc := range tests {
		if got := describeBrowser(tc.opts); !strings.HasPrefix(got, tc.want) {
			t.Fatalf("%s: describeBrowser() = %q, want prefix %q", tc.name, got, tc.want)
		}
	}
}
