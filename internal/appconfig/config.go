package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"pkt.systems/leafcheck/internal/browser"
	"pkt.systems/leafcheck/internal/checkin"
	"pkt.systems/leafcheck/internal/notify"
	"pkt.systems/leafcheck/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int `mapstructure:"config_version" yaml:"config_version"`
	// Accounts holds identifier:secret pairs; usually supplied through
	// LEAFLOW_ACCOUNTS rather than the file.
	Accounts         string          `mapstructure:"accounts" yaml:"accounts"`
	AccountSeparator string          `mapstructure:"account_separator" yaml:"account_separator"`
	Portal           PortalConfig    `mapstructure:"portal" yaml:"portal"`
	Browser          BrowserConfig   `mapstructure:"browser" yaml:"browser"`
	Timing           TimingConfig    `mapstructure:"timing" yaml:"timing"`
	Notify           NotifyConfig    `mapstructure:"notify" yaml:"notify"`
	Schedule         ScheduleConfig  `mapstructure:"schedule" yaml:"schedule"`
	Telemetry        TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// PortalConfig locates the portal pages.
type PortalConfig struct {
	BaseURL       string `mapstructure:"base_url" yaml:"base_url"`
	LoginPath     string `mapstructure:"login_path" yaml:"login_path"`
	LaunchpadPath string `mapstructure:"launchpad_path" yaml:"launchpad_path"`
}

// BrowserConfig configures the automated browser.
type BrowserConfig struct {
	Headless               bool     `mapstructure:"headless" yaml:"headless"`
	Stealth                bool     `mapstructure:"stealth" yaml:"stealth"`
	Binary                 string   `mapstructure:"binary" yaml:"binary"`
	BinaryCandidates       []string `mapstructure:"binary_candidates" yaml:"binary_candidates"`
	RemoteURL              string   `mapstructure:"remote_url" yaml:"remote_url"`
	UserAgent              string   `mapstructure:"user_agent" yaml:"user_agent"`
	WindowWidth            int      `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight           int      `mapstructure:"window_height" yaml:"window_height"`
	PageLoadTimeoutSeconds int      `mapstructure:"page_load_timeout_seconds" yaml:"page_load_timeout_seconds"`
	ScriptTimeoutSeconds   int      `mapstructure:"script_timeout_seconds" yaml:"script_timeout_seconds"`
}

// TimingConfig bounds the waits of the check-in flow and the batch.
type TimingConfig struct {
	LoginSettleSeconds   int `mapstructure:"login_settle_seconds" yaml:"login_settle_seconds"`
	FieldWaitSeconds     int `mapstructure:"field_wait_seconds" yaml:"field_wait_seconds"`
	SubmitPauseSeconds   int `mapstructure:"submit_pause_seconds" yaml:"submit_pause_seconds"`
	LoginWaitSeconds     int `mapstructure:"login_wait_seconds" yaml:"login_wait_seconds"`
	LandingSettleSeconds int `mapstructure:"landing_settle_seconds" yaml:"landing_settle_seconds"`
	HandoffSettleSeconds int `mapstructure:"handoff_settle_seconds" yaml:"handoff_settle_seconds"`
	ResultSettleSeconds  int `mapstructure:"result_settle_seconds" yaml:"result_settle_seconds"`
	BalanceSettleSeconds int `mapstructure:"balance_settle_seconds" yaml:"balance_settle_seconds"`
	PollIntervalMS       int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	JitterMinSeconds     int `mapstructure:"jitter_min_seconds" yaml:"jitter_min_seconds"`
	JitterMaxSeconds     int `mapstructure:"jitter_max_seconds" yaml:"jitter_max_seconds"`
}

// NotifyConfig configures report delivery.
type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram" yaml:"telegram"`
}

// TelegramConfig configures the Telegram bot used for reports.
type TelegramConfig struct {
	BotToken       string `mapstructure:"bot_token" yaml:"bot_token"`
	ChatID         string `mapstructure:"chat_id" yaml:"chat_id"`
	APIURL         string `mapstructure:"api_url" yaml:"api_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// ScheduleConfig configures the recurring trigger of the schedule command.
type ScheduleConfig struct {
	Cron       string `mapstructure:"cron" yaml:"cron"`
	RunOnStart bool   `mapstructure:"run_on_start" yaml:"run_on_start"`
}

// TelemetryConfig toggles span export.
type TelemetryConfig struct {
	Trace bool `mapstructure:"trace" yaml:"trace"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	portal := checkin.DefaultPortal()
	return Config{
		ConfigVersion:    CurrentConfigVersion,
		Accounts:         "",
		AccountSeparator: ",",
		Portal: PortalConfig{
			BaseURL:       portal.BaseURL,
			LoginPath:     portal.LoginPath,
			LaunchpadPath: portal.LaunchpadPath,
		},
		Browser: BrowserConfig{
			Headless:               true,
			Stealth:                true,
			Binary:                 "",
			BinaryCandidates:       append([]string(nil), browser.DefaultCandidates...),
			RemoteURL:              "",
			UserAgent:              browser.DefaultUserAgent,
			WindowWidth:            1920,
			WindowHeight:           1080,
			PageLoadTimeoutSeconds: 30,
			ScriptTimeoutSeconds:   30,
		},
		Timing: TimingConfig{
			LoginSettleSeconds:   5,
			FieldWaitSeconds:     10,
			SubmitPauseSeconds:   1,
			LoginWaitSeconds:     25,
			LandingSettleSeconds: 8,
			HandoffSettleSeconds: 5,
			ResultSettleSeconds:  5,
			BalanceSettleSeconds: 5,
			PollIntervalMS:       250,
			JitterMinSeconds:     15,
			JitterMaxSeconds:     30,
		},
		Notify: NotifyConfig{
			Telegram: TelegramConfig{
				APIURL:         notify.DefaultAPIURL,
				TimeoutSeconds: 10,
			},
		},
		Schedule: ScheduleConfig{
			Cron:       "0 30 8 * * *",
			RunOnStart: false,
		},
	}
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".leafcheck", "config.yaml"), nil
}

// Credentials parses the configured account list.
func (c Config) Credentials() []schema.Credential {
	return ParseAccounts(c.Accounts, c.AccountSeparator)
}

// BrowserOptions converts the browser section.
func (c Config) BrowserOptions() browser.Options {
	opts := browser.DefaultOptions()
	opts.Headless = c.Browser.Headless
	opts.Stealth = c.Browser.Stealth
	opts.Binary = c.Browser.Binary
	opts.Candidates = c.Browser.BinaryCandidates
	opts.RemoteURL = c.Browser.RemoteURL
	opts.UserAgent = c.Browser.UserAgent
	opts.WindowWidth = c.Browser.WindowWidth
	opts.WindowHeight = c.Browser.WindowHeight
	opts.PageLoadTimeout = seconds(c.Browser.PageLoadTimeoutSeconds)
	opts.ScriptTimeout = seconds(c.Browser.ScriptTimeoutSeconds)
	opts.PollInterval = time.Duration(c.Timing.PollIntervalMS) * time.Millisecond
	return opts
}

// PortalEndpoints converts the portal section.
func (c Config) PortalEndpoints() checkin.Portal {
	return checkin.Portal{
		BaseURL:       c.Portal.BaseURL,
		LoginPath:     c.Portal.LoginPath,
		LaunchpadPath: c.Portal.LaunchpadPath,
	}
}

// FlowTiming converts the timing section.
func (c Config) FlowTiming() checkin.Timing {
	t := c.Timing
	return checkin.Timing{
		LoginSettle:   seconds(t.LoginSettleSeconds),
		FieldWait:     seconds(t.FieldWaitSeconds),
		SubmitPause:   seconds(t.SubmitPauseSeconds),
		LoginWait:     seconds(t.LoginWaitSeconds),
		LandingSettle: seconds(t.LandingSettleSeconds),
		HandoffSettle: seconds(t.HandoffSettleSeconds),
		ResultSettle:  seconds(t.ResultSettleSeconds),
		BalanceSettle: seconds(t.BalanceSettleSeconds),
		PollInterval:  time.Duration(t.PollIntervalMS) * time.Millisecond,
	}
}

// Jitter returns the inter-account pause range.
func (c Config) Jitter() (time.Duration, time.Duration) {
	return seconds(c.Timing.JitterMinSeconds), seconds(c.Timing.JitterMaxSeconds)
}

// TelegramSettings converts the Telegram section.
func (c Config) TelegramSettings() notify.TelegramConfig {
	tg := c.Notify.Telegram
	return notify.TelegramConfig{
		BotToken: tg.BotToken,
		ChatID:   tg.ChatID,
		APIURL:   tg.APIURL,
		Timeout:  seconds(tg.TimeoutSeconds),
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
