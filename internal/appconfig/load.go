package appconfig

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides for every config key.
const EnvPrefix = "LEAFCHECK"

// Load reads configuration from the provided path. If path is empty, uses
// DefaultConfigPath. A missing file is not an error; defaults and the
// environment apply.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("accounts", cfg.Accounts)
	v.SetDefault("account_separator", cfg.AccountSeparator)
	v.SetDefault("portal.base_url", cfg.Portal.BaseURL)
	v.SetDefault("portal.login_path", cfg.Portal.LoginPath)
	v.SetDefault("portal.launchpad_path", cfg.Portal.LaunchpadPath)
	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.stealth", cfg.Browser.Stealth)
	v.SetDefault("browser.binary", cfg.Browser.Binary)
	v.SetDefault("browser.binary_candidates", cfg.Browser.BinaryCandidates)
	v.SetDefault("browser.remote_url", cfg.Browser.RemoteURL)
	v.SetDefault("browser.user_agent", cfg.Browser.UserAgent)
	v.SetDefault("browser.window_width", cfg.Browser.WindowWidth)
	v.SetDefault("browser.window_height", cfg.Browser.WindowHeight)
	v.SetDefault("browser.page_load_timeout_seconds", cfg.Browser.PageLoadTimeoutSeconds)
	v.SetDefault("browser.script_timeout_seconds", cfg.Browser.ScriptTimeoutSeconds)
	v.SetDefault("timing.login_settle_seconds", cfg.Timing.LoginSettleSeconds)
	v.SetDefault("timing.field_wait_seconds", cfg.Timing.FieldWaitSeconds)
	v.SetDefault("timing.submit_pause_seconds", cfg.Timing.SubmitPauseSeconds)
	v.SetDefault("timing.login_wait_seconds", cfg.Timing.LoginWaitSeconds)
	v.SetDefault("timing.landing_settle_seconds", cfg.Timing.LandingSettleSeconds)
	v.SetDefault("timing.handoff_settle_seconds", cfg.Timing.HandoffSettleSeconds)
	v.SetDefault("timing.result_settle_seconds", cfg.Timing.ResultSettleSeconds)
	v.SetDefault("timing.balance_settle_seconds", cfg.Timing.BalanceSettleSeconds)
	v.SetDefault("timing.poll_interval_ms", cfg.Timing.PollIntervalMS)
	v.SetDefault("timing.jitter_min_seconds", cfg.Timing.JitterMinSeconds)
	v.SetDefault("timing.jitter_max_seconds", cfg.Timing.JitterMaxSeconds)
	v.SetDefault("notify.telegram.bot_token", cfg.Notify.Telegram.BotToken)
	v.SetDefault("notify.telegram.chat_id", cfg.Notify.Telegram.ChatID)
	v.SetDefault("notify.telegram.api_url", cfg.Notify.Telegram.APIURL)
	v.SetDefault("notify.telegram.timeout_seconds", cfg.Notify.Telegram.TimeoutSeconds)
	v.SetDefault("schedule.cron", cfg.Schedule.Cron)
	v.SetDefault("schedule.run_on_start", cfg.Schedule.RunOnStart)
	v.SetDefault("telemetry.trace", cfg.Telemetry.Trace)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return Config{}, err
	}

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// bindLegacyEnv maps the variable names operators already export. The
// prefixed name stays accepted as a fallback.
func bindLegacyEnv(v *viper.Viper) error {
	bindings := [][]string{
		{"accounts", "LEAFLOW_ACCOUNTS", EnvPrefix + "_ACCOUNTS"},
		{"notify.telegram.bot_token", "TELEGRAM_BOT_TOKEN", EnvPrefix + "_NOTIFY_TELEGRAM_BOT_TOKEN"},
		{"notify.telegram.chat_id", "TELEGRAM_CHAT_ID", EnvPrefix + "_NOTIFY_TELEGRAM_CHAT_ID"},
	}
	for _, b := range bindings {
		if err := v.BindEnv(b...); err != nil {
			return fmt.Errorf("bind env %s: %w", b[0], err)
		}
	}
	return nil
}

// Validate checks values the components cannot recover from.
func Validate(cfg Config) error {
	base := strings.TrimSpace(cfg.Portal.BaseURL)
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("portal.base_url must include scheme and host (e.g. https://leaflow.net)")
	}
	if cfg.Browser.PageLoadTimeoutSeconds <= 0 {
		return fmt.Errorf("browser.page_load_timeout_seconds must be positive")
	}
	if cfg.Browser.ScriptTimeoutSeconds <= 0 {
		return fmt.Errorf("browser.script_timeout_seconds must be positive")
	}
	if cfg.Browser.WindowWidth <= 0 || cfg.Browser.WindowHeight <= 0 {
		return fmt.Errorf("browser.window_width and browser.window_height must be positive")
	}
	t := cfg.Timing
	for name, value := range map[string]int{
		"timing.login_settle_seconds":   t.LoginSettleSeconds,
		"timing.field_wait_seconds":     t.FieldWaitSeconds,
		"timing.submit_pause_seconds":   t.SubmitPauseSeconds,
		"timing.login_wait_seconds":     t.LoginWaitSeconds,
		"timing.landing_settle_seconds": t.LandingSettleSeconds,
		"timing.handoff_settle_seconds": t.HandoffSettleSeconds,
		"timing.result_settle_seconds":  t.ResultSettleSeconds,
		"timing.balance_settle_seconds": t.BalanceSettleSeconds,
		"timing.jitter_min_seconds":     t.JitterMinSeconds,
	} {
		if value < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if t.PollIntervalMS <= 0 {
		return fmt.Errorf("timing.poll_interval_ms must be positive")
	}
	if t.JitterMaxSeconds < t.JitterMinSeconds {
		return fmt.Errorf("timing.jitter_max_seconds (%d) must be >= timing.jitter_min_seconds (%d)", t.JitterMaxSeconds, t.JitterMinSeconds)
	}
	if cfg.Notify.Telegram.TimeoutSeconds <= 0 {
		return fmt.Errorf("notify.telegram.timeout_seconds must be positive")
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Browser.Binary = expandEnv(cfg.Browser.Binary)
	cfg.Browser.RemoteURL = expandEnv(cfg.Browser.RemoteURL)
	for i, candidate := range cfg.Browser.BinaryCandidates {
		cfg.Browser.BinaryCandidates[i] = expandEnv(candidate)
	}
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
