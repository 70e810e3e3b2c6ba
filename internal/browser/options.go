package browser

import (
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultUserAgent is a fixed desktop Chrome user agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultCandidates lists browser binaries probed in order.
var DefaultCandidates = []string{
	"/usr/bin/chromium",
	"/usr/bin/chromium-browser",
	"/usr/bin/google-chrome",
	"/usr/bin/google-chrome-stable",
}

// Options configures a browser session.
type Options struct {
	Headless bool
	// Stealth injects fingerprint masking into every new document.
	Stealth bool
	// Binary forces a browser executable; empty means discover.
	Binary     string
	Candidates []string
	// RemoteURL attaches to an existing DevTools endpoint instead of launching.
	RemoteURL       string
	UserAgent       string
	WindowWidth     int
	WindowHeight    int
	PageLoadTimeout time.Duration
	ScriptTimeout   time.Duration
	// PollInterval paces readiness polling after navigation.
	PollInterval time.Duration
}

// DefaultOptions returns headless stealth defaults.
func DefaultOptions() Options {
	return Options{
		Headless:        true,
		Stealth:         true,
		Candidates:      append([]string(nil), DefaultCandidates...),
		UserAgent:       DefaultUserAgent,
		WindowWidth:     1920,
		WindowHeight:    1080,
		PageLoadTimeout: 30 * time.Second,
		ScriptTimeout:   30 * time.Second,
		PollInterval:    100 * time.Millisecond,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.UserAgent == "" {
		o.UserAgent = def.UserAgent
	}
	if o.WindowWidth <= 0 || o.WindowHeight <= 0 {
		o.WindowWidth, o.WindowHeight = def.WindowWidth, def.WindowHeight
	}
	if o.PageLoadTimeout <= 0 {
		o.PageLoadTimeout = def.PageLoadTimeout
	}
	if o.ScriptTimeout <= 0 {
		o.ScriptTimeout = def.ScriptTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = def.PollInterval
	}
	if o.Candidates == nil {
		o.Candidates = def.Candidates
	}
	return o
}

// allocatorOptions builds the exec allocator flags. binary may be empty, in
// which case chromedp resolves its default locations.
func (o Options) allocatorOptions(binary string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.WindowSize(o.WindowWidth, o.WindowHeight),
		chromedp.UserAgent(o.UserAgent),
	}
	if o.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"), chromedp.Flag("hide-scrollbars", true))
	}
	if binary != "" {
		opts = append(opts, chromedp.ExecPath(binary))
	}
	return opts
}
