package checkin

import (
	"strings"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("pkt.systems/leafcheck/internal/checkin")

// Portal locates the pages the flow visits.
type Portal struct {
	BaseURL       string
	LoginPath     string
	LaunchpadPath string
}

// DefaultPortal returns the Leaflow endpoints.
func DefaultPortal() Portal {
	return Portal{
		BaseURL:       "https://leaflow.net",
		LoginPath:     "/login",
		LaunchpadPath: "/launchpad",
	}
}

// LoginURL returns the absolute login page URL.
func (p Portal) LoginURL() string {
	return join(p.BaseURL, p.LoginPath)
}

// LaunchpadURL returns the absolute launchpad URL.
func (p Portal) LaunchpadURL() string {
	return join(p.BaseURL, p.LaunchpadPath)
}

// loginMarker is the URL fragment whose absence signals a completed login.
func (p Portal) loginMarker() string {
	marker := strings.Trim(p.LoginPath, "/")
	if marker == "" {
		return "login"
	}
	return marker
}

func join(base, path string) string {
	base = strings.TrimRight(base, "/")
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// Timing bounds every wait in the flow. Settle values are upper bounds on
// polls against a readiness predicate; SubmitPause is the only fixed pause.
type Timing struct {
	LoginSettle   time.Duration
	FieldWait     time.Duration
	SubmitPause   time.Duration
	LoginWait     time.Duration
	LandingSettle time.Duration
	HandoffSettle time.Duration
	ResultSettle  time.Duration
	BalanceSettle time.Duration
	PollInterval  time.Duration
}

// DefaultTiming mirrors the pacing the portal tolerates.
func DefaultTiming() Timing {
	return Timing{
		LoginSettle:   5 * time.Second,
		FieldWait:     10 * time.Second,
		SubmitPause:   time.Second,
		LoginWait:     25 * time.Second,
		LandingSettle: 8 * time.Second,
		HandoffSettle: 5 * time.Second,
		ResultSettle:  5 * time.Second,
		BalanceSettle: 5 * time.Second,
		PollInterval:  250 * time.Millisecond,
	}
}

// Flow runs authentication, check-in and balance fetch against one page.
// A Flow holds no per-account state and may be reused across accounts.
type Flow struct {
	Portal Portal
	Timing Timing
}

// NewFlow builds a flow, filling an empty portal base with the default.
func NewFlow(portal Portal, timing Timing) *Flow {
	def := DefaultPortal()
	if strings.TrimSpace(portal.BaseURL) == "" {
		portal.BaseURL = def.BaseURL
	}
	if portal.LoginPath == "" {
		portal.LoginPath = def.LoginPath
	}
	if portal.LaunchpadPath == "" {
		portal.LaunchpadPath = def.LaunchpadPath
	}
	if timing.PollInterval <= 0 {
		timing.PollInterval = DefaultTiming().PollInterval
	}
	return &Flow{Portal: portal, Timing: timing}
}
