package schema

import "errors"

var (
	// ErrLaunch indicates the browser could not be found or started.
	ErrLaunch = errors.New("browser launch failed")
	// ErrNavigationTimeout indicates a page did not become interactive in time.
	ErrNavigationTimeout = errors.New("navigation timeout")
	// ErrScript indicates an in-page script was rejected.
	ErrScript = errors.New("script error")
	// ErrAuthFailure indicates the portal login did not complete.
	ErrAuthFailure = errors.New("authentication failed")
	// ErrSessionClosed indicates use of a released browser session.
	ErrSessionClosed = errors.New("browser session closed")
	// ErrInvalidCredential indicates a malformed account entry.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrNotifyDisabled indicates notification dispatch is not configured.
	ErrNotifyDisabled = errors.New("notification disabled")
)
