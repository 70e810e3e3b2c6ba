package checkin

import (
	"context"

	"pkt.systems/leafcheck/internal/browser"
)

// Page is the slice of a browser session the check-in flow drives.
// *browser.Session implements it.
type Page interface {
	Navigate(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	URL(ctx context.Context) (string, error)
	BodyText(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
	Find(ctx context.Context, chain browser.Chain) (browser.Element, bool, error)
	Click(ctx context.Context, el browser.Element) error
	SetValue(ctx context.Context, el browser.Element, value string) error
	RemoveAll(ctx context.Context, selector string) (int, error)
	CurrentWindow(ctx context.Context) (browser.Handle, error)
	Windows(ctx context.Context) ([]browser.Handle, error)
	SwitchTo(ctx context.Context, h browser.Handle) error
}

var _ Page = (*browser.Session)(nil)
