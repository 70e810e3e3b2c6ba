package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/codes"

	"pkt.systems/leafcheck/internal/browser"
	"pkt.systems/leafcheck/schema"
	"pkt.systems/pslog"
)

// Authenticate logs cred into the portal. Any failure is reported as
// schema.ErrAuthFailure carrying a truncated diagnostic.
func (f *Flow) Authenticate(ctx context.Context, page Page, cred schema.Credential) error {
	ctx, span := tracer.Start(ctx, "checkin.authenticate")
	defer span.End()
	log := pslog.Ctx(ctx)

	if strings.TrimSpace(cred.Identifier) == "" || cred.Secret == "" {
		return fmt.Errorf("%w: %w", schema.ErrAuthFailure, schema.ErrInvalidCredential)
	}
	if err := f.login(ctx, page, cred); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		diag := schema.Truncate(err.Error(), schema.DiagnosticLimit)
		log.Warn("login failed", "err", diag)
		if errors.Is(err, schema.ErrAuthFailure) {
			return err
		}
		return fmt.Errorf("%w: %s", schema.ErrAuthFailure, diag)
	}
	log.Info("login succeeded")
	return nil
}

func (f *Flow) login(ctx context.Context, page Page, cred schema.Credential) error {
	log := pslog.Ctx(ctx)
	log.Debug("login start", "url", f.Portal.LoginURL())
	if err := page.Navigate(ctx, f.Portal.LoginURL()); err != nil {
		return err
	}

	var account browser.Element
	ok, err := browser.Poll(ctx, f.Timing.LoginSettle+f.Timing.FieldWait, f.Timing.PollInterval, func(ctx context.Context) (bool, error) {
		el, found, err := page.Find(ctx, accountChain)
		account = el
		return found, err
	})
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("account field not found")
	}

	if n, err := page.RemoveAll(ctx, OverlaySelector); err != nil {
		log.Debug("overlay removal failed", "err", err)
	} else if n > 0 {
		log.Debug("overlays removed", "count", n)
	}

	if err := page.SetValue(ctx, account, cred.Identifier); err != nil {
		return fmt.Errorf("fill account: %w", err)
	}
	secret, ok, err := page.Find(ctx, secretChain)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("password field not found")
	}
	if err := page.SetValue(ctx, secret, cred.Secret); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}

	if err := browser.Sleep(ctx, f.Timing.SubmitPause); err != nil {
		return err
	}
	submit, ok, err := page.Find(ctx, submitChain)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("submit button not found")
	}
	if err := page.Click(ctx, submit); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	marker := f.Portal.loginMarker()
	left, err := browser.Poll(ctx, f.Timing.LoginWait, f.Timing.PollInterval, func(ctx context.Context) (bool, error) {
		current, err := page.URL(ctx)
		if err != nil {
			// Location is briefly unreadable while the next document commits.
			return false, nil
		}
		return !strings.Contains(current, marker), nil
	})
	if err != nil {
		return err
	}
	if !left {
		return fmt.Errorf("%w: still on login page after %s", schema.ErrAuthFailure, f.Timing.LoginWait)
	}
	return nil
}
