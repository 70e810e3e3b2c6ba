package checkin

import (
	"context"

	"pkt.systems/leafcheck/internal/browser"
	"pkt.systems/leafcheck/schema"
	"pkt.systems/pslog"
)

// Balance reads the current portal balance from the launchpad. It never
// fails: an unreadable page yields schema.BalancePlaceholder and a page
// without an amount yields BalanceUnavailable.
func (f *Flow) Balance(ctx context.Context, page Page) string {
	ctx, span := tracer.Start(ctx, "checkin.balance")
	defer span.End()
	log := pslog.Ctx(ctx)

	if err := page.Navigate(ctx, f.Portal.LaunchpadURL()); err != nil {
		log.Warn("balance fetch failed", "err", err)
		span.RecordError(err)
		return schema.BalancePlaceholder
	}
	var balance string
	found, err := browser.Poll(ctx, f.Timing.BalanceSettle, f.Timing.PollInterval, func(ctx context.Context) (bool, error) {
		html, err := page.HTML(ctx)
		if err != nil {
			return false, err
		}
		amount, ok := ExtractBalance(html)
		balance = amount
		return ok, nil
	})
	if err != nil {
		log.Warn("balance fetch failed", "err", err)
		span.RecordError(err)
		return schema.BalancePlaceholder
	}
	if !found {
		log.Info("balance not shown")
		return BalanceUnavailable
	}
	log.Info("balance read", "balance", balance)
	return balance
}
