package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"pkt.systems/leafcheck/schema"
	"pkt.systems/pslog"
)

// Sender delivers a rendered report.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Dispatcher prints every report and forwards it to Sender when one is set.
type Dispatcher struct {
	Out    io.Writer
	Sender Sender
}

// NewDispatcher builds a dispatcher that sends through Telegram when cfg is
// complete and only prints otherwise.
func NewDispatcher(cfg TelegramConfig, out io.Writer) (*Dispatcher, error) {
	if out == nil {
		out = os.Stdout
	}
	d := &Dispatcher{Out: out}
	tg, err := NewTelegram(cfg)
	switch {
	case errors.Is(err, schema.ErrNotifyDisabled):
	case err != nil:
		return nil, err
	default:
		d.Sender = tg
	}
	return d, nil
}

// Dispatch prints the report and sends it. A missing sender is not an
// error; a failed send is returned for logging only.
func (d *Dispatcher) Dispatch(ctx context.Context, summary schema.RunSummary) error {
	log := pslog.Ctx(ctx)
	text := FormatSummary(summary)
	if d.Out != nil {
		if _, err := fmt.Fprint(d.Out, text); err != nil {
			log.Warn("summary print failed", "err", err)
		}
	}
	if d.Sender == nil {
		log.Info("notification disabled")
		return nil
	}
	if err := d.Sender.Send(ctx, text); err != nil {
		log.Warn("notification failed", "err", err)
		return err
	}
	log.Info("notification sent", "total", summary.Total, "succeeded", summary.Succeeded)
	return nil
}
