package checkin

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"pkt.systems/leafcheck/internal/browser"
	"pkt.systems/leafcheck/internal/logx"
	"pkt.systems/leafcheck/schema"
	"pkt.systems/pslog"
)

// State is one step of the check-in traversal.
type State int

const (
	StateLanding State = iota
	StateEntryDiscovery
	StateActivate
	StateHandoff
	StateInterstitial
	StateAlreadyDone
	StateFinalButton
	StateExecute
	StateResult
)

var stateNames = [...]string{
	StateLanding:        "landing",
	StateEntryDiscovery: "entry_discovery",
	StateActivate:       "activate",
	StateHandoff:        "handoff",
	StateInterstitial:   "interstitial",
	StateAlreadyDone:    "already_done",
	StateFinalButton:    "final_button",
	StateExecute:        "execute",
	StateResult:         "result",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// traversal carries what one check-in run learns between states.
type traversal struct {
	flow     *Flow
	page     Page
	original browser.Handle
	entry    browser.Element
	hasEntry bool
	button   browser.Element
}

type transition struct {
	next    State
	outcome *schema.Outcome
}

func goTo(s State) (transition, error) {
	return transition{next: s}, nil
}

func finish(o schema.Outcome) (transition, error) {
	return transition{outcome: &o}, nil
}

// CheckIn walks the launchpad to the check-in button once and returns the
// terminal outcome. No state is retried and nothing is returned as an error:
// failures become an OutcomeError.
func (f *Flow) CheckIn(ctx context.Context, page Page) schema.Outcome {
	ctx, span := tracer.Start(ctx, "checkin.traverse")
	defer span.End()
	base := pslog.Ctx(ctx)

	t := &traversal{flow: f, page: page}
	state := StateLanding
	for {
		log := logx.WithState(base, state.String())
		log.Debug("checkin state enter")
		span.AddEvent(state.String())

		tr, err := t.step(ctx, state)
		if err != nil {
			log.Warn("checkin state failed", "err", err)
			span.RecordError(err)
			tr = transition{outcome: ptr(schema.Errored(DetailFlowError, err))}
		}
		if tr.outcome != nil {
			log.Info("checkin finished", "outcome", string(tr.outcome.Kind), "detail", tr.outcome.Detail, "amount", tr.outcome.Amount)
			span.SetAttributes(
				attribute.String("checkin.outcome", string(tr.outcome.Kind)),
				attribute.String("checkin.final_state", state.String()),
			)
			return *tr.outcome
		}
		state = tr.next
	}
}

func ptr(o schema.Outcome) *schema.Outcome {
	return &o
}

func (t *traversal) step(ctx context.Context, state State) (transition, error) {
	switch state {
	case StateLanding:
		return t.landing(ctx)
	case StateEntryDiscovery:
		return t.entryDiscovery(ctx)
	case StateActivate:
		return t.activate(ctx)
	case StateHandoff:
		return t.handoff(ctx)
	case StateInterstitial:
		return t.interstitial(ctx)
	case StateAlreadyDone:
		return t.alreadyDone(ctx)
	case StateFinalButton:
		return t.finalButton(ctx)
	case StateExecute:
		return t.execute(ctx)
	case StateResult:
		return t.result(ctx)
	default:
		return transition{}, fmt.Errorf("unknown state %s", state)
	}
}

func (t *traversal) timing() Timing {
	return t.flow.Timing
}

// landing opens the launchpad and waits for the entry widget to render.
func (t *traversal) landing(ctx context.Context) (transition, error) {
	if err := t.page.Navigate(ctx, t.flow.Portal.LaunchpadURL()); err != nil {
		return transition{}, err
	}
	_, err := browser.Poll(ctx, t.timing().LandingSettle, t.timing().PollInterval, func(ctx context.Context) (bool, error) {
		el, ok, err := t.page.Find(ctx, entryChain)
		if ok {
			t.entry, t.hasEntry = el, true
		}
		return ok, err
	})
	if err != nil {
		return transition{}, err
	}
	title, err := t.page.Title(ctx)
	if err != nil {
		return transition{}, err
	}
	if isInterstitial(title) {
		return finish(schema.Blocked(DetailBlockedLanding))
	}
	return goTo(StateEntryDiscovery)
}

func (t *traversal) entryDiscovery(ctx context.Context) (transition, error) {
	if t.hasEntry {
		pslog.Ctx(ctx).Debug("checkin entry found", "locator", t.entry.Locator.String())
		return goTo(StateActivate)
	}
	html, err := t.page.HTML(ctx)
	if err != nil {
		return transition{}, err
	}
	if strings.Contains(html, MarkerAlreadyDone) {
		return finish(schema.AlreadyDone(DetailAlreadyDoneLanding))
	}
	return finish(schema.NotFound(DetailNoEntry))
}

func (t *traversal) activate(ctx context.Context) (transition, error) {
	original, err := t.page.CurrentWindow(ctx)
	if err != nil {
		return transition{}, err
	}
	t.original = original
	if err := t.page.Click(ctx, t.entry); err != nil {
		return transition{}, err
	}
	return goTo(StateHandoff)
}

// handoff follows a newly opened window. With several new windows the first
// one enumerated wins; the portal gives no ordering guarantee.
func (t *traversal) handoff(ctx context.Context) (transition, error) {
	log := pslog.Ctx(ctx)
	var handles []browser.Handle
	_, err := browser.Poll(ctx, t.timing().HandoffSettle, t.timing().PollInterval, func(ctx context.Context) (bool, error) {
		hs, err := t.page.Windows(ctx)
		if err != nil {
			return false, err
		}
		handles = hs
		return len(hs) > 1, nil
	})
	if err != nil {
		return transition{}, err
	}
	if len(handles) <= 1 {
		log.Debug("checkin no new window")
		return goTo(StateInterstitial)
	}
	for _, h := range handles {
		if h == t.original {
			continue
		}
		if err := t.page.SwitchTo(ctx, h); err != nil {
			return transition{}, err
		}
		log.Debug("checkin switched window", "windows", len(handles), "window", string(h))
		break
	}
	if err := t.awaitHandoffContent(ctx); err != nil {
		return transition{}, err
	}
	return goTo(StateInterstitial)
}

// awaitHandoffContent waits until the new window shows something the next
// states can decide on.
func (t *traversal) awaitHandoffContent(ctx context.Context) error {
	_, err := browser.Poll(ctx, t.timing().HandoffSettle, t.timing().PollInterval, func(ctx context.Context) (bool, error) {
		if title, err := t.page.Title(ctx); err == nil && isInterstitial(title) {
			return true, nil
		}
		if body, err := t.page.BodyText(ctx); err == nil && isAlreadyDone(body) {
			return true, nil
		}
		_, ok, err := t.page.Find(ctx, finalChain)
		if err != nil {
			return false, nil
		}
		return ok, nil
	})
	return err
}

func (t *traversal) interstitial(ctx context.Context) (transition, error) {
	title, err := t.page.Title(ctx)
	if err != nil {
		return transition{}, err
	}
	pslog.Ctx(ctx).Debug("checkin page", "title", title)
	if isInterstitial(title) {
		return finish(schema.Blocked(DetailBlockedAfterHandoff))
	}
	return goTo(StateAlreadyDone)
}

func (t *traversal) alreadyDone(ctx context.Context) (transition, error) {
	body, err := t.page.BodyText(ctx)
	if err != nil {
		return transition{}, err
	}
	if isAlreadyDone(body) {
		return finish(schema.AlreadyDone(DetailAlreadyDone))
	}
	return goTo(StateFinalButton)
}

func (t *traversal) finalButton(ctx context.Context) (transition, error) {
	el, ok, err := t.page.Find(ctx, finalChain)
	if err != nil {
		return transition{}, err
	}
	if !ok {
		return finish(schema.NotFound(DetailNoButton))
	}
	t.button = el
	pslog.Ctx(ctx).Debug("checkin button found", "locator", el.Locator.String())
	return goTo(StateExecute)
}

func (t *traversal) execute(ctx context.Context) (transition, error) {
	if err := t.page.Click(ctx, t.button); err != nil {
		return transition{}, err
	}
	return goTo(StateResult)
}

// result waits for a reward announcement and classifies whatever is shown
// when the wait ends. A generic success marker does not end the wait early;
// the amount often renders after it.
func (t *traversal) result(ctx context.Context) (transition, error) {
	var text string
	_, err := browser.Poll(ctx, t.timing().ResultSettle, t.timing().PollInterval, func(ctx context.Context) (bool, error) {
		body, err := t.page.BodyText(ctx)
		if err != nil {
			return false, err
		}
		text = body
		_, rewarded := ParseReward(body)
		return rewarded, nil
	})
	if err != nil {
		return transition{}, err
	}
	return finish(ClassifyResult(text))
}
