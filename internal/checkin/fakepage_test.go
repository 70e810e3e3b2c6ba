package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pkt.systems/leafcheck/internal/browser"
)

// fakeWindow is the scripted state of one window.
type fakeWindow struct {
	title string
	url   string
	body  string
	html  string
	// bodySeq, when set, is served one entry per BodyText read; the last
	// entry repeats.
	bodySeq []string
	reads   int
	// elements maps locator values to visibility.
	elements map[string]bool
}

// fakePage is an in-memory Page driven by routes and click handlers.
type fakePage struct {
	windows map[browser.Handle]*fakeWindow
	order   []browser.Handle
	current browser.Handle

	routes  map[string]func(p *fakePage, w *fakeWindow)
	onClick map[string]func(p *fakePage)

	navErr error

	navigated []string
	clicks    []string
	values    map[string]string
	removed   []string
	switched  []browser.Handle
}

func newFakePage() *fakePage {
	p := &fakePage{
		windows: map[browser.Handle]*fakeWindow{},
		routes:  map[string]func(*fakePage, *fakeWindow){},
		onClick: map[string]func(*fakePage){},
		values:  map[string]string{},
	}
	p.addWindow("w1", &fakeWindow{url: "about:blank"})
	p.current = "w1"
	return p
}

func (p *fakePage) addWindow(h browser.Handle, w *fakeWindow) {
	if w.elements == nil {
		w.elements = map[string]bool{}
	}
	p.windows[h] = w
	p.order = append(p.order, h)
}

func (p *fakePage) win() *fakeWindow {
	return p.windows[p.current]
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	if p.navErr != nil {
		return p.navErr
	}
	w := p.win()
	*w = fakeWindow{url: url, elements: map[string]bool{}}
	for suffix, route := range p.routes {
		if strings.HasSuffix(url, suffix) {
			route(p, w)
		}
	}
	return nil
}

func (p *fakePage) Title(context.Context) (string, error) { return p.win().title, nil }

func (p *fakePage) URL(context.Context) (string, error) { return p.win().url, nil }

func (p *fakePage) BodyText(context.Context) (string, error) {
	w := p.win()
	w.reads++
	if n := len(w.bodySeq); n > 0 {
		i := min(w.reads, n) - 1
		return w.bodySeq[i], nil
	}
	return w.body, nil
}

func (p *fakePage) HTML(context.Context) (string, error) {
	w := p.win()
	if w.html != "" {
		return w.html, nil
	}
	return "<html><body>" + w.body + "</body></html>", nil
}

func (p *fakePage) Find(ctx context.Context, chain browser.Chain) (browser.Element, bool, error) {
	w := p.win()
	return chain.Resolve(ctx, func(_ context.Context, loc browser.Locator) (browser.Element, bool, error) {
		visible, present := w.elements[loc.Value]
		if !present || (!visible && !loc.AllowHidden) {
			return browser.Element{}, false, nil
		}
		return browser.Element{Ref: loc.Value, Locator: loc}, true, nil
	})
}

func (p *fakePage) Click(_ context.Context, el browser.Element) error {
	if _, ok := p.win().elements[el.Ref]; !ok {
		return errors.New("element is no longer attached")
	}
	p.clicks = append(p.clicks, el.Ref)
	if fn := p.onClick[el.Ref]; fn != nil {
		fn(p)
	}
	return nil
}

func (p *fakePage) SetValue(_ context.Context, el browser.Element, value string) error {
	p.values[el.Ref] = value
	return nil
}

func (p *fakePage) RemoveAll(_ context.Context, selector string) (int, error) {
	p.removed = append(p.removed, selector)
	w := p.win()
	if _, ok := w.elements[selector]; ok {
		delete(w.elements, selector)
		return 1, nil
	}
	return 0, nil
}

func (p *fakePage) CurrentWindow(context.Context) (browser.Handle, error) { return p.current, nil }

func (p *fakePage) Windows(context.Context) ([]browser.Handle, error) {
	return append([]browser.Handle(nil), p.order...), nil
}

func (p *fakePage) SwitchTo(_ context.Context, h browser.Handle) error {
	if _, ok := p.windows[h]; !ok {
		return fmt.Errorf("no window %s", h)
	}
	p.current = h
	p.switched = append(p.switched, h)
	return nil
}

var _ Page = (*fakePage)(nil)

func testFlow() *Flow {
	return NewFlow(Portal{BaseURL: "https://portal.test"}, Timing{PollInterval: time.Millisecond})
}

const (
	entryDiv   = "//div[contains(text(), '签到')]"
	entrySpan  = "//span[contains(text(), '签到')]"
	buttonCls  = "button.checkin-btn"
	buttonPrim = "button.btn-primary"
	buttonText = "//button[contains(text(), 'Check')]"
)
