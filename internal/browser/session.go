package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/stealth"

	"pkt.systems/leafcheck/schema"
	"pkt.systems/pslog"
)

// Session owns one automated browser. It is used by a single goroutine and
// must be released with Close on every exit path.
type Session struct {
	opts   Options
	log    pslog.Logger
	binary string

	allocCancel context.CancelFunc
	root        context.Context
	rootCancel  context.CancelFunc
	tab         context.Context
	tabCancels  []context.CancelFunc

	refSeq    int
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// Open launches (or attaches to) a browser and prepares its first tab.
// Failure to find or start the browser is reported as schema.ErrLaunch.
func Open(ctx context.Context, opts Options) (*Session, error) {
	opts = opts.normalized()
	log := pslog.Ctx(ctx)

	var allocCtx context.Context
	var allocCancel context.CancelFunc
	binary := ""
	if opts.RemoteURL != "" {
		log.Info("browser attach", "remote_url", opts.RemoteURL)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.RemoteURL)
	} else {
		if path, found := opts.Resolve(); found {
			binary = path
		} else {
			log.Debug("browser binary not in candidates; using default resolution", "candidates", opts.Candidates)
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, opts.allocatorOptions(binary)...)
	}

	chromeLog := func(format string, args ...any) {
		log.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
	}
	root, rootCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(chromeLog),
		chromedp.WithErrorf(chromeLog),
	)
	s := &Session{
		opts:        opts,
		log:         log,
		binary:      binary,
		allocCancel: allocCancel,
		root:        root,
		rootCancel:  rootCancel,
		tab:         root,
	}
	// The first Run allocates the browser; it must not carry a timeout or the
	// browser dies with it.
	if err := chromedp.Run(root, s.prepareTab()...); err != nil {
		rootCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", schema.ErrLaunch, err)
	}
	log.Info("browser ready", "binary", binary, "headless", opts.Headless, "stealth", opts.Stealth)
	return s, nil
}

// Binary returns the executable path used, empty for default resolution.
func (s *Session) Binary() string {
	return s.binary
}

// maskScript hides automation fingerprints from page scripts.
var maskScript = stealth.JS

func (s *Session) prepareTab() []chromedp.Action {
	if !s.opts.Stealth {
		return nil
	}
	return []chromedp.Action{
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(maskScript).Do(ctx)
			return err
		}),
	}
}

// adoptTab prepares a window the page opened itself. Its current document
// loaded before the new-document script was registered, so the mask is also
// applied to it directly.
func (s *Session) adoptTab() []chromedp.Action {
	actions := s.prepareTab()
	if len(actions) == 0 {
		return nil
	}
	return append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
		_, exc, err := runtime.Evaluate(maskScript).Do(ctx)
		if err != nil {
			return err
		}
		if exc != nil {
			s.log.Debug("browser mask script raised", "err", exc.Text)
		}
		return nil
	}))
}

// scope derives a bounded context on the focused tab that also ends when the
// caller's ctx does.
func (s *Session) scope(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc, error) {
	if s.closed {
		return nil, nil, schema.ErrSessionClosed
	}
	runCtx, cancel := context.WithTimeout(s.tab, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}, nil
}

// Navigate loads url and returns once the document is interactive, without
// waiting for subresources. It fails with schema.ErrNavigationTimeout when
// the page load timeout elapses first.
func (s *Session) Navigate(ctx context.Context, url string) error {
	runCtx, done, err := s.scope(ctx, s.opts.PageLoadTimeout)
	if err != nil {
		return err
	}
	defer done()
	s.log.Debug("browser navigate", "url", url)

	err = chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var res page.NavigateReturns
		if err := cdp.Execute(ctx, page.CommandNavigate, page.Navigate(url), &res); err != nil {
			return err
		}
		if res.ErrorText != "" {
			return fmt.Errorf("navigate %s: %s", url, res.ErrorText)
		}
		return nil
	}))
	if err != nil {
		return s.navigationError(ctx, runCtx, url, err)
	}

	ready, err := Poll(runCtx, s.opts.PageLoadTimeout, s.opts.PollInterval, func(pctx context.Context) (bool, error) {
		var state string
		if err := chromedp.Run(pctx, chromedp.Evaluate(`document.readyState`, &state)); err != nil {
			// The execution context is swapped while the new document commits.
			return false, nil
		}
		return state == "interactive" || state == "complete", nil
	})
	if err != nil {
		return s.navigationError(ctx, runCtx, url, err)
	}
	if !ready {
		return fmt.Errorf("%w: %s", schema.ErrNavigationTimeout, url)
	}
	return nil
}

func (s *Session) navigationError(ctx, runCtx context.Context, url string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", schema.ErrNavigationTimeout, url)
	}
	return fmt.Errorf("navigate %s: %w", url, err)
}

// Execute runs script as a function body in the page. args are exposed as
// arguments[0..n] and the return value is decoded into res when non-nil.
// Rejections are reported as schema.ErrScript.
func (s *Session) Execute(ctx context.Context, script string, args []any, res any) error {
	expr, err := wrapScript(script, args)
	if err != nil {
		return err
	}
	runCtx, done, err := s.scope(ctx, s.opts.ScriptTimeout)
	if err != nil {
		return err
	}
	defer done()
	if err := chromedp.Run(runCtx, chromedp.Evaluate(expr, res)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", schema.ErrScript, err)
	}
	return nil
}

func wrapScript(script string, args []any) (string, error) {
	if args == nil {
		args = []any{}
	}
	encoded, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("encode script args: %w", err)
	}
	return "(function(){" + script + "}).apply(null, " + string(encoded) + ")", nil
}

// Find resolves chain against the focused window.
func (s *Session) Find(ctx context.Context, chain Chain) (Element, bool, error) {
	return chain.Resolve(ctx, func(ctx context.Context, loc Locator) (Element, bool, error) {
		s.refSeq++
		ref := "e" + strconv.Itoa(s.refSeq)
		var ok bool
		args := []any{string(loc.Strategy), loc.Value, loc.AllowHidden, ref}
		if err := s.Execute(ctx, findScript, args, &ok); err != nil {
			s.log.Debug("browser locate rejected", "locator", loc.String(), "err", err)
			return Element{}, false, err
		}
		if !ok {
			return Element{}, false, nil
		}
		return Element{Ref: ref, Locator: loc}, true, nil
	})
}

// Click dispatches a synthetic click through the page's script engine.
func (s *Session) Click(ctx context.Context, el Element) error {
	return s.Execute(ctx, clickScript, []any{el.Ref}, nil)
}

// SetValue assigns value to an input and fires input/change events.
func (s *Session) SetValue(ctx context.Context, el Element, value string) error {
	return s.Execute(ctx, setValueScript, []any{el.Ref, value}, nil)
}

// RemoveAll removes every element matching the CSS selector and returns the count.
func (s *Session) RemoveAll(ctx context.Context, selector string) (int, error) {
	var n int
	err := s.Execute(ctx, removeAllScript, []any{selector}, &n)
	return n, err
}

// BodyText returns the rendered text of the document body.
func (s *Session) BodyText(ctx context.Context) (string, error) {
	var text string
	err := s.Execute(ctx, bodyTextScript, nil, &text)
	return text, err
}

// HTML returns the serialized document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.Execute(ctx, htmlScript, nil, &html)
	return html, err
}

// Title returns the focused document's title.
func (s *Session) Title(ctx context.Context) (string, error) {
	runCtx, done, err := s.scope(ctx, s.opts.ScriptTimeout)
	if err != nil {
		return "", err
	}
	defer done()
	var title string
	if err := chromedp.Run(runCtx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("read title: %w", err)
	}
	return title, nil
}

// URL returns the focused document's location.
func (s *Session) URL(ctx context.Context) (string, error) {
	runCtx, done, err := s.scope(ctx, s.opts.ScriptTimeout)
	if err != nil {
		return "", err
	}
	defer done()
	var location string
	if err := chromedp.Run(runCtx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return location, nil
}

// CurrentWindow returns the handle of the focused window.
func (s *Session) CurrentWindow(context.Context) (Handle, error) {
	if s.closed {
		return "", schema.ErrSessionClosed
	}
	c := chromedp.FromContext(s.tab)
	if c == nil || c.Target == nil {
		return "", errors.New("browser tab not attached")
	}
	return Handle(c.Target.TargetID), nil
}

// Windows enumerates page targets in the order the browser reports them.
func (s *Session) Windows(ctx context.Context) ([]Handle, error) {
	runCtx, done, err := s.scope(ctx, s.opts.ScriptTimeout)
	if err != nil {
		return nil, err
	}
	defer done()
	infos, err := chromedp.Targets(runCtx)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	handles := make([]Handle, 0, len(infos))
	for _, info := range infos {
		if info.Type != "page" {
			continue
		}
		handles = append(handles, Handle(info.TargetID))
	}
	return handles, nil
}

// SwitchTo moves focus to the window identified by h.
func (s *Session) SwitchTo(ctx context.Context, h Handle) error {
	current, err := s.CurrentWindow(ctx)
	if err != nil {
		return err
	}
	if current == h {
		return nil
	}
	tab, cancel := chromedp.NewContext(s.root, chromedp.WithTargetID(target.ID(h)))
	if err := chromedp.Run(tab, s.adoptTab()...); err != nil {
		cancel()
		return fmt.Errorf("switch window %s: %w", h, err)
	}
	s.tabCancels = append(s.tabCancels, cancel)
	s.tab = tab
	s.log.Debug("browser window switched", "from", current, "to", h)
	return nil
}

// Close releases the browser. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed = true
		for i := len(s.tabCancels) - 1; i >= 0; i-- {
			s.tabCancels[i]()
		}
		err := chromedp.Cancel(s.root)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = err
		}
		s.rootCancel()
		s.allocCancel()
		s.log.Debug("browser closed")
	})
	return s.closeErr
}
