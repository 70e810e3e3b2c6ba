package browser

import (
	"context"
	"errors"
	"fmt"

	"pkt.systems/leafcheck/schema"
)

// Strategy selects how a Locator value is interpreted.
type Strategy string

const (
	// ByID matches an element id.
	ByID Strategy = "id"
	// ByCSS matches a CSS selector.
	ByCSS Strategy = "css"
	// ByXPath matches an XPath expression.
	ByXPath Strategy = "xpath"
)

// Locator is one matcher in a fallback chain.
type Locator struct {
	Strategy Strategy
	Value    string
	// AllowHidden accepts present but invisible elements.
	AllowHidden bool
}

func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.Strategy, l.Value)
}

// ID returns a locator matching an element id.
func ID(value string) Locator { return Locator{Strategy: ByID, Value: value} }

// CSS returns a locator matching a CSS selector.
func CSS(value string) Locator { return Locator{Strategy: ByCSS, Value: value} }

// XPath returns a locator matching an XPath expression.
func XPath(value string) Locator { return Locator{Strategy: ByXPath, Value: value} }

// Present relaxes the locator to match hidden elements too.
func (l Locator) Present() Locator {
	l.AllowHidden = true
	return l
}

// Chain is a priority-ordered list of locators. The first locator yielding a
// match wins; ordering expresses preference, not correctness.
type Chain []Locator

// Element references a matched DOM element within the current window.
type Element struct {
	Ref     string
	Locator Locator
}

// Handle identifies one browser window or tab.
type Handle string

// Probe evaluates one locator against the live page.
type Probe func(ctx context.Context, loc Locator) (Element, bool, error)

// Resolve walks the chain in order and stops at the first match. A locator
// whose script is rejected is skipped; any other error ends the walk.
func (c Chain) Resolve(ctx context.Context, probe Probe) (Element, bool, error) {
	for _, loc := range c {
		el, ok, err := probe(ctx, loc)
		if err != nil {
			if errors.Is(err, schema.ErrScript) {
				continue
			}
			return Element{}, false, err
		}
		if ok {
			return el, true, nil
		}
	}
	return Element{}, false, nil
}

const refAttr = "data-leafcheck-ref"

const findScript = `
var strategy = arguments[0], value = arguments[1], allowHidden = arguments[2], ref = arguments[3];
var nodes = [];
if (strategy === 'id') {
	var byID = document.getElementById(value);
	if (byID) nodes.push(byID);
} else if (strategy === 'css') {
	nodes = Array.prototype.slice.call(document.querySelectorAll(value));
} else if (strategy === 'xpath') {
	var snap = document.evaluate(value, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	for (var i = 0; i < snap.snapshotLength; i++) nodes.push(snap.snapshotItem(i));
} else {
	throw new Error('unknown locator strategy: ' + strategy);
}
for (var j = 0; j < nodes.length; j++) {
	var el = nodes[j];
	if (!(el instanceof Element)) continue;
	if (!allowHidden) {
		var style = window.getComputedStyle(el);
		if (style.display === 'none' || style.visibility === 'hidden') continue;
		if (!(el.offsetWidth || el.offsetHeight || el.getClientRects().length)) continue;
	}
	el.setAttribute('` + refAttr + `', ref);
	return true;
}
return false;
`

const lookupRef = `
var el = document.querySelector('[` + refAttr + `="' + arguments[0] + '"]');
if (!el) throw new Error('element is no longer attached: ' + arguments[0]);
`

const clickScript = lookupRef + `
el.click();
return true;
`

const setValueScript = lookupRef + `
var desc = Object.getOwnPropertyDescriptor(Object.getPrototypeOf(el), 'value');
if (desc && desc.set) { desc.set.call(el, arguments[1]); } else { el.value = arguments[1]; }
el.dispatchEvent(new Event('input', { bubbles: true }));
el.dispatchEvent(new Event('change', { bubbles: true }));
return true;
`

const removeAllScript = `
var nodes = document.querySelectorAll(arguments[0]);
nodes.forEach(function (n) { n.remove(); });
return nodes.length;
`

const bodyTextScript = `return document.body ? document.body.innerText : '';`

const htmlScript = `return document.documentElement ? document.documentElement.outerHTML : '';`
