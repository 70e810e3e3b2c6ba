package checkin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pkt.systems/leafcheck/schema"
)

var (
	rewardPattern  = regexp.MustCompile(`(获得|奖励)\s?(\d+\.?\d*)\s?元`)
	balancePattern = regexp.MustCompile(`[¥￥]\s?(\d{1,4}\.\d{2})`)
)

// ParseReward extracts the first reward amount announced in text.
func ParseReward(text string) (string, bool) {
	m := rewardPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[2], true
}

// ClassifyResult maps the page text after the final click to an outcome.
// Every branch is a success; only the reward and marker branches are
// confirmed.
func ClassifyResult(text string) schema.Outcome {
	if amount, ok := ParseReward(text); ok {
		return schema.Success(fmt.Sprintf(DetailRewarded, amount), amount)
	}
	if strings.Contains(text, MarkerSuccess) {
		return schema.Success(DetailSucceeded, "")
	}
	return schema.Unconfirmed(DetailDispatched)
}

// ExtractBalance finds the first currency-prefixed amount in a document.
// Rendered text is searched first, then the raw markup.
func ExtractBalance(html string) (string, bool) {
	if text, err := renderedText(html); err == nil {
		if m := balancePattern.FindStringSubmatch(text); m != nil {
			return m[1] + "元", true
		}
	}
	if m := balancePattern.FindStringSubmatch(html); m != nil {
		return m[1] + "元", true
	}
	return "", false
}

func renderedText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, template").Remove()
	return doc.Text(), nil
}

func isInterstitial(title string) bool {
	return strings.Contains(title, MarkerInterstitial)
}

func isAlreadyDone(text string) bool {
	return strings.Contains(text, MarkerAlreadyDone) || strings.Contains(text, MarkerComeBack)
}
