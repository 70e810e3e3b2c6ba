package notify

import (
	"fmt"
	"html"
	"strings"

	"pkt.systems/leafcheck/schema"
)

// Report lines. Telegram renders them in HTML parse mode.
const (
	headerLine   = "🎁 Leaflow自动签到通知"
	ratioLine    = "📊 成功: %d/%d"
	dateLine     = "📅 签到时间：%s"
	accountLine  = "账号：%s"
	successLine  = "✅  %s"
	balanceLine  = "💰  当前总余额：%s。"
	failureLine  = "❌  签到失败"
	reasonLine   = "⚠️  原因：%s"
	reportLayout = "2006/01/02"
)

// FormatSummary renders the operator report for one batch.
func FormatSummary(s schema.RunSummary) string {
	when := s.Finished
	if when.IsZero() {
		when = s.Started
	}
	var b strings.Builder
	writeLine(&b, headerLine)
	writeLine(&b, fmt.Sprintf(ratioLine, s.Succeeded, s.Total))
	writeLine(&b, fmt.Sprintf(dateLine, when.Format(reportLayout)))
	writeLine(&b, "")
	for _, result := range s.Results {
		for _, line := range formatResult(result) {
			writeLine(&b, line)
		}
		writeLine(&b, "")
	}
	return b.String()
}

func formatResult(r schema.AccountResult) []string {
	lines := []string{fmt.Sprintf(accountLine, html.EscapeString(r.Account))}
	if r.Outcome.Succeeded() {
		return append(lines,
			fmt.Sprintf(successLine, r.Outcome.Detail),
			fmt.Sprintf(balanceLine, r.Balance),
		)
	}
	return append(lines,
		failureLine,
		fmt.Sprintf(reasonLine, html.EscapeString(r.Outcome.Detail)),
	)
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(line)
	b.WriteByte('\n')
}
