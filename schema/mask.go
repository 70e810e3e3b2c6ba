package schema

import "strings"

const maskVisible = 3

// MaskIdentifier hides most of an account identifier for logs and notifications.
// For e-mail style identifiers at most the first three characters of the local
// part survive before "***@domain".
func MaskIdentifier(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "***"
	}
	at := strings.LastIndex(id, "@")
	if at < 0 {
		return prefixRunes(id, maskVisible) + "***"
	}
	local, domain := id[:at], id[at+1:]
	return prefixRunes(local, maskVisible) + "***@" + domain
}

// Truncate shortens s to limit runes, marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// DiagnosticLimit bounds error text embedded in outcomes.
const DiagnosticLimit = 80

func prefixRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
