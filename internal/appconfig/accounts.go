package appconfig

import (
	"strings"

	"pkt.systems/leafcheck/schema"
)

// ParseAccounts splits raw into credentials. Entries are separated by sep
// (comma when empty) and split at the first colon, so secrets may contain
// colons. Entries without a colon are skipped; blank fields are kept and
// rejected later at login so they still appear in the report.
func ParseAccounts(raw, sep string) []schema.Credential {
	if sep == "" {
		sep = ","
	}
	var creds []schema.Credential
	for _, entry := range strings.Split(raw, sep) {
		entry = strings.TrimSpace(entry)
		identifier, secret, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		creds = append(creds, schema.Credential{
			Identifier: strings.TrimSpace(identifier),
			Secret:     strings.TrimSpace(secret),
		})
	}
	return creds
}
