package browser

import (
	"os"
	"strings"
)

// Discover returns the first candidate that is an existing executable file.
// found is false when none matched and the caller should fall back to the
// driver's default resolution.
func Discover(candidates []string) (path string, found bool) {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Mode().Perm()&0o111 == 0 {
			continue
		}
		return candidate, true
	}
	return "", false
}

// Resolve picks the browser binary for the options: an explicit Binary wins,
// then discovery over Candidates.
func (o Options) Resolve() (path string, found bool) {
	if strings.TrimSpace(o.Binary) != "" {
		return strings.TrimSpace(o.Binary), true
	}
	return Discover(o.Candidates)
}
