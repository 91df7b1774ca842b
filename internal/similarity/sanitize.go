package similarity

import (
	"regexp"
	"strings"
)

const fallbackName = "user"

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SanitizeName maps an author identifier to a token safe to use as a directory name.
func SanitizeName(name string) string {
	cleaned := strings.Trim(unsafeNameRe.ReplaceAllString(name, "_"), "._")
	if cleaned == "" {
		return fallbackName
	}
	return cleaned
}
