// Package policy decides whether a prompt may fire and whether a page is
// covered by the do-not-disturb list. Everything here is pure.
package policy

import (
	"net/url"
	"strings"
	"time"

	"github.com/julianstephens/wurkwurk/internal/constants"
	"github.com/julianstephens/wurkwurk/internal/models"
	"github.com/julianstephens/wurkwurk/internal/utils"
)

// ShouldPromptNow reports whether now falls on a working day and inside the
// half-open range [WorkStartHour, WorkEndHour). When the settings carry a
// timezone, now is converted into it first; an unknown timezone leaves now as is.
func ShouldPromptNow(now time.Time, s models.Settings) bool {
	if s.Timezone != "" {
		if local, err := utils.InTimezone(now, s.Timezone); err == nil {
			now = local
		}
	}
	if !s.IsWorkingDay(now.Weekday()) {
		return false
	}
	h := now.Hour()
	return s.WorkStartHour <= h && h < s.WorkEndHour
}

// IsDomainBlocked reports whether any trimmed entry of blocked is a substring
// of hostname. An empty hostname is never blocked.
func IsDomainBlocked(hostname string, blocked []string) bool {
	if hostname == "" {
		return false
	}
	for _, d := range blocked {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if strings.Contains(hostname, d) {
			return true
		}
	}
	return false
}

// ParseDomainList splits the newline-separated blocked domains setting.
func ParseDomainList(s string) []string {
	return models.SplitLines(s)
}

// Hostname extracts the host of rawURL without port. It returns "" when the
// URL does not parse or has no host (about:blank, file paths, data URLs).
func Hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// IsProtectedURL reports whether rawURL is an internal page the collector
// cannot be shown on.
func IsProtectedURL(rawURL string) bool {
	for _, p := range constants.ProtectedURLPrefixes {
		if strings.HasPrefix(rawURL, p) {
			return true
		}
	}
	return false
}
