package postgres

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	pq "github.com/lib/pq"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// IsConnString reports whether s looks like a PostgreSQL URL or key=value DSN.
func IsConnString(s string) bool {
	return isURL(s) || strings.Contains(s, "host=")
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

// dsnPairs splits a key=value DSN into lowercased keys. Malformed words are skipped.
func dsnPairs(s string) map[string]string {
	pairs := make(map[string]string)
	for _, word := range strings.Fields(s) {
		k, v, ok := strings.Cut(word, "=")
		if !ok {
			continue
		}
		pairs[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return pairs
}

// hasParam reports whether connStr sets key, either as a URL query
// parameter or as a DSN pair. Keys compare case-insensitively.
func hasParam(connStr, key string) bool {
	if u, err := url.Parse(connStr); err == nil && u.Scheme != "" {
		for k := range u.Query() {
			if strings.EqualFold(k, key) {
				return true
			}
		}
	}
	_, ok := dsnPairs(connStr)[strings.ToLower(key)]
	return ok
}

// withSearchPath pins the schema unless the caller already chose one.
func withSearchPath(connStr, schema string) string {
	if isURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") != "" {
			return connStr
		}
		q.Set("search_path", schema)
		u.RawQuery = q.Encode()
		return u.String()
	}
	if hasParam(connStr, "search_path") {
		return connStr
	}
	return strings.TrimSpace(connStr) + " search_path=" + schema
}

// CheckConnString validates a URL or DSN and rejects embedded passwords.
// A password-bearing string still parses; callers that read it from the
// keyring may choose to accept ErrEmbeddedCredentials.
func CheckConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if !isURL(connStr) {
		if _, ok := dsnPairs(connStr)["password"]; ok {
			return ErrEmbeddedCredentials
		}
		return nil
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	if _, set := u.User.Password(); set {
		return ErrEmbeddedCredentials
	}
	if u.Host == "" && u.User == nil && strings.Trim(u.Path, "/") == "" {
		return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
	}
	return nil
}
