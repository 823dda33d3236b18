package httpkit

import (
	"net/http"
	"strconv"
	"strings"

	perr "cinegram/internal/platform/errors"
)

// Query helpers for GET endpoints; absent params fall back to def,
// malformed params surface as validation errors

// QueryString returns a trimmed query param or def when absent
func QueryString(r *http.Request, name, def string) string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def
	}
	return v
}

// QueryInt parses an int query param
func QueryInt(r *http.Request, name string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, perr.WithField(perr.Validationf("%s must be an integer", name), name)
	}
	return n, nil
}

// QueryInt64 parses an int64 query param, used for message and document ids
func QueryInt64(r *http.Request, name string, def int64) (int64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, perr.WithField(perr.Validationf("%s must be an integer", name), name)
	}
	return n, nil
}
