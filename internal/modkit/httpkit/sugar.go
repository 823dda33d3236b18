package httpkit

import (
	"net/http"

	phttp "cinegram/internal/platform/net/http"
)

// Get registers a no-body handler and uses the envelope adapter
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// Post registers a no-body handler and uses the envelope adapter
func Post(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, Call(h))
}

// PostJSON mounts a JSON-body handler under POST
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// GetRaw registers a handler that owns the ResponseWriter, for byte responses
// and streams that bypass the JSON envelope
func GetRaw(r Router, path string, h func(http.ResponseWriter, *http.Request)) {
	r.Get(path, h)
}
