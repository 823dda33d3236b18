package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"cinegram/internal/platform/net/middleware"
)

// CommonStack returns a baseline per module middleware slice
// no global Timeout or Compress here: media streams are long-lived and
// already-compressed, modules opt in per route where it makes sense
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// observability
		middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 2 * time.Second}),

		// cross-origin (tweak config in main if needed)
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Heartbeat("/health"),
		middleware.RedirectSlashes(),
	}
}

// JSONStack adds response compression on top of CommonStack for the
// envelope endpoints that benefit from it
func JSONStack() []func(http.Handler) http.Handler {
	return append(CommonStack(), middleware.Compress(flate.BestSpeed))
}
