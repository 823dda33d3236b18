package http

import (
	"fmt"
	stdhttp "net/http"
	"strconv"
	"strings"

	perr "cinegram/internal/platform/errors"
)

// RangeSpec describes the byte window of a media stream response
// Start and End are inclusive offsets; Size is the full document size
type RangeSpec struct {
	Start   int64
	End     int64
	Size    int64
	Partial bool
	Type    string
}

// ParseRange resolves a Range header against a document of the given size.
// An absent header yields the full window with Partial=false. A malformed or
// out-of-bounds header is a validation error surfaced before any bytes move
func ParseRange(header string, size int64) (RangeSpec, error) {
	spec := RangeSpec{Start: 0, End: size - 1, Size: size}
	if header == "" {
		return spec, nil
	}

	raw, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return RangeSpec{}, perr.Validationf("malformed range header %q", header)
	}
	first, last, ok := strings.Cut(raw, "-")
	if !ok {
		return RangeSpec{}, perr.Validationf("malformed range header %q", header)
	}

	start, err := strconv.ParseInt(strings.TrimSpace(first), 10, 64)
	if err != nil {
		return RangeSpec{}, perr.Validationf("malformed range start %q", first)
	}
	end := size - 1
	if s := strings.TrimSpace(last); s != "" {
		end, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return RangeSpec{}, perr.Validationf("malformed range end %q", last)
		}
	}

	if start < 0 || start > end || end >= size {
		return RangeSpec{}, perr.Validationf("range %d-%d out of bounds for size %d", start, end, size)
	}

	spec.Start, spec.End, spec.Partial = start, end, true
	return spec, nil
}

// Raw writes a non-enveloped body with the given content type
// Used for image bytes where a JSON envelope makes no sense
func Raw(w stdhttp.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// StreamRange writes range headers for spec, then copies chunks to the client
// as they arrive, flushing after each one. The producer is expected to stop on
// its own when the request context is cancelled, so a client disconnect simply
// drains here and returns
func StreamRange(w stdhttp.ResponseWriter, spec RangeSpec, chunks <-chan []byte) {
	ct := spec.Type
	if ct == "" {
		ct = "video/mp4"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Accept-Ranges", "bytes")

	if spec.Partial {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", spec.End-spec.Start+1))
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", spec.Start, spec.End, spec.Size))
		w.WriteHeader(stdhttp.StatusPartialContent)
	} else {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", spec.Size))
		w.WriteHeader(stdhttp.StatusOK)
	}

	flusher, _ := w.(stdhttp.Flusher)
	for chunk := range chunks {
		if _, err := w.Write(chunk); err != nil {
			// client went away; keep draining so the producer can observe
			// cancellation and close the channel
			for range chunks {
			}
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}
