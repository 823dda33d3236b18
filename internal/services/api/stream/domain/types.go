// Package domain holds the stream value types
package domain

// Input identifies one media range to serve. DocumentID keys the document
// cache; MessageID is the fallback used to re-resolve routing metadata when
// the cache entry has expired. Start and End are inclusive byte offsets
type Input struct {
	DocumentID int64
	MessageID  int64
	Size       int64
	Start      int64
	End        int64
}

// Lease is an admitted stream: the resolved extent plus a channel of body
// chunks. Chunks closes when the range is fully sent, the context is
// cancelled, or the archive fails mid-stream; Err reports which after close
type Lease struct {
	Size     int64
	Start    int64
	End      int64
	MimeType string
	Chunks   <-chan []byte
	Err      func() error
}
