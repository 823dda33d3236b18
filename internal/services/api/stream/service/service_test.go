package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cinegram/internal/adapters/archive"
	perr "cinegram/internal/platform/errors"
	"cinegram/internal/platform/testkit"
	"cinegram/internal/services/api/stream/domain"
)

type fakeFetcher struct {
	msgs  []archive.Message
	calls int
}

func (f *fakeFetcher) History(context.Context, archive.HistoryQuery) ([]archive.Message, error) {
	panic("not used")
}

func (f *fakeFetcher) MessagesByID(_ context.Context, ids []int64) ([]archive.Message, error) {
	f.calls++
	var out []archive.Message
	for _, id := range ids {
		for _, m := range f.msgs {
			if m.ID == id {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// fakeDownloader serves chunks of a synthetic body where body[i] = byte(i)
type fakeDownloader struct {
	mu       sync.Mutex
	size     int64
	calls    int
	chunkErr error
}

func (d *fakeDownloader) DownloadChunk(_ context.Context, _ archive.Document, offset, length int64) ([]byte, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.chunkErr != nil {
		return nil, d.chunkErr
	}
	if offset+length > d.size {
		length = d.size - offset
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = byte(offset + int64(i))
	}
	return b, nil
}

func (d *fakeDownloader) DownloadWhole(context.Context, archive.Photo) ([]byte, error) {
	panic("not used")
}

func (d *fakeDownloader) chunkCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func newSvc(f *fakeFetcher, d *fakeDownloader, seed ...archive.Document) (*Svc, *archive.DocumentCache) {
	docs := archive.NewDocumentCache(10, time.Minute)
	for _, doc := range seed {
		docs.Set(doc.ID, doc)
	}
	return New(f, d, docs), docs
}

func drain(t *testing.T, lease domain.Lease) []byte {
	t.Helper()
	var buf bytes.Buffer
	for b := range lease.Chunks {
		buf.Write(b)
	}
	return buf.Bytes()
}

func TestNewPanicsOnNilDeps(t *testing.T) {
	t.Parallel()

	docs := archive.NewDocumentCache(10, time.Minute)
	f := &fakeFetcher{}
	d := &fakeDownloader{}

	testkit.MustPanic(t, func() { New(nil, d, docs) })
	testkit.MustPanic(t, func() { New(f, nil, docs) })
	testkit.MustPanic(t, func() { New(f, d, nil) })
}

func TestStreamServesExactRangeInBoundedChunks(t *testing.T) {
	t.Parallel()

	const size = int64(5<<20 + 123)
	doc := archive.Document{ID: 1, Size: size, MimeType: "video/mp4"}
	svc, _ := newSvc(&fakeFetcher{}, &fakeDownloader{size: size}, doc)

	start, end := int64(100), int64(3<<20+57)
	lease, err := svc.Stream(context.Background(), domain.Input{
		DocumentID: 1, MessageID: 11, Size: size, Start: start, End: end,
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if lease.MimeType != "video/mp4" {
		t.Fatalf("mime = %q", lease.MimeType)
	}

	var total int64
	for b := range lease.Chunks {
		if int64(len(b)) > chunkSize {
			t.Fatalf("chunk of %d bytes exceeds limit", len(b))
		}
		for i, c := range b {
			if c != byte(start+total+int64(i)) {
				t.Fatalf("body corrupt at offset %d", start+total+int64(i))
			}
		}
		total += int64(len(b))
	}
	if want := end - start + 1; total != want {
		t.Fatalf("streamed %d bytes, want %d", total, want)
	}
	if lease.Err() != nil {
		t.Fatalf("stream error: %v", lease.Err())
	}
}

func TestStreamStopsOnCancellation(t *testing.T) {
	t.Parallel()

	const size = int64(20 << 20)
	doc := archive.Document{ID: 1, Size: size}
	dl := &fakeDownloader{size: size}
	svc, _ := newSvc(&fakeFetcher{}, dl, doc)

	ctx, cancel := context.WithCancel(context.Background())
	lease, err := svc.Stream(ctx, domain.Input{DocumentID: 1, Size: size, Start: 0, End: size - 1})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	// take one chunk, then walk away
	if _, ok := <-lease.Chunks; !ok {
		t.Fatal("expected at least one chunk")
	}
	cancel()
	for range lease.Chunks {
	}

	calls := dl.chunkCalls()
	time.Sleep(20 * time.Millisecond)
	if got := dl.chunkCalls(); got != calls {
		t.Fatalf("producer kept downloading after cancel: %d -> %d", calls, got)
	}
	if got := dl.chunkCalls(); got >= int(size/chunkSize) {
		t.Fatalf("producer ran to completion: %d calls", got)
	}
}

func TestStreamResolvesExpiredDocument(t *testing.T) {
	t.Parallel()

	doc := archive.Document{ID: 7, AccessHash: 77, Size: 1000, MimeType: "video/mp4"}
	f := &fakeFetcher{msgs: []archive.Message{{ID: 11, Document: &doc}}}
	svc, docs := newSvc(f, &fakeDownloader{size: 1000}) // cache empty

	lease, err := svc.Stream(context.Background(), domain.Input{
		DocumentID: 7, MessageID: 11, Size: 1000, Start: 0, End: 999,
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if got := drain(t, lease); len(got) != 1000 {
		t.Fatalf("streamed %d bytes", len(got))
	}
	if f.calls != 1 {
		t.Fatalf("resolve calls = %d", f.calls)
	}
	if _, ok := docs.Get(7); !ok {
		t.Fatal("re-resolved document must be cached back")
	}
}

func TestStreamUnrecoverableDocument(t *testing.T) {
	t.Parallel()

	svc, _ := newSvc(&fakeFetcher{}, &fakeDownloader{size: 1000})

	_, err := svc.Stream(context.Background(), domain.Input{
		DocumentID: 7, MessageID: 11, Size: 1000, Start: 0, End: 999,
	})
	if !perr.IsCode(err, perr.ErrorCodeUpstream) {
		t.Fatalf("want upstream error, got %v", err)
	}
}

func TestStreamValidation(t *testing.T) {
	t.Parallel()

	doc := archive.Document{ID: 1, Size: 1000}
	svc, _ := newSvc(&fakeFetcher{}, &fakeDownloader{size: 1000}, doc)

	cases := []struct {
		name string
		in   domain.Input
	}{
		{"missing document id", domain.Input{Size: 1000, Start: 0, End: 10}},
		{"negative start", domain.Input{DocumentID: 1, Size: 1000, Start: -1, End: 10}},
		{"inverted range", domain.Input{DocumentID: 1, Size: 1000, Start: 20, End: 10}},
		{"past end", domain.Input{DocumentID: 1, Size: 1000, Start: 0, End: 1000}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Stream(context.Background(), tc.in); !perr.IsCode(err, perr.ErrorCodeValidation) {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
}

func TestStreamMidflightFailureClosesWithError(t *testing.T) {
	t.Parallel()

	doc := archive.Document{ID: 1, Size: 1000}
	dl := &fakeDownloader{size: 1000, chunkErr: errors.New("connection reset")}
	svc, _ := newSvc(&fakeFetcher{}, dl, doc)

	lease, err := svc.Stream(context.Background(), domain.Input{
		DocumentID: 1, Size: 1000, Start: 0, End: 999,
	})
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	if got := drain(t, lease); len(got) != 0 {
		t.Fatalf("streamed %d bytes before failure", len(got))
	}
	if !perr.IsCode(lease.Err(), perr.ErrorCodeUpstream) {
		t.Fatalf("want upstream stream error, got %v", lease.Err())
	}
}
