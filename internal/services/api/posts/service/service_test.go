package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"cinegram/internal/adapters/archive"
	"cinegram/internal/modkit/repokit"
	perr "cinegram/internal/platform/errors"
	"cinegram/internal/platform/testkit"
	"cinegram/internal/services/api/posts/domain"
	"cinegram/internal/services/api/posts/repo"
)

type fakeFetcher struct {
	msgs []archive.Message
}

func (f *fakeFetcher) History(_ context.Context, q archive.HistoryQuery) ([]archive.Message, error) {
	out := make([]archive.Message, 0, q.Limit)
	for _, m := range f.msgs {
		if q.OffsetID > 0 && m.ID >= q.OffsetID {
			continue
		}
		out = append(out, m)
		if len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeFetcher) MessagesByID(_ context.Context, ids []int64) ([]archive.Message, error) {
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

type fakeDownloader struct {
	photoBody []byte
	gotPhoto  archive.Photo
}

func (d *fakeDownloader) DownloadChunk(context.Context, archive.Document, int64, int64) ([]byte, error) {
	panic("not used")
}

func (d *fakeDownloader) DownloadWhole(_ context.Context, p archive.Photo) ([]byte, error) {
	d.gotPhoto = p
	return d.photoBody, nil
}

func newSvc(f *fakeFetcher, d *fakeDownloader) *Svc {
	docs := archive.NewDocumentCache(10, time.Minute)
	return New(f, d, repo.NewArchive(docs))
}

func TestNewPanicsOnNilDeps(t *testing.T) {
	t.Parallel()

	docs := archive.NewDocumentCache(10, time.Minute)
	binder := repo.NewArchive(docs)
	f := &fakeFetcher{}
	d := &fakeDownloader{}

	testkit.MustPanic(t, func() { New(nil, d, binder) })
	testkit.MustPanic(t, func() { New(f, nil, binder) })
	testkit.MustPanic(t, func() { New(f, d, repokit.Binder[repo.Repo](nil)) })
}

func TestPaginateDelegates(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{msgs: []archive.Message{
		{ID: 10, GroupedID: 100, Date: time.Now(), Text: "📺 Título: Only One"},
	}}
	svc := newSvc(f, &fakeDownloader{})

	page, err := svc.Paginate(context.Background(), domain.NewCursor(5, 0, ""))
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].MessageID != 10 {
		t.Fatalf("unexpected page: %+v", page.Data)
	}
}

func TestImageDownloadsInfoPhoto(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{msgs: []archive.Message{
		{ID: 10, Date: time.Now(), Text: "poster", Photo: &archive.Photo{ID: 77, AccessHash: 539, ThumbType: "y"}},
	}}
	d := &fakeDownloader{photoBody: []byte{0xFF, 0xD8, 0xFF}}
	svc := newSvc(f, d)

	body, err := svc.Image(context.Background(), 10)
	if err != nil {
		t.Fatalf("Image: %v", err)
	}
	if !bytes.Equal(body, d.photoBody) {
		t.Fatalf("body = %v", body)
	}
	if d.gotPhoto.ID != 77 || d.gotPhoto.AccessHash != 539 {
		t.Fatalf("downloader got wrong photo: %+v", d.gotPhoto)
	}
}

func TestImageMissingPhoto(t *testing.T) {
	t.Parallel()

	svc := newSvc(&fakeFetcher{}, &fakeDownloader{})

	_, err := svc.Image(context.Background(), 404)
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}
