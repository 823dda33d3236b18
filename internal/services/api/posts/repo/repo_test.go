package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"cinegram/internal/adapters/archive"
	perr "cinegram/internal/platform/errors"
	"cinegram/internal/services/api/posts/domain"
)

// fakeArchive serves a fixed newest-first channel history
type fakeArchive struct {
	msgs      []archive.Message // sorted by ID descending
	histCalls int
	histErr   error
}

func (f *fakeArchive) History(_ context.Context, q archive.HistoryQuery) ([]archive.Message, error) {
	f.histCalls++
	if f.histErr != nil {
		return nil, f.histErr
	}
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

func (f *fakeArchive) MessagesByID(_ context.Context, ids []int64) ([]archive.Message, error) {
	if f.histErr != nil {
		return nil, f.histErr
	}
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

var testDate = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// groupedPair emits the archive's usual shape: a text message and a media
// message sharing a group id, media first (higher id)
func groupedPair(infoID int64, groupID int64, text string, docID int64) []archive.Message {
	return []archive.Message{
		{
			ID:        infoID + 1,
			GroupedID: groupID,
			Date:      testDate,
			Document:  &archive.Document{ID: docID, AccessHash: docID * 7, Size: docID * 100, MimeType: "video/mp4"},
		},
		{
			ID:        infoID,
			GroupedID: groupID,
			Date:      testDate,
			Text:      text,
		},
	}
}

// channel builds n grouped posts, newest first, ids descending from top
func channel(n int) []archive.Message {
	var msgs []archive.Message
	id := int64(n * 10)
	for i := 0; i < n; i++ {
		msgs = append(msgs, groupedPair(id, id, "📺 Título: Movie", id)...)
		id -= 10
	}
	return msgs
}

func bind(f *fakeArchive) (Repo, *archive.DocumentCache) {
	docs := archive.NewDocumentCache(100, time.Hour)
	return NewArchive(docs).Bind(f), docs
}

func TestPaginateBuildsDescendingPage(t *testing.T) {
	t.Parallel()

	r, _ := bind(&fakeArchive{msgs: channel(5)})

	page, err := r.Paginate(context.Background(), domain.NewCursor(3, 0, ""))
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if len(page.Data) != 3 {
		t.Fatalf("posts = %d, want 3", len(page.Data))
	}
	for i := 1; i < len(page.Data); i++ {
		if page.Data[i].MessageID >= page.Data[i-1].MessageID {
			t.Fatal("posts must be sorted by message id descending")
		}
	}
	cur := page.Pagination
	if cur.Total != 3 {
		t.Fatalf("total = %d", cur.Total)
	}
	if cur.FirstOffsetID == nil || *cur.FirstOffsetID != page.Data[0].MessageID {
		t.Fatalf("first_offset_id = %v", cur.FirstOffsetID)
	}
	if cur.LastOffsetID == nil || *cur.LastOffsetID != page.Data[2].MessageID {
		t.Fatalf("last_offset_id = %v", cur.LastOffsetID)
	}
}

func TestPaginateIdempotent(t *testing.T) {
	t.Parallel()

	f := &fakeArchive{msgs: channel(6)}
	r, _ := bind(f)

	a, err := r.Paginate(context.Background(), domain.NewCursor(4, 0, ""))
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	b, err := r.Paginate(context.Background(), domain.NewCursor(4, 0, ""))
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}

	if len(a.Data) != len(b.Data) {
		t.Fatalf("page sizes differ: %d vs %d", len(a.Data), len(b.Data))
	}
	for i := range a.Data {
		if a.Data[i].MessageID != b.Data[i].MessageID {
			t.Fatal("same cursor must return the same ordered posts")
		}
	}
	if *a.Pagination.FirstOffsetID != *b.Pagination.FirstOffsetID ||
		*a.Pagination.LastOffsetID != *b.Pagination.LastOffsetID {
		t.Fatal("cursor bounds must be stable")
	}
}

func TestPaginateProgress(t *testing.T) {
	t.Parallel()

	r, _ := bind(&fakeArchive{msgs: channel(8)})

	first, err := r.Paginate(context.Background(), domain.NewCursor(3, 0, ""))
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	last := *first.Pagination.LastOffsetID

	second, err := r.Paginate(context.Background(), domain.NewCursor(3, last, ""))
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if len(second.Data) == 0 {
		t.Fatal("expected a second page")
	}
	for _, p := range second.Data {
		if p.MessageID >= last {
			t.Fatalf("post %d not strictly older than prior last_offset_id %d", p.MessageID, last)
		}
	}
}

func TestPaginateEmptyArchive(t *testing.T) {
	t.Parallel()

	r, _ := bind(&fakeArchive{})

	page, err := r.Paginate(context.Background(), domain.NewCursor(5, 0, ""))
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if len(page.Data) != 0 {
		t.Fatalf("posts = %d, want 0", len(page.Data))
	}
	if page.Pagination.FirstOffsetID != nil || page.Pagination.LastOffsetID != nil {
		t.Fatal("cursor bounds must stay unset for an empty page")
	}
	if page.Pagination.Total != 0 {
		t.Fatalf("total = %d", page.Pagination.Total)
	}
}

func TestPaginateUpstreamFailure(t *testing.T) {
	t.Parallel()

	r, _ := bind(&fakeArchive{histErr: errors.New("flood wait")})

	_, err := r.Paginate(context.Background(), domain.NewCursor(3, 0, ""))
	if !perr.IsCode(err, perr.ErrorCodeUpstream) {
		t.Fatalf("want upstream error, got %v", err)
	}
}

func TestPaginateSkipsGroupsWithoutInfo(t *testing.T) {
	t.Parallel()

	msgs := []archive.Message{
		// media-only group, no text anywhere
		{ID: 30, GroupedID: 300, Date: testDate, Document: &archive.Document{ID: 1, Size: 10}},
	}
	msgs = append(msgs, groupedPair(10, 100, "📺 Título: Kept", 2)...)
	r, _ := bind(&fakeArchive{msgs: msgs})

	page, err := r.Paginate(context.Background(), domain.NewCursor(5, 0, ""))
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].MessageID != 10 {
		t.Fatalf("unexpected page: %+v", page.Data)
	}
}

func TestPaginateRegistersDocuments(t *testing.T) {
	t.Parallel()

	r, docs := bind(&fakeArchive{msgs: channel(2)})

	page, err := r.Paginate(context.Background(), domain.NewCursor(2, 0, ""))
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	for _, p := range page.Data {
		if p.DocumentID == nil {
			t.Fatal("expected document fields on post")
		}
		if _, ok := docs.Get(*p.DocumentID); !ok {
			t.Fatalf("document %d not cached", *p.DocumentID)
		}
	}
}

func TestSearchFiltersByTitleAndTags(t *testing.T) {
	t.Parallel()

	var msgs []archive.Message
	msgs = append(msgs, groupedPair(40, 400, "📺 Título: The Matrix - #1999\n#scifi", 4)...)
	msgs = append(msgs, groupedPair(30, 300, "📺 Título: Amélie - #2001\n#romance", 3)...)
	msgs = append(msgs, groupedPair(20, 200, "📺 Título: Matrix Reloaded - #2003", 2)...)
	r, _ := bind(&fakeArchive{msgs: msgs})

	page, err := r.Search(context.Background(), domain.NewCursor(10, 0, "matrix"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Data) != 2 {
		t.Fatalf("matches = %d, want 2", len(page.Data))
	}
	for _, p := range page.Data {
		if p.MessageID == 30 {
			t.Fatal("non-matching post leaked into search results")
		}
	}

	// tag match, case folded
	page, err = r.Search(context.Background(), domain.NewCursor(10, 0, "SCIFI"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].MessageID != 40 {
		t.Fatalf("unexpected tag search result: %+v", page.Data)
	}
}

func TestSearchMatchesGroupSplitAcrossFetchPages(t *testing.T) {
	t.Parallel()

	// first fetch window (10 messages, ids 30..21) ends on the target
	// group's media message; its info message only arrives on the next
	// page, so the group must be re-evaluated once it gains the text
	var msgs []archive.Message
	msgs = append(msgs, groupedPair(29, 29, "📺 Título: Decoy One", 1)...)
	msgs = append(msgs, groupedPair(27, 27, "📺 Título: Decoy Two", 2)...)
	msgs = append(msgs, groupedPair(25, 25, "📺 Título: Decoy Three", 3)...)
	msgs = append(msgs, groupedPair(23, 23, "📺 Título: Decoy Four", 4)...)
	msgs = append(msgs,
		archive.Message{ID: 22, GroupedID: 300, Date: testDate, Document: &archive.Document{ID: 5, Size: 50}},
		archive.Message{ID: 21, GroupedID: 500, Date: testDate, Document: &archive.Document{ID: 6, Size: 60, MimeType: "video/mp4"}},
		archive.Message{ID: 19, GroupedID: 500, Date: testDate, Text: "📺 Título: Target Movie - #2022"},
	)
	r, _ := bind(&fakeArchive{msgs: msgs})

	page, err := r.Search(context.Background(), domain.NewCursor(1, 0, "target"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Data) != 1 {
		t.Fatalf("matches = %d, want 1", len(page.Data))
	}
	got := page.Data[0]
	if got.MessageID != 19 {
		t.Fatalf("message_id = %d, want 19", got.MessageID)
	}
	if got.DocumentID == nil || *got.DocumentID != 6 {
		t.Fatalf("document_id = %v, want 6", got.DocumentID)
	}
	if title := pderef(got.ParsedContent.Title); title != "Target Movie" {
		t.Fatalf("title = %q", title)
	}
}

func TestSearchExhaustsArchiveWithoutMatch(t *testing.T) {
	t.Parallel()

	r, _ := bind(&fakeArchive{msgs: channel(3)})

	page, err := r.Search(context.Background(), domain.NewCursor(2, 0, "no such title"))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Data) != 0 {
		t.Fatalf("matches = %d, want 0", len(page.Data))
	}
}

func TestGetBuildsPostFromAdjacentPair(t *testing.T) {
	t.Parallel()

	f := &fakeArchive{msgs: groupedPair(10, 100, "📺 Título: Single - #2020", 9)}
	r, docs := bind(f)

	post, err := r.Get(context.Background(), 10)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if post.MessageID != 10 {
		t.Fatalf("message_id = %d", post.MessageID)
	}
	if post.DocumentID == nil || *post.DocumentID != 9 {
		t.Fatalf("document_id = %v", post.DocumentID)
	}
	if post.MessageDocumentID == nil || *post.MessageDocumentID != 11 {
		t.Fatalf("message_document_id = %v", post.MessageDocumentID)
	}
	if got := pderef(post.ParsedContent.Title); got != "Single" {
		t.Fatalf("title = %q", got)
	}
	if _, ok := docs.Get(9); !ok {
		t.Fatal("document must be cached on get")
	}
}

func TestGetMissingInfoIsNotFound(t *testing.T) {
	t.Parallel()

	// media message only, no text companion
	f := &fakeArchive{msgs: []archive.Message{
		{ID: 11, GroupedID: 100, Date: testDate, Document: &archive.Document{ID: 9, Size: 90}},
	}}
	r, _ := bind(f)

	_, err := r.Get(context.Background(), 10)
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestGetMissingMediaIsNonFatal(t *testing.T) {
	t.Parallel()

	f := &fakeArchive{msgs: []archive.Message{
		{ID: 10, GroupedID: 100, Date: testDate, Text: "📺 Título: Text Only"},
	}}
	r, _ := bind(f)

	post, err := r.Get(context.Background(), 10)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if post.DocumentID != nil || post.DocumentSize != nil || post.MessageDocumentID != nil {
		t.Fatal("document fields must stay unset without media")
	}
}

func TestInfoPhoto(t *testing.T) {
	t.Parallel()

	f := &fakeArchive{msgs: []archive.Message{
		{ID: 10, Date: testDate, Text: "poster", Photo: &archive.Photo{ID: 77, ThumbType: "y"}},
	}}
	r, _ := bind(f)

	ph, err := r.InfoPhoto(context.Background(), 10)
	if err != nil {
		t.Fatalf("InfoPhoto: %v", err)
	}
	if ph.ID != 77 {
		t.Fatalf("photo id = %d", ph.ID)
	}

	if _, err = r.InfoPhoto(context.Background(), 999); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func pderef(ps *string) string {
	if ps == nil {
		return ""
	}
	return *ps
}
