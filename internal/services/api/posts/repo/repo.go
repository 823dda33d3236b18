// Package repo implements post reconstruction over the archive fetcher seam
package repo

import (
	"context"
	"sort"
	"strings"
	"time"

	"cinegram/internal/adapters/archive"
	"cinegram/internal/core/caption"
	"cinegram/internal/modkit/repokit"
	perr "cinegram/internal/platform/errors"
	pstrings "cinegram/internal/platform/strings"
	"cinegram/internal/services/api/posts/domain"

	"golang.org/x/text/cases"
)

// overFetchFloor is the minimum raw-history window per fetch iteration;
// grouped posts span several messages so pages are over-fetched
const overFetchFloor = 10

// Repo is the posts data access surface
type Repo interface {
	Paginate(ctx context.Context, cur domain.Cursor) (domain.Page, error)
	Search(ctx context.Context, cur domain.Cursor) (domain.Page, error)
	Get(ctx context.Context, messageID int64) (domain.Post, error)
	InfoPhoto(ctx context.Context, messageID int64) (archive.Photo, error)
}

type archiveRepo struct {
	q    repokit.Queryer
	docs *archive.DocumentCache
}

// NewArchive returns a Binder that builds the archive-backed repo
// docs is the process-wide document cache shared with the stream service
func NewArchive(docs *archive.DocumentCache) repokit.Binder[Repo] {
	return repokit.BindFunc[Repo](func(q repokit.Queryer) Repo {
		return &archiveRepo{q: q, docs: docs}
	})
}

// groups accumulates raw messages per group id, preserving insertion order.
// Fetch pages arrive newest-first so insertion order approximates recency
type groups struct {
	order   []int64
	members map[int64][]archive.Message
}

func newGroups() *groups {
	return &groups{members: map[int64][]archive.Message{}}
}

func (g *groups) add(m archive.Message) {
	if _, ok := g.members[m.GroupedID]; !ok {
		g.order = append(g.order, m.GroupedID)
	}
	g.members[m.GroupedID] = append(g.members[m.GroupedID], m)
}

func (g *groups) len() int { return len(g.order) }

// truncate keeps the first n groups in insertion order, without resorting
func (g *groups) truncate(n int) {
	if len(g.order) <= n {
		return
	}
	for _, id := range g.order[n:] {
		delete(g.members, id)
	}
	g.order = g.order[:n]
}

// walk folds successive history pages into a group accumulator until stop
// reports enough or the archive is exhausted. A group is finalized with
// whatever members were collected by then; info and media messages split
// across a page boundary can miss each other, which is a known approximation
func (r *archiveRepo) walk(ctx context.Context, cur domain.Cursor, stop func(*groups) bool) (*groups, error) {
	acc := newGroups()
	offsetID := cur.OffsetID
	fetchLimit := 2 * cur.Limit
	if fetchLimit < overFetchFloor {
		fetchLimit = overFetchFloor
	}

	for !stop(acc) {
		q := archive.HistoryQuery{
			Limit:     fetchLimit,
			OffsetID:  offsetID,
			AddOffset: cur.AddOffset,
			MaxID:     cur.MaxID,
			MinID:     cur.MinID,
		}
		if cur.OffsetDate != nil {
			q.OffsetDate = *cur.OffsetDate
		}
		page, err := r.q.History(ctx, q)
		if err != nil {
			return nil, perr.WrapUpstream(err, "history fetch failed")
		}
		if len(page) == 0 {
			break // archive exhausted
		}

		for _, m := range page {
			if m.GroupedID != 0 {
				acc.add(m)
			}
		}

		// move strictly older to avoid re-fetching the same window
		offsetID = minID(page) - 1
	}
	return acc, nil
}

func (r *archiveRepo) Paginate(ctx context.Context, cur domain.Cursor) (domain.Page, error) {
	needed := cur.Limit
	acc, err := r.walk(ctx, cur, func(g *groups) bool { return g.len() >= needed })
	if err != nil {
		return domain.Page{}, err
	}
	acc.truncate(needed)

	posts := r.buildPosts(acc)
	return finishPage(posts, cur), nil
}

func (r *archiveRepo) Search(ctx context.Context, cur domain.Cursor) (domain.Page, error) {
	needed := cur.Limit
	match := newMatcher(cur.Search)

	// built posts are memoized per group, keyed on member count, so a
	// caption is only re-parsed when a later fetch page adds members to
	// its group
	type snapshot struct {
		members int
		post    domain.Post
		ok      bool
		hit     bool
	}
	snaps := map[int64]*snapshot{}
	hits := 0
	refresh := func(g *groups) {
		for _, id := range g.order {
			members := g.members[id]
			s := snaps[id]
			if s != nil && s.members == len(members) {
				continue
			}
			if s != nil && s.hit {
				hits--
			}
			post, ok := r.buildPost(members)
			s = &snapshot{members: len(members), post: post, ok: ok, hit: ok && match(post)}
			snaps[id] = s
			if s.hit {
				hits++
			}
		}
	}

	acc, err := r.walk(ctx, cur, func(g *groups) bool {
		refresh(g)
		return hits >= needed
	})
	if err != nil {
		return domain.Page{}, err
	}
	refresh(acc)

	matched := make([]domain.Post, 0, needed)
	for _, id := range acc.order {
		if s := snaps[id]; s.hit {
			matched = append(matched, s.post)
		}
	}
	if len(matched) > needed {
		matched = matched[:needed]
	}
	return finishPage(matched, cur), nil
}

func (r *archiveRepo) Get(ctx context.Context, messageID int64) (domain.Post, error) {
	// the archive emits a post's text and media messages as adjacent ids
	msgs, err := r.q.MessagesByID(ctx, []int64{messageID, messageID + 1})
	if err != nil {
		return domain.Post{}, perr.WrapUpstream(err, "message fetch failed")
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })

	post, ok := r.buildPost(msgs)
	if !ok {
		return domain.Post{}, perr.NotFoundf("post %d not found", messageID)
	}
	return post, nil
}

func (r *archiveRepo) InfoPhoto(ctx context.Context, messageID int64) (archive.Photo, error) {
	msgs, err := r.q.MessagesByID(ctx, []int64{messageID})
	if err != nil {
		return archive.Photo{}, perr.WrapUpstream(err, "message fetch failed")
	}
	for _, m := range msgs {
		if m.Photo != nil {
			return *m.Photo, nil
		}
	}
	return archive.Photo{}, perr.NotFoundf("no image for message %d", messageID)
}

// buildPosts assembles one post per group, dropping groups with no info message
func (r *archiveRepo) buildPosts(g *groups) []domain.Post {
	posts := make([]domain.Post, 0, g.len())
	for _, id := range g.order {
		if p, ok := r.buildPost(g.members[id]); ok {
			posts = append(posts, p)
		}
	}
	return posts
}

// buildPost picks the info message (first with text) and the media message
// (first with a document) from one group. Either may be absent; no info
// message means no post. A found document is upserted into the cache so a
// later stream request can resolve it without another archive round trip
func (r *archiveRepo) buildPost(group []archive.Message) (domain.Post, bool) {
	var info, media *archive.Message
	for i := range group {
		if info == nil && group[i].Text != "" {
			info = &group[i]
		}
		if media == nil && group[i].Document != nil {
			media = &group[i]
		}
	}
	if info == nil {
		return domain.Post{}, false
	}

	reactions := make([]domain.Reaction, 0, len(info.Reactions))
	for _, rc := range info.Reactions {
		reactions = append(reactions, domain.Reaction{Reaction: rc.Emoticon, Count: rc.Count})
	}

	post := domain.Post{
		MessageID:       info.ID,
		Date:            info.Date.UTC().Format(time.RFC3339),
		Author:          pstrings.Ptr(info.Author),
		Reactions:       reactions,
		OriginalContent: info.Text,
		ParsedContent:   caption.Parse(info.Text),
	}
	if info.GroupedID != 0 {
		post.GroupedID = i64(info.GroupedID)
	}
	if media != nil {
		doc := *media.Document
		r.docs.Set(doc.ID, doc)
		post.DocumentID = i64(doc.ID)
		post.DocumentSize = i64(doc.Size)
		post.MessageDocumentID = i64(media.ID)
	}
	return post, true
}

// finishPage sorts posts newest-first and advances the cursor bounds
func finishPage(posts []domain.Post, cur domain.Cursor) domain.Page {
	sort.Slice(posts, func(i, j int) bool { return posts[i].MessageID > posts[j].MessageID })

	if len(posts) > 0 {
		cur.FirstOffsetID = i64(posts[0].MessageID)
		cur.LastOffsetID = i64(posts[len(posts)-1].MessageID)
		cur.Total = len(posts)
	}
	return domain.Page{Data: posts, Pagination: cur}
}

// newMatcher builds a case-folded predicate over title, tags, and raw text
func newMatcher(term string) func(domain.Post) bool {
	if term == "" {
		return func(domain.Post) bool { return true }
	}
	fold := cases.Fold()
	needle := fold.String(term)
	contains := func(s string) bool {
		return s != "" && strings.Contains(fold.String(s), needle)
	}
	return func(p domain.Post) bool {
		if contains(pstrings.Deref(p.ParsedContent.Title)) {
			return true
		}
		for _, tag := range p.ParsedContent.Tags {
			if contains(tag) {
				return true
			}
		}
		return contains(p.OriginalContent)
	}
}

func minID(page []archive.Message) int64 {
	m := page[0].ID
	for _, msg := range page[1:] {
		if msg.ID < m {
			m = msg.ID
		}
	}
	return m
}

func i64(v int64) *int64 { return &v }
