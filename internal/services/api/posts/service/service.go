// Package service contains posts workflows
package service

import (
	"context"

	"cinegram/internal/modkit/repokit"
	"cinegram/internal/services/api/posts/domain"
	"cinegram/internal/services/api/posts/repo"
)

// Service defines the posts service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the posts service
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	q      repokit.Queryer
	dl     repokit.Downloader
}

// New constructs a posts service
func New(q repokit.Queryer, dl repokit.Downloader, binder repokit.Binder[repo.Repo]) *Svc {
	if q == nil {
		panic("posts.Service requires a non nil Queryer")
	}
	if dl == nil {
		panic("posts.Service requires a non nil Downloader")
	}
	if binder == nil {
		panic("posts.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(q), binder: binder, q: q, dl: dl}
}

// Paginate returns one page of posts starting at the cursor offset
func (s *Svc) Paginate(ctx context.Context, cur domain.Cursor) (domain.Page, error) {
	return s.Repo.Paginate(ctx, cur)
}

// Search returns posts whose title, tags, or caption match the cursor's term
func (s *Svc) Search(ctx context.Context, cur domain.Cursor) (domain.Page, error) {
	return s.Repo.Search(ctx, cur)
}

// Get returns the single post anchored at messageID
func (s *Svc) Get(ctx context.Context, messageID int64) (domain.Post, error) {
	return s.Repo.Get(ctx, messageID)
}

// Image downloads the poster image attached to a post's info message
func (s *Svc) Image(ctx context.Context, messageID int64) ([]byte, error) {
	ph, err := s.Repo.InfoPhoto(ctx, messageID)
	if err != nil {
		return nil, err
	}
	return s.dl.DownloadWhole(ctx, ph)
}
