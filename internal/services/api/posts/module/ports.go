package module

import (
	"context"

	"cinegram/internal/services/api/posts/domain"
	postssvc "cinegram/internal/services/api/posts/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptPostsPort struct{ svc postssvc.Service }

// Paginate returns one page of posts starting at the cursor offset
func (a adaptPostsPort) Paginate(ctx context.Context, cur domain.Cursor) (domain.Page, error) {
	return a.svc.Paginate(ctx, cur)
}

// Search returns posts matching the cursor's search term
func (a adaptPostsPort) Search(ctx context.Context, cur domain.Cursor) (domain.Page, error) {
	return a.svc.Search(ctx, cur)
}

// Get returns the single post anchored at messageID
func (a adaptPostsPort) Get(ctx context.Context, messageID int64) (domain.Post, error) {
	return a.svc.Get(ctx, messageID)
}

// Image downloads the poster image attached to a post's info message
func (a adaptPostsPort) Image(ctx context.Context, messageID int64) ([]byte, error) {
	return a.svc.Image(ctx, messageID)
}
