package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Paginate(ctx context.Context, cur Cursor) (Page, error)
	Search(ctx context.Context, cur Cursor) (Page, error)
	Get(ctx context.Context, messageID int64) (Post, error)
	Image(ctx context.Context, messageID int64) ([]byte, error)
}
