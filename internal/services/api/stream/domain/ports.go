package domain

import "context"

// ServicePort is consumed by the posts transport layer
type ServicePort interface {
	// Stream validates in, resolves the document, and starts the chunk
	// producer. The producer observes ctx and stops on cancellation
	Stream(ctx context.Context, in Input) (Lease, error)
}
