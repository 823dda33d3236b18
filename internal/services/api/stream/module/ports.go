package module

import (
	"context"

	"cinegram/internal/services/api/stream/domain"
	streamsvc "cinegram/internal/services/api/stream/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

type adaptStreamPort struct{ svc streamsvc.Service }

// Stream admits one media range and starts its chunk producer
func (a adaptStreamPort) Stream(ctx context.Context, in domain.Input) (domain.Lease, error) {
	return a.svc.Stream(ctx, in)
}
