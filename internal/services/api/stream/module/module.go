// Package module wires the stream service into the API using modkit
package module

import (
	modkit "cinegram/internal/modkit"
	"cinegram/internal/modkit/httpkit"
	str "cinegram/internal/platform/strings"
	streamsvc "cinegram/internal/services/api/stream/service"
)

// Module implements the stream module. It mounts no routes of its own: the
// stream endpoint lives under the posts prefix, so posts consumes this
// module's port instead
type Module struct {
	deps modkit.Deps
	name string

	ports any
	svc   streamsvc.Service
}

// New constructs the stream module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("stream")}, opts...)...)

	svc := streamsvc.New(deps.Archive, deps.Archive, deps.Docs)

	m := &Module{
		deps: deps,
		name: b.Name,
		svc:  svc,
	}
	m.ports = adaptStreamPort{svc: svc}
	return m
}

// MountRoutes is a no-op; the posts module owns the route surface
func (m *Module) MountRoutes(httpkit.Router) {}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }
