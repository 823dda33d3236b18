// Package module wires posts into the API using modkit
package module

import (
	"net/http"

	modkit "cinegram/internal/modkit"
	"cinegram/internal/modkit/httpkit"
	str "cinegram/internal/platform/strings"
	postshttp "cinegram/internal/services/api/posts/http"
	postsrepo "cinegram/internal/services/api/posts/repo"
	postssvc "cinegram/internal/services/api/posts/service"
	streamdomain "cinegram/internal/services/api/stream/domain"
)

// Module implements the posts module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc postssvc.Service
}

// New constructs the posts module. The stream port must be injected via
// modkit.WithPorts so the /posts/stream endpoint can be mounted here
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("posts"), modkit.WithPrefix("/posts")}, opts...)...)

	stream, ok := b.Ports.(streamdomain.ServicePort)
	if !ok || stream == nil {
		panic("posts module requires a stream ServicePort via WithPorts")
	}

	repo := postsrepo.NewArchive(deps.Docs)
	svc := postssvc.New(deps.Archive, deps.Archive, repo)

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptPostsPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		postshttp.Register(r, m.svc, stream)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
