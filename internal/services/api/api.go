// Package api provides the HTTP API for the application
package api

import (
	"cinegram/internal/adapters/archive"
	"cinegram/internal/platform/config"
	"cinegram/internal/platform/logger"
	phttp "cinegram/internal/platform/net/http"

	"cinegram/internal/modkit"
	"cinegram/internal/modkit/httpkit"
	"cinegram/internal/modkit/module"
	"cinegram/internal/modkit/swaggerkit"

	metamod "cinegram/internal/services/api/meta/module"
	postsmod "cinegram/internal/services/api/posts/module"
	streamdomain "cinegram/internal/services/api/stream/domain"
	streammod "cinegram/internal/services/api/stream/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Logger         logger.Logger
	Archive        archive.Client
	Docs           *archive.DocumentCache
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Log:     opt.Logger,
		Cfg:     opt.Config,
		Archive: opt.Archive,
		Docs:    opt.Docs,
	}

	// Construct the stream module first and extract its ServicePort; the
	// posts module mounts /posts/stream itself so the whole posts surface
	// lives under one route prefix
	stream := streammod.New(deps)
	streamPort := module.MustPortsOf[streamdomain.ServicePort](stream)

	posts := postsmod.New(deps, modkit.WithPorts(streamPort))

	mods := []module.Module{
		metamod.New(deps),
		stream, // include stream so its port is registered
		posts,  // posts depends on the stream port
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
