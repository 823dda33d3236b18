// @title         cinegram API
// @version       0.1.0
// @description   Read only endpoints for channel posts, search, and media streaming

package main

import (
	"context"
	"time"

	"cinegram/internal/adapters/archive"
	"cinegram/internal/platform/config"
	"cinegram/internal/platform/logger"
	phttp "cinegram/internal/platform/net/http"

	"cinegram/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	arcCfg := root.Prefix("ARCHIVE_") // archive credentials live under ARCHIVE_*
	cacheCfg := root.Prefix("CACHE_")

	// bring up logging early
	l := logger.Get()

	// dial the archive; blocks until the session is authorized
	arc, err := archive.Dial(context.Background(), archive.Config{
		APIID:       int(arcCfg.MustInt64("API_ID")),
		APIHash:     arcCfg.MustString("API_HASH"),
		BotToken:    arcCfg.MayString("BOT_TOKEN", ""),
		SessionPath: arcCfg.MayString("SESSION_PATH", "cinegram.session"),
		ChannelID:   arcCfg.MustInt64("CHANNEL_ID"),
		ChannelHash: arcCfg.MustInt64("CHANNEL_HASH"),
	})
	if err != nil {
		l.Panic().Err(err).Msg("archive.Dial failed")
	}
	defer func() {
		if err := arc.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close archive client")
		}
	}()

	// document routing cache shared by pagination and streaming
	docs := archive.NewDocumentCache(
		cacheCfg.MayInt("MAX_SIZE", 1024),
		cacheCfg.MayDuration("TTL", 36*time.Hour),
	)

	// http server (reads CORE_API_PORT / CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         apiCfg,
			Logger:         *l,
			Archive:        arc,
			Docs:           docs,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", true),
		},
	)

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
