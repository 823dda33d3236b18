// Package repokit provides common types and helpers for repository implementations
package repokit

import (
	"cinegram/internal/adapters/archive"
)

// Queryer is the minimal read surface repos bind to: the archive history fetcher
type Queryer = archive.Fetcher

// Downloader re-exports the archive byte surface for repos that serve media
type Downloader = archive.Downloader

type (
	// Message is a raw archive message row
	Message = archive.Message

	// Document is the media routing metadata attached to a message
	Document = archive.Document

	// HistoryQuery windows a history fetch
	HistoryQuery = archive.HistoryQuery
)
