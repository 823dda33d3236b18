// Package archive defines the message-archive collaborator port and its
// value types. The production implementation speaks MTProto via gotd;
// tests substitute in-package fakes behind the same interfaces.
package archive

import (
	"context"
	"time"

	"cinegram/internal/platform/cache"
)

// Reaction is one emoticon with its aggregate count, kept in archive order
type Reaction struct {
	Emoticon string `json:"emoticon"`
	Count    int    `json:"count"`
}

// Document references a remote media attachment for chunked download.
// AccessHash and FileReference are storage-routing metadata required by
// the archive protocol; callers treat them as opaque.
type Document struct {
	ID            int64
	AccessHash    int64
	FileReference []byte
	Size          int64
	MimeType      string
}

// Photo references a remote image for whole-body download
type Photo struct {
	ID            int64
	AccessHash    int64
	FileReference []byte
	ThumbType     string
}

// Message is a raw archive message. Optional parts are nil/zero when absent
type Message struct {
	ID        int64
	GroupedID int64 // 0 for standalone messages
	Date      time.Time
	Author    string
	Text      string
	Reactions []Reaction
	Document  *Document
	Photo     *Photo
}

// HistoryQuery windows a newest-first history fetch
type HistoryQuery struct {
	Limit      int
	OffsetID   int64
	OffsetDate time.Time
	AddOffset  int
	MaxID      int64
	MinID      int64
}

// Fetcher is the read surface over the channel history
type Fetcher interface {
	// History returns up to Limit messages strictly newest-first
	History(ctx context.Context, q HistoryQuery) ([]Message, error)
	// MessagesByID resolves specific messages; missing ids are simply absent
	MessagesByID(ctx context.Context, ids []int64) ([]Message, error)
}

// Downloader is the byte surface for media
type Downloader interface {
	// DownloadChunk returns exactly the bytes [offset, offset+length) of doc,
	// shorter only at end of file
	DownloadChunk(ctx context.Context, doc Document, offset, length int64) ([]byte, error)
	// DownloadWhole fetches a full photo body
	DownloadWhole(ctx context.Context, p Photo) ([]byte, error)
}

// Client is the full collaborator surface owned by main
type Client interface {
	Fetcher
	Downloader
	Ping(ctx context.Context) error
	Close() error
}

// DocumentCache maps document ids to routing metadata between the pagination
// pass that discovers documents and the stream requests that consume them
type DocumentCache = cache.Bounded[int64, Document]

// NewDocumentCache builds the process-wide document cache
func NewDocumentCache(maxSize int, ttl time.Duration) *DocumentCache {
	return cache.New[int64, Document](maxSize, ttl)
}
