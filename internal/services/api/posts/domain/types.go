// Package domain holds the posts value types shared by repo, service, and transport
package domain

import (
	"time"

	"cinegram/internal/core/caption"
)

// Reaction is one emoticon with its aggregate count
type Reaction struct {
	Reaction string `json:"reaction"`
	Count    int    `json:"count"`
}

// Post is a logical content item rebuilt from the raw messages of one group.
// Built fresh on every request; there is no cross-request identity
type Post struct {
	ImageURL          string          `json:"image_url"`
	VideoURL          string          `json:"video_url"`
	GroupedID         *int64          `json:"grouped_id"`
	MessageID         int64           `json:"message_id"`
	Date              string          `json:"date"`
	Author            *string         `json:"author"`
	Reactions         []Reaction      `json:"reactions"`
	OriginalContent   string          `json:"original_content"`
	ParsedContent     caption.Content `json:"parsed_content"`
	DocumentID        *int64          `json:"document_id"`
	DocumentSize      *int64          `json:"document_size"`
	MessageDocumentID *int64          `json:"message_document_id"`
}

// Cursor describes where in the archive stream the page starts and, after a
// call, where the next one should. FirstOffsetID/LastOffsetID are the max and
// min message ids of the returned page; both stay nil for an empty page
type Cursor struct {
	Total         int        `json:"total"`
	Limit         int        `json:"limit"`
	OffsetID      int64      `json:"offset_id"`
	FirstOffsetID *int64     `json:"first_offset_id"`
	LastOffsetID  *int64     `json:"last_offset_id"`
	OffsetDate    *time.Time `json:"offset_date"`
	AddOffset     int        `json:"add_offset"`
	MaxID         int64      `json:"max_id"`
	MinID         int64      `json:"min_id"`
	Search        string     `json:"search,omitempty"`
}

// NewCursor builds a cursor from request parameters with the service defaults
func NewCursor(perPage int, offsetID int64, search string) Cursor {
	if perPage <= 0 {
		perPage = 10
	}
	return Cursor{Limit: perPage, OffsetID: offsetID, Search: search}
}

// Page is one pagination result: posts plus the advanced cursor
type Page struct {
	Data       []Post `json:"data"`
	Pagination Cursor `json:"pagination"`
}
