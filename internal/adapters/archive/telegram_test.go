package archive

import (
	"testing"

	"github.com/gotd/td/tg"
)

func TestMapMessageBasics(t *testing.T) {
	m := &tg.Message{ID: 42, Date: 1700000000, Message: "hello"}
	m.SetGroupedID(7)
	m.SetPostAuthor("editor")

	got := mapMessage(m)
	if got.ID != 42 || got.GroupedID != 7 || got.Author != "editor" || got.Text != "hello" {
		t.Fatalf("unexpected mapping: %+v", got)
	}
	if got.Date.Unix() != 1700000000 {
		t.Fatalf("date = %v", got.Date)
	}
	if got.Document != nil || got.Photo != nil {
		t.Fatal("expected no media")
	}
}

func TestMapMessageDocument(t *testing.T) {
	m := &tg.Message{ID: 1}
	m.SetMedia(&tg.MessageMediaDocument{
		Document: &tg.Document{
			ID:            99,
			AccessHash:    123,
			FileReference: []byte{1, 2},
			Size:          4096,
			MimeType:      "video/mp4",
		},
	})

	got := mapMessage(m)
	if got.Document == nil {
		t.Fatal("expected document")
	}
	if got.Document.ID != 99 || got.Document.Size != 4096 || got.Document.MimeType != "video/mp4" {
		t.Fatalf("unexpected document: %+v", got.Document)
	}
}

func TestMapMessageReactions(t *testing.T) {
	m := &tg.Message{ID: 1}
	m.SetReactions(tg.MessageReactions{
		Results: []tg.ReactionCount{
			{Reaction: &tg.ReactionEmoji{Emoticon: "👍"}, Count: 3},
			{Reaction: &tg.ReactionEmoji{Emoticon: "🔥"}, Count: 1},
		},
	})

	got := mapMessage(m)
	if len(got.Reactions) != 2 {
		t.Fatalf("reactions = %+v", got.Reactions)
	}
	if got.Reactions[0].Emoticon != "👍" || got.Reactions[0].Count != 3 {
		t.Fatalf("first reaction = %+v", got.Reactions[0])
	}
}

func TestMapMessagesClassSkipsNonMessages(t *testing.T) {
	res := &tg.MessagesChannelMessages{
		Messages: []tg.MessageClass{
			&tg.Message{ID: 10},
			&tg.MessageService{ID: 11},
			&tg.Message{ID: 12},
		},
	}
	got := mapMessagesClass(res)
	if len(got) != 2 || got[0].ID != 10 || got[1].ID != 12 {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestLargestThumb(t *testing.T) {
	sizes := []tg.PhotoSizeClass{
		&tg.PhotoSize{Type: "s", W: 90, H: 90},
		&tg.PhotoSize{Type: "y", W: 800, H: 600},
		&tg.PhotoSize{Type: "m", W: 320, H: 240},
	}
	if got := largestThumb(sizes); got != "y" {
		t.Fatalf("largestThumb = %q, want y", got)
	}
	if got := largestThumb(nil); got != "" {
		t.Fatalf("largestThumb(nil) = %q", got)
	}
}
