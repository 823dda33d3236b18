package archive

import (
	"context"
	"sort"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"

	perr "cinegram/internal/platform/errors"
	"cinegram/internal/platform/logger"
)

// wire window constraints for upload.getFile
const (
	wireAlign    = 4096
	wireMaxLimit = 512 * 1024
)

// Config carries everything needed to dial the archive
type Config struct {
	APIID       int
	APIHash     string
	BotToken    string
	SessionPath string
	ChannelID   int64
	ChannelHash int64
}

// Telegram is the gotd-backed Client implementation
type Telegram struct {
	client *telegram.Client
	api    *tg.Client
	peer   *tg.InputPeerChannel
	cancel context.CancelFunc
	done   chan struct{}
}

// Dial connects, authorizes if needed, and returns a ready client.
// The connection loop runs in the background until Close
func Dial(ctx context.Context, cfg Config) (*Telegram, error) {
	client := telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: cfg.SessionPath},
	})

	runCtx, cancel := context.WithCancel(context.Background())
	t := &Telegram{
		client: client,
		api:    client.API(),
		peer:   &tg.InputPeerChannel{ChannelID: cfg.ChannelID, AccessHash: cfg.ChannelHash},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	ready := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		defer close(t.done)
		err := client.Run(runCtx, func(ctx context.Context) error {
			status, err := client.Auth().Status(ctx)
			if err != nil {
				return err
			}
			if !status.Authorized {
				if cfg.BotToken == "" {
					return perr.Unavailablef("archive session not authorized and no bot token configured")
				}
				if _, err := client.Auth().Bot(ctx, cfg.BotToken); err != nil {
					return err
				}
			}
			close(ready)
			<-ctx.Done()
			return ctx.Err()
		})
		if err != nil && runCtx.Err() == nil {
			logger.Named("archive").Error().Err(err).Msg("connection loop ended")
		}
		errc <- err
	}()

	select {
	case <-ready:
		return t, nil
	case err := <-errc:
		cancel()
		return nil, perr.WrapUpstream(err, "archive dial failed")
	case <-ctx.Done():
		cancel()
		return nil, perr.WrapUpstream(ctx.Err(), "archive dial canceled")
	}
}

// Ping checks the connection with a cheap round trip
func (t *Telegram) Ping(ctx context.Context) error {
	if _, err := t.api.HelpGetNearestDC(ctx); err != nil {
		return perr.WrapUpstream(err, "archive ping failed")
	}
	return nil
}

// Close stops the background connection loop
func (t *Telegram) Close() error {
	t.cancel()
	<-t.done
	return nil
}

// History implements Fetcher over messages.getHistory
func (t *Telegram) History(ctx context.Context, q HistoryQuery) ([]Message, error) {
	req := &tg.MessagesGetHistoryRequest{
		Peer:      t.peer,
		OffsetID:  int(q.OffsetID),
		AddOffset: q.AddOffset,
		Limit:     q.Limit,
		MaxID:     int(q.MaxID),
		MinID:     int(q.MinID),
	}
	if !q.OffsetDate.IsZero() {
		req.OffsetDate = int(q.OffsetDate.Unix())
	}
	res, err := t.api.MessagesGetHistory(ctx, req)
	if err != nil {
		return nil, perr.WrapUpstream(err, "history fetch failed")
	}
	return mapMessagesClass(res), nil
}

// MessagesByID implements Fetcher over channels.getMessages
func (t *Telegram) MessagesByID(ctx context.Context, ids []int64) ([]Message, error) {
	req := &tg.ChannelsGetMessagesRequest{
		Channel: &tg.InputChannel{ChannelID: t.peer.ChannelID, AccessHash: t.peer.AccessHash},
	}
	for _, id := range ids {
		req.ID = append(req.ID, &tg.InputMessageID{ID: int(id)})
	}
	res, err := t.api.ChannelsGetMessages(ctx, req)
	if err != nil {
		return nil, perr.WrapUpstream(err, "message fetch failed")
	}
	return mapMessagesClass(res), nil
}

// DownloadChunk returns exactly [offset, offset+length) of doc.
// upload.getFile requires 4 KiB aligned windows, so the request window is
// aligned down and the response trimmed to the caller's bounds
func (t *Telegram) DownloadChunk(ctx context.Context, doc Document, offset, length int64) ([]byte, error) {
	loc := &tg.InputDocumentFileLocation{
		ID:            doc.ID,
		AccessHash:    doc.AccessHash,
		FileReference: doc.FileReference,
	}

	alignedOff := offset - offset%wireAlign
	skip := offset - alignedOff
	out := make([]byte, 0, length)
	need := skip + length

	for need > 0 {
		limit := need
		if rem := limit % wireAlign; rem != 0 {
			limit += wireAlign - rem
		}
		if limit > wireMaxLimit {
			limit = wireMaxLimit
		}
		res, err := t.api.UploadGetFile(ctx, &tg.UploadGetFileRequest{
			Location: loc,
			Offset:   alignedOff,
			Limit:    int(limit),
		})
		if err != nil {
			return nil, perr.WrapUpstream(err, "chunk download failed")
		}
		file, ok := res.(*tg.UploadFile)
		if !ok {
			return nil, perr.Upstreamf("unexpected download response %T", res)
		}
		if len(file.Bytes) == 0 {
			break // end of file
		}
		got := file.Bytes
		if skip > 0 {
			if skip >= int64(len(got)) {
				return nil, perr.Upstreamf("download window skipped past data")
			}
			got = got[skip:]
			need -= skip
			skip = 0
		}
		if int64(len(got)) > need {
			got = got[:need]
		}
		out = append(out, got...)
		need -= int64(len(got))
		alignedOff += int64(len(file.Bytes))
	}
	return out, nil
}

// DownloadWhole fetches a full photo body via the gotd downloader
func (t *Telegram) DownloadWhole(ctx context.Context, p Photo) ([]byte, error) {
	loc := &tg.InputPhotoFileLocation{
		ID:            p.ID,
		AccessHash:    p.AccessHash,
		FileReference: p.FileReference,
		ThumbSize:     p.ThumbType,
	}
	var buf writerBuf
	if _, err := downloader.NewDownloader().Download(t.api, loc).Stream(ctx, &buf); err != nil {
		return nil, perr.WrapUpstream(err, "photo download failed")
	}
	return buf.b, nil
}

type writerBuf struct{ b []byte }

func (w *writerBuf) Write(p []byte) (int, error) {
	w.b = append(w.b, p...)
	return len(p), nil
}

// mapping from tg wire types to port values

func mapMessagesClass(res tg.MessagesMessagesClass) []Message {
	var raw []tg.MessageClass
	switch v := res.(type) {
	case *tg.MessagesChannelMessages:
		raw = v.Messages
	case *tg.MessagesMessages:
		raw = v.Messages
	case *tg.MessagesMessagesSlice:
		raw = v.Messages
	default:
		return nil
	}
	out := make([]Message, 0, len(raw))
	for _, mc := range raw {
		m, ok := mc.(*tg.Message)
		if !ok {
			continue // service messages, holes
		}
		out = append(out, mapMessage(m))
	}
	return out
}

func mapMessage(m *tg.Message) Message {
	msg := Message{
		ID:   int64(m.ID),
		Date: time.Unix(int64(m.Date), 0).UTC(),
		Text: m.Message,
	}
	if gid, ok := m.GetGroupedID(); ok {
		msg.GroupedID = gid
	}
	if author, ok := m.GetPostAuthor(); ok {
		msg.Author = author
	}
	if reactions, ok := m.GetReactions(); ok {
		for _, rc := range reactions.Results {
			if emoji, ok := rc.Reaction.(*tg.ReactionEmoji); ok {
				msg.Reactions = append(msg.Reactions, Reaction{Emoticon: emoji.Emoticon, Count: rc.Count})
			}
		}
	}
	if media, ok := m.GetMedia(); ok {
		switch mm := media.(type) {
		case *tg.MessageMediaDocument:
			if doc, ok := mm.Document.(*tg.Document); ok {
				msg.Document = &Document{
					ID:            doc.ID,
					AccessHash:    doc.AccessHash,
					FileReference: doc.FileReference,
					Size:          doc.Size,
					MimeType:      doc.MimeType,
				}
			}
		case *tg.MessageMediaPhoto:
			if ph, ok := mm.Photo.(*tg.Photo); ok {
				msg.Photo = &Photo{
					ID:            ph.ID,
					AccessHash:    ph.AccessHash,
					FileReference: ph.FileReference,
					ThumbType:     largestThumb(ph.Sizes),
				}
			}
		}
	}
	return msg
}

// largestThumb picks the biggest available size type for photo download
func largestThumb(sizes []tg.PhotoSizeClass) string {
	type cand struct {
		typ  string
		area int
	}
	var cands []cand
	for _, s := range sizes {
		switch v := s.(type) {
		case *tg.PhotoSize:
			cands = append(cands, cand{v.Type, v.W * v.H})
		case *tg.PhotoSizeProgressive:
			cands = append(cands, cand{v.Type, v.W * v.H})
		}
	}
	if len(cands) == 0 {
		return ""
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].area > cands[j].area })
	return cands[0].typ
}
