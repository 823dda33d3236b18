// Package service contains the media streaming workflow
package service

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"cinegram/internal/adapters/archive"
	"cinegram/internal/modkit/repokit"
	perr "cinegram/internal/platform/errors"
	"cinegram/internal/platform/logger"
	"cinegram/internal/services/api/stream/domain"
)

// chunkSize is the body chunk granularity. Large enough to keep the archive
// round-trip count low, small enough that cancellation lands quickly
const chunkSize = 1 << 20

// Service defines the stream service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the stream service
type Svc struct {
	q    repokit.Queryer
	dl   repokit.Downloader
	docs *archive.DocumentCache
}

// New constructs a stream service
func New(q repokit.Queryer, dl repokit.Downloader, docs *archive.DocumentCache) *Svc {
	if q == nil {
		panic("stream.Service requires a non nil Queryer")
	}
	if dl == nil {
		panic("stream.Service requires a non nil Downloader")
	}
	if docs == nil {
		panic("stream.Service requires a non nil document cache")
	}
	return &Svc{q: q, dl: dl, docs: docs}
}

// Stream resolves the document behind in and starts the chunk producer
func (s *Svc) Stream(ctx context.Context, in domain.Input) (domain.Lease, error) {
	if err := validate(in); err != nil {
		return domain.Lease{}, err
	}

	doc, err := s.resolve(ctx, in)
	if err != nil {
		return domain.Lease{}, err
	}

	size := in.Size
	if size <= 0 {
		size = doc.Size
	}

	streamID := uuid.NewString()
	log := logger.C(ctx).With().
		Str("stream_id", streamID).
		Int64("document_id", doc.ID).
		Int64("start", in.Start).
		Int64("end", in.End).
		Logger()
	log.Debug().Msg("stream: opening")

	out := make(chan []byte)
	var streamErr atomic.Pointer[error]

	go func() {
		defer close(out)
		for off := in.Start; off <= in.End; off += chunkSize {
			if ctx.Err() != nil {
				log.Debug().Int64("offset", off).Msg("stream: cancelled")
				return
			}
			n := int64(chunkSize)
			if rem := in.End - off + 1; rem < n {
				n = rem
			}
			b, err := s.dl.DownloadChunk(ctx, doc, off, n)
			if err != nil {
				e := perr.WrapUpstream(err, "chunk download failed")
				streamErr.Store(&e)
				log.Error().Err(err).Int64("offset", off).Msg("stream: chunk download failed")
				return
			}
			select {
			case out <- b:
			case <-ctx.Done():
				log.Debug().Int64("offset", off).Msg("stream: cancelled")
				return
			}
		}
		log.Debug().Msg("stream: complete")
	}()

	return domain.Lease{
		Size:     size,
		Start:    in.Start,
		End:      in.End,
		MimeType: doc.MimeType,
		Chunks:   out,
		Err: func() error {
			if p := streamErr.Load(); p != nil {
				return *p
			}
			return nil
		},
	}, nil
}

// resolve looks the document up in the cache, falling back to a fresh
// message fetch when the entry has aged out, and re-registers what it finds
func (s *Svc) resolve(ctx context.Context, in domain.Input) (archive.Document, error) {
	if doc, ok := s.docs.Get(in.DocumentID); ok {
		return doc, nil
	}

	msgs, err := s.q.MessagesByID(ctx, []int64{in.MessageID})
	if err != nil {
		return archive.Document{}, perr.WrapUpstream(err, "document re-resolve failed")
	}
	for _, m := range msgs {
		if m.Document != nil && m.Document.ID == in.DocumentID {
			s.docs.Set(m.Document.ID, *m.Document)
			return *m.Document, nil
		}
	}
	return archive.Document{}, perr.Upstreamf("document %d not recoverable from message %d", in.DocumentID, in.MessageID)
}

func validate(in domain.Input) error {
	switch {
	case in.DocumentID <= 0:
		return perr.Validationf("document_id is required")
	case in.Start < 0 || in.End < in.Start:
		return perr.Validationf("invalid byte range %d-%d", in.Start, in.End)
	case in.Size > 0 && in.End >= in.Size:
		return perr.Validationf("range end %d past document size %d", in.End, in.Size)
	}
	return nil
}
