// Package http provides http transport for posts
package http

import (
	"fmt"
	stdhttp "net/http"
	"strconv"

	"cinegram/internal/modkit/httpkit"
	perr "cinegram/internal/platform/errors"
	phttp "cinegram/internal/platform/net/http"
	"cinegram/internal/platform/net/http/bind"
	"cinegram/internal/services/api/posts/domain"
	svc "cinegram/internal/services/api/posts/service"
	streamdomain "cinegram/internal/services/api/stream/domain"
)

// Register mounts posts endpoints on the given router
func Register(r httpkit.Router, s svc.Service, stream streamdomain.ServicePort) {
	h := &handlers{svc: s, stream: stream}

	// newest-first post pages
	httpkit.Get(r, "/", h.paginate)

	// post pages filtered by a search term
	httpkit.Get(r, "/search", h.search)

	// byte-range media streaming; static segment, so it never collides
	// with the message id wildcard below
	httpkit.GetRaw(r, "/stream", h.streamMedia)

	// poster image bytes
	httpkit.GetRaw(r, "/images/{message_id}", h.image)

	// one post by its info message id
	httpkit.Get(r, "/{message_id}", h.get)
}

type handlers struct {
	svc    svc.Service
	stream streamdomain.ServicePort
}

// swagger:route GET /posts Posts postsPaginate
// @Summary Paginate channel posts newest first
// @Tags Posts
// @Produce json
// @Param per_page query int false "posts per page" default(10)
// @Param offset_id query int false "message id to continue after"
// @Param search query string false "optional search term"
// @Success 200 {object} domain.Page "ok"
// @Router /posts [get]
func (h *handlers) paginate(r *stdhttp.Request) (any, error) {
	cur, err := cursorFromQuery(r, false)
	if err != nil {
		return nil, err
	}
	// a search term on the list endpoint behaves like /search
	fetch := h.svc.Paginate
	if cur.Search != "" {
		fetch = h.svc.Search
	}
	page, err := fetch(r.Context(), cur)
	if err != nil {
		return nil, err
	}
	decorate(r, page.Data)
	return page, nil
}

// swagger:route GET /posts/search Posts postsSearch
// @Summary Search posts by title, tag, or caption text
// @Tags Posts
// @Produce json
// @Param search query string true "search term"
// @Param per_page query int false "posts per page" default(10)
// @Param offset_id query int false "message id to continue after"
// @Success 200 {object} domain.Page "ok"
// @Router /posts/search [get]
func (h *handlers) search(r *stdhttp.Request) (any, error) {
	cur, err := cursorFromQuery(r, true)
	if err != nil {
		return nil, err
	}
	page, err := h.svc.Search(r.Context(), cur)
	if err != nil {
		return nil, err
	}
	decorate(r, page.Data)
	return page, nil
}

// swagger:route GET /posts/{message_id} Posts postsGet
// @Summary Get one post by message id
// @Tags Posts
// @Produce json
// @Param message_id path int true "info message id"
// @Success 200 {object} domain.Post "ok"
// @Router /posts/{message_id} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	id, err := pathMessageID(r)
	if err != nil {
		return nil, err
	}
	post, err := h.svc.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	posts := []domain.Post{post}
	decorate(r, posts)
	return posts[0], nil
}

// swagger:route GET /posts/images/{message_id} Posts postsImage
// @Summary Poster image bytes for a post
// @Tags Posts
// @Produce jpeg
// @Param message_id path int true "info message id"
// @Success 200 {file} binary "ok"
// @Router /posts/images/{message_id} [get]
func (h *handlers) image(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	id, err := pathMessageID(r)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	body, err := h.svc.Image(r.Context(), id)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	phttp.Raw(w, stdhttp.StatusOK, "image/jpeg", body)
}

// swagger:route GET /posts/stream Posts postsStream
// @Summary Stream media bytes honoring the Range header
// @Tags Posts
// @Produce octet-stream
// @Param document_id query int true "document id"
// @Param size query int true "document size in bytes"
// @Param message_id query int true "media message id for cache recovery"
// @Success 206 {file} binary "partial content"
// @Router /posts/stream [get]
func (h *handlers) streamMedia(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	docID, err := httpkit.QueryInt64(r, "document_id", 0)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	size, err := httpkit.QueryInt64(r, "size", 0)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	msgID, err := httpkit.QueryInt64(r, "message_id", 0)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}
	if size <= 0 {
		phttp.RespondError(w, r, perr.Validationf("size is required"))
		return
	}

	spec, err := phttp.ParseRange(r.Header.Get("Range"), size)
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	lease, err := h.stream.Stream(r.Context(), streamdomain.Input{
		DocumentID: docID,
		MessageID:  msgID,
		Size:       size,
		Start:      spec.Start,
		End:        spec.End,
	})
	if err != nil {
		phttp.RespondError(w, r, err)
		return
	}

	spec.Size = lease.Size
	spec.Type = lease.MimeType
	phttp.StreamRange(w, spec, lease.Chunks)
}

// listQuery carries the pagination query params through struct validation
type listQuery struct {
	PerPage  int    `json:"per_page"  validate:"min=1,max=100"`
	OffsetID int64  `json:"offset_id" validate:"min=0"`
	Search   string `json:"search"`
}

// cursorFromQuery builds the pagination cursor from query params
func cursorFromQuery(r *stdhttp.Request, needSearch bool) (domain.Cursor, error) {
	var q listQuery

	var err error
	if q.PerPage, err = httpkit.QueryInt(r, "per_page", 10); err != nil {
		return domain.Cursor{}, err
	}
	if q.OffsetID, err = httpkit.QueryInt64(r, "offset_id", 0); err != nil {
		return domain.Cursor{}, err
	}
	q.Search = httpkit.QueryString(r, "search", "")

	if err := bind.Struct(q); err != nil {
		return domain.Cursor{}, err
	}
	if needSearch && q.Search == "" {
		return domain.Cursor{}, perr.WithField(perr.Validationf("search term is required"), "search")
	}
	return domain.NewCursor(q.PerPage, q.OffsetID, q.Search), nil
}

// pathMessageID parses the message_id route param
func pathMessageID(r *stdhttp.Request) (int64, error) {
	raw := httpkit.Param(r, "message_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, perr.WithField(perr.Validationf("message_id must be a positive integer"), "message_id")
	}
	return id, nil
}

// decorate fills the request-relative media links on each post. Posts carry
// no stored urls; both links are derived from where the API is being served
func decorate(r *stdhttp.Request, posts []domain.Post) {
	base := baseURL(r)
	for i := range posts {
		p := &posts[i]
		p.ImageURL = fmt.Sprintf("%s/api/v1/posts/images/%d", base, p.MessageID)
		if p.DocumentID != nil && p.DocumentSize != nil && p.MessageDocumentID != nil {
			p.VideoURL = fmt.Sprintf("%s/api/v1/posts/stream?document_id=%d&size=%d&message_id=%d",
				base, *p.DocumentID, *p.DocumentSize, *p.MessageDocumentID)
		}
	}
}

func baseURL(r *stdhttp.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fp := r.Header.Get("X-Forwarded-Proto"); fp != "" {
		scheme = fp
	}
	return scheme + "://" + r.Host
}
