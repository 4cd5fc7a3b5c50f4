package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"math"
	"mime"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reactiveshots/portfolio/pkg/buildinfo"
	"github.com/reactiveshots/portfolio/pkg/cache"
	"github.com/reactiveshots/portfolio/pkg/catalog"
	"github.com/reactiveshots/portfolio/pkg/errors"
	"github.com/reactiveshots/portfolio/pkg/mailer"
)

// maxContactBody bounds a contact submission.
const maxContactBody = 64 << 10

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidCategory,
		errors.ErrCodeInvalidWidth, errors.ErrCodeInvalidInquiry:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeAlbumNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeNetwork, errors.ErrCodeUpstream, errors.ErrCodeInvalidAlbum:
		return http.StatusBadGateway
	}
	switch {
	case stderrors.Is(err, cache.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, cache.ErrNetwork):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func codeFor(err error, status int) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	switch status {
	case http.StatusNotFound:
		return errors.ErrCodeAlbumNotFound
	case http.StatusBadGateway:
		return errors.ErrCodeUpstream
	}
	return errors.ErrCodeInternal
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := errors.UserMessage(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", RequestIDFrom(r.Context()))
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	writeJSON(w, status, errorBody{
		Error:     errorDetail{Code: codeFor(err, status), Message: msg},
		RequestID: RequestIDFrom(r.Context()),
	})
}

func categoryParam(r *http.Request) (catalog.Category, error) {
	slug := chi.URLParam(r, "category")
	if err := errors.ValidateSlug(slug); err != nil {
		return catalog.Category{}, err
	}
	c, ok := catalog.Lookup(slug)
	if !ok {
		return catalog.Category{}, errors.New(errors.ErrCodeInvalidCategory, "unknown category: %q", slug)
	}
	return c, nil
}

func (s *Server) handleAlbum(w http.ResponseWriter, r *http.Request) {
	c, err := categoryParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	album, err := s.opts.Albums.Album(r.Context(), c.Slug, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, album)
}

// parseWidth reads the width query parameter and floors it to whole pixels
// before validating. A missing value, or one below a pixel, is the
// "container not measured yet" case.
func parseWidth(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("width")
	if raw == "" {
		return 0, errors.New(errors.ErrCodeInvalidWidth, "layout not ready: width is required")
	}
	w, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidWidth, "invalid width: %q", raw)
	}
	w = math.Floor(w)
	if err := errors.ValidateWidth(w); err != nil {
		return 0, err
	}
	return w, nil
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	c, err := categoryParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	width, err := parseWidth(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.opts.Layouts.Layout(r.Context(), c.Slug, width, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Featured.Snapshot())
}

type contactResponse struct {
	ID     string    `json:"id"`
	Status string    `json:"status"`
	SentAt time.Time `json:"sent_at"`
}

// readInquiry accepts either a JSON body or form fields.
func readInquiry(w http.ResponseWriter, r *http.Request) (mailer.Inquiry, error) {
	var q mailer.Inquiry
	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil && err != io.EOF {
			return q, errors.Wrap(errors.ErrCodeInvalidInquiry, err, "invalid JSON body")
		}
		return q, nil
	}
	if err := r.ParseForm(); err != nil {
		return q, errors.Wrap(errors.ErrCodeInvalidInquiry, err, "invalid form body")
	}
	q.Name = r.PostForm.Get("name")
	q.Email = r.PostForm.Get("email")
	q.Subject = r.PostForm.Get("subject")
	q.Message = r.PostForm.Get("message")
	return q, nil
}

// clientKey identifies the submitter for rate limiting. RealIP has already
// rewritten RemoteAddr from proxy headers.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// submit validates, rate limits and relays an inquiry.
func (s *Server) submit(r *http.Request, q mailer.Inquiry) (mailer.Receipt, error) {
	if err := q.Validate(); err != nil {
		return mailer.Receipt{}, err
	}
	if ok, wait := s.opts.Limiter.Allow(clientKey(r)); !ok {
		secs := int(math.Ceil(wait.Seconds()))
		return mailer.Receipt{}, errors.Wrap(errors.ErrCodeRateLimited,
			&errors.RateLimitedError{RetryAfter: secs},
			"too many messages, try again in %d seconds", secs)
	}
	receipt, err := s.opts.Mailer.Send(r.Context(), q)
	if err != nil {
		return mailer.Receipt{}, err
	}
	s.logger.Info("inquiry sent", "id", receipt.ID, "request_id", RequestIDFrom(r.Context()))
	return receipt, nil
}

func retryAfter(w http.ResponseWriter, err error) {
	var rl *errors.RateLimitedError
	if stderrors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	q, err := readInquiry(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	receipt, err := s.submit(r, q)
	if err != nil {
		retryAfter(w, err)
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, contactResponse{ID: receipt.ID, Status: "sent", SentAt: receipt.SentAt})
}

type healthResponse struct {
	Status  string     `json:"status"`
	Version string     `json:"version"`
	Stats   *HookStats `json:"stats,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Version: buildinfo.Version}
	if s.opts.Hooks != nil {
		stats := s.opts.Hooks.Stats()
		resp.Stats = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}
