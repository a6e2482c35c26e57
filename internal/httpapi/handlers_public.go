package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/and161185/leadgate/internal/convert"
	"github.com/and161185/leadgate/internal/errs"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	msgInvalidLink   = "Invalid or expired download link"
	msgConfirmFailed = "Failed to confirm download"
)

type confirmRequest struct {
	Token string `json:"token"`
}

type confirmResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// confirmDownload answers 200 once the fan-out ran, 401 text/plain for a bad
// token and 500 for anything else, including an unreadable body.
func (s *Server) confirmDownload(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.log.Warn("confirm: decode body",
			zap.String("request_id", RequestIDFromCtx(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, confirmResponse{Error: msgConfirmFailed})
		return
	}

	_, err := s.confirm.Confirm(r.Context(), req.Token)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, confirmResponse{Success: true})
	case errors.Is(err, errs.ErrInvalidToken):
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(msgInvalidLink))
	default:
		s.log.Error("confirm",
			zap.String("request_id", RequestIDFromCtx(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, confirmResponse{Error: msgConfirmFailed})
	}
}

func (s *Server) listResources(w http.ResponseWriter, r *http.Request) {
	rs, err := s.resources.ListPublished(r.Context())
	if err != nil {
		s.writeMappedError(w, r, "list resources", err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToResources(rs))
}

func (s *Server) getResource(w http.ResponseWriter, r *http.Request) {
	res, err := s.resources.GetPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeMappedError(w, r, "get resource", err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToResource(*res))
}

func (s *Server) requestDownload(w http.ResponseWriter, r *http.Request) {
	var req convert.DownloadRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ticket, err := s.leads.RequestDownload(r.Context(), chi.URLParam(r, "slug"),
		convert.FromDownloadRequest(req), clientIP(r, s.trustProxy))
	if err != nil {
		s.writeMappedError(w, r, "request download", err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToTicket(ticket))
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	ps, err := s.posts.ListPublished(r.Context(), limit, offset)
	if err != nil {
		s.writeMappedError(w, r, "list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToPostSummaries(ps))
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	p, err := s.posts.GetPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeMappedError(w, r, "get post", err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToPost(*p))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req convert.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tokens, _, err := s.auth.LoginWithIP(r.Context(), req.Username, req.Password, clientIP(r, s.trustProxy))
	if err != nil {
		s.writeMappedError(w, r, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToTokens(tokens))
}
