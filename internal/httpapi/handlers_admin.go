package httpapi

import (
	"net/http"

	"github.com/and161185/leadgate/internal/convert"
	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
)

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad id")
		return uuid.Nil, false
	}
	return id, true
}

// --- resources ---

func (s *Server) adminListResources(w http.ResponseWriter, r *http.Request) {
	rs, err := s.resources.List(r.Context())
	if err != nil {
		s.writeMappedError(w, r, "admin list resources", err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToAdminResources(rs))
}

func (s *Server) adminGetResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res, err := s.resources.Get(r.Context(), id)
	if err != nil {
		s.writeMappedError(w, r, "admin get resource", err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToAdminResource(*res))
}

func (s *Server) adminCreateResource(w http.ResponseWriter, r *http.Request) {
	var in convert.ResourceInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := s.resources.Create(r.Context(), convert.FromResourceInput(in))
	if err != nil {
		s.writeMappedError(w, r, "admin create resource", err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToAdminResource(*res))
}

func (s *Server) adminUpdateResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in convert.ResourceInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := s.resources.Update(r.Context(), id, convert.FromResourceInput(in))
	if err != nil {
		s.writeMappedError(w, r, "admin update resource", err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToAdminResource(*res))
}

func (s *Server) adminDeleteResource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.resources.Delete(r.Context(), id); err != nil {
		s.writeMappedError(w, r, "admin delete resource", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminPublishResource(published bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := s.resources.SetPublished(r.Context(), id, published); err != nil {
			s.writeMappedError(w, r, "admin publish resource", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) adminListLeads(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	leads, err := s.leads.ListByResource(r.Context(), id)
	if err != nil {
		s.writeMappedError(w, r, "admin list leads", err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToLeads(leads))
}

// --- posts ---

func (s *Server) adminListPosts(w http.ResponseWriter, r *http.Request) {
	ps, err := s.posts.List(r.Context())
	if err != nil {
		s.writeMappedError(w, r, "admin list posts", err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToPostSummaries(ps))
}

func (s *Server) adminCreatePost(w http.ResponseWriter, r *http.Request) {
	var in convert.PostInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := s.posts.Create(r.Context(), convert.FromPostInput(in))
	if err != nil {
		s.writeMappedError(w, r, "admin create post", err)
		return
	}
	writeJSON(w, http.StatusCreated, convert.ToPost(*p))
}

func (s *Server) adminUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in convert.PostInput
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := s.posts.Update(r.Context(), id, convert.FromPostInput(in))
	if err != nil {
		s.writeMappedError(w, r, "admin update post", err)
		return
	}
	writeJSON(w, http.StatusOK, convert.ToPost(*p))
}

func (s *Server) adminDeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.posts.Delete(r.Context(), id); err != nil {
		s.writeMappedError(w, r, "admin delete post", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) adminPublishPost(published bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := s.posts.SetPublished(r.Context(), id, published); err != nil {
			s.writeMappedError(w, r, "admin publish post", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
