// Package httpapi exposes the public site API and the admin API over HTTP.
package httpapi

import (
	"context"
	"net/http"

	"github.com/and161185/leadgate/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles the services the handlers call.
type Deps struct {
	Auth      service.AuthService
	Resources service.ResourceService
	Posts     service.PostService
	Leads     service.LeadService
	Confirm   service.ConfirmService
	// Ready is pinged by /readyz; nil means always ready.
	Ready Pinger
	// TrustProxy makes rate limits key on X-Forwarded-For.
	TrustProxy bool
}

// Server holds HTTP handlers.
type Server struct {
	auth       service.AuthService
	resources  service.ResourceService
	posts      service.PostService
	leads      service.LeadService
	confirm    service.ConfirmService
	ready      Pinger
	trustProxy bool
	log        *zap.Logger
}

// New constructs the HTTP server handlers.
func New(d Deps, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		auth:       d.Auth,
		resources:  d.Resources,
		posts:      d.Posts,
		leads:      d.Leads,
		confirm:    d.Confirm,
		ready:      d.Ready,
		trustProxy: d.TrustProxy,
		log:        log,
	}
}

// Routes registers all routes and the middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging(s.log))
	r.Use(Recover(s.log))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/downloads/confirm", s.confirmDownload)

		r.Get("/resources", s.listResources)
		r.Get("/resources/{slug}", s.getResource)
		r.Post("/resources/{slug}/request", s.requestDownload)

		r.Get("/posts", s.listPosts)
		r.Get("/posts/{slug}", s.getPost)

		r.Post("/admin/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Get("/admin/resources", s.adminListResources)
			r.Post("/admin/resources", s.adminCreateResource)
			r.Get("/admin/resources/{id}", s.adminGetResource)
			r.Put("/admin/resources/{id}", s.adminUpdateResource)
			r.Delete("/admin/resources/{id}", s.adminDeleteResource)
			r.Post("/admin/resources/{id}/publish", s.adminPublishResource(true))
			r.Post("/admin/resources/{id}/unpublish", s.adminPublishResource(false))
			r.Get("/admin/resources/{id}/leads", s.adminListLeads)

			r.Get("/admin/posts", s.adminListPosts)
			r.Post("/admin/posts", s.adminCreatePost)
			r.Put("/admin/posts/{id}", s.adminUpdatePost)
			r.Delete("/admin/posts/{id}", s.adminDeletePost)
			r.Post("/admin/posts/{id}/publish", s.adminPublishPost(true))
			r.Post("/admin/posts/{id}/unpublish", s.adminPublishPost(false))
		})
	})

	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready.Ping(r.Context()); err != nil {
			s.log.Warn("readyz", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
