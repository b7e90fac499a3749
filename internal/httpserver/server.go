// Package httpserver exposes the JSON API consumed by the blog's views:
// category and post browsing, the post detail with rendered Markdown,
// engagement endpoints, and the minimal admin image panel.
package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/ehsan-mad/blogfront/internal/config"
	"github.com/ehsan-mad/blogfront/internal/data"
	"github.com/ehsan-mad/blogfront/internal/engage"
	"github.com/ehsan-mad/blogfront/internal/fallback"
	"github.com/ehsan-mad/blogfront/internal/images"
	"github.com/ehsan-mad/blogfront/internal/markdown"
)

// Server wires the data services and presentation helpers to HTTP routes.
type Server struct {
	cfg        *config.Config
	categories *data.Categories
	posts      *data.Posts
	tracker    *engage.Tracker
	renderer   *markdown.Renderer
	imageStore *images.Store
	resolver   *images.Resolver
	fb         *fallback.Dataset
	logger     *slog.Logger

	httpServer *http.Server
}

// New creates the server.
func New(cfg *config.Config, categories *data.Categories, posts *data.Posts, tracker *engage.Tracker,
	renderer *markdown.Renderer, imageStore *images.Store, resolver *images.Resolver,
	fb *fallback.Dataset, logger *slog.Logger) *Server {

	s := &Server{
		cfg:        cfg,
		categories: categories,
		posts:      posts,
		tracker:    tracker,
		renderer:   renderer,
		imageStore: imageStore,
		resolver:   resolver,
		fb:         fb,
		logger:     logger,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	s.httpServer = &http.Server{
		Addr:    cfg.Addr,
		Handler: gzhttp.GzipHandler(s.logRequests(mux)),
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/categories/{slug}", s.handleCategory)
	mux.HandleFunc("GET /api/categories/{slug}/posts", s.handleCategoryPosts)

	mux.HandleFunc("GET /api/posts", s.handlePosts)
	mux.HandleFunc("GET /api/posts/{slug}", s.handlePost)
	mux.HandleFunc("GET /api/posts/{slug}/related", s.handleRelated)
	mux.HandleFunc("GET /api/posts/{slug}/likes", s.handleLikes)
	mux.HandleFunc("GET /api/posts/{slug}/liked", s.handleLiked)
	mux.HandleFunc("POST /api/posts/{slug}/like", s.handleToggleLike)

	mux.HandleFunc("GET /api/engagement", s.handleEngagement)

	mux.HandleFunc("POST /api/admin/images", s.handleImageUpload)
	mux.HandleFunc("GET /api/admin/images", s.handleImageList)
	mux.HandleFunc("DELETE /api/admin/images/{name}", s.handleImageDelete)

	mux.HandleFunc("GET /images/{name}", s.handleImageServe)
}

// logRequests is the request-logging middleware.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// Run serves until ctx is canceled, then shuts down gracefully. When a
// fallback dataset file is configured it is watched and hot-reloaded.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.FallbackPath != "" {
		stop := s.watchFallback(s.cfg.FallbackPath)
		defer stop()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		}
	}()

	s.logger.Info("serving", "addr", s.cfg.Addr, "configured", s.cfg.Configured())
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Handler exposes the full middleware-wrapped handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
