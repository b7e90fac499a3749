// Package data implements the data-access services. Every operation follows
// one policy: consult the configuration gate, serve the static fallback
// dataset when the gate is closed, otherwise issue the remote query through
// the memoization cache and degrade to the fallback dataset on any remote
// error. Reads never return an error to the caller.
package data

import (
	"context"
	"log/slog"

	"github.com/ehsan-mad/blogfront/internal/blog"
	"github.com/ehsan-mad/blogfront/internal/config"
	"github.com/ehsan-mad/blogfront/internal/fallback"
	"github.com/ehsan-mad/blogfront/internal/memocache"
	"github.com/ehsan-mad/blogfront/internal/remote"
)

// Categories serves category reads.
type Categories struct {
	cfg    *config.Config
	remote *remote.Client
	cache  *memocache.Cache
	fb     *fallback.Dataset
	logger *slog.Logger
}

// NewCategories creates the category service.
func NewCategories(cfg *config.Config, rc *remote.Client, cache *memocache.Cache, fb *fallback.Dataset, logger *slog.Logger) *Categories {
	return &Categories{cfg: cfg, remote: rc, cache: cache, fb: fb, logger: logger}
}

// All returns every category ordered by display name ascending.
func (s *Categories) All(ctx context.Context) []blog.Category {
	if !s.cfg.Configured() {
		s.logger.Warn("remote store not configured, serving fallback data", "op", "categories.all")
		return s.fb.Categories()
	}

	out, err := memocache.Do(ctx, s.cache, memocache.Key("categories:all"), s.cfg.CacheTTL,
		func(ctx context.Context) ([]blog.Category, error) {
			var cats []blog.Category
			err := s.remote.Select(ctx, remote.Query{
				Table: "categories",
				Order: "name.asc",
			}, &cats)
			return cats, err
		}, nil)
	if err != nil {
		s.logger.Error("remote categories query failed, serving fallback data", "error", err)
		return s.fb.Categories()
	}
	return out
}

// BySlug returns the category with the given slug, or nil when no such
// category exists. A missing slug is an expected outcome, not an error.
func (s *Categories) BySlug(ctx context.Context, slug string) *blog.Category {
	if !s.cfg.Configured() {
		s.logger.Warn("remote store not configured, serving fallback data", "op", "categories.bySlug", "slug", slug)
		return s.fb.CategoryBySlug(slug)
	}

	out, err := memocache.Do(ctx, s.cache, memocache.Key("categories:slug", slug), s.cfg.CacheTTL,
		func(ctx context.Context) ([]blog.Category, error) {
			var cats []blog.Category
			err := s.remote.Select(ctx, remote.Query{
				Table:   "categories",
				Filters: []remote.Filter{remote.Eq("slug", slug)},
				Limit:   1,
			}, &cats)
			return cats, err
		}, nil)
	if err != nil {
		s.logger.Error("remote category query failed, serving fallback data", "slug", slug, "error", err)
		return s.fb.CategoryBySlug(slug)
	}
	if len(out) == 0 {
		return nil
	}
	return &out[0]
}
