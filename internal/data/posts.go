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

// postSelect embeds the joined category row in every post read.
const postSelect = "*,categories(*)"

// Posts serves post reads and the view-counter write.
type Posts struct {
	cfg    *config.Config
	remote *remote.Client
	cache  *memocache.Cache
	fb     *fallback.Dataset
	logger *slog.Logger
}

// NewPosts creates the post service.
func NewPosts(cfg *config.Config, rc *remote.Client, cache *memocache.Cache, fb *fallback.Dataset, logger *slog.Logger) *Posts {
	return &Posts{cfg: cfg, remote: rc, cache: cache, fb: fb, logger: logger}
}

// clampPage normalizes a requested page window to the configured bounds.
func (s *Posts) clampPage(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		return s.cfg.MaxPageSize
	}
	return limit
}

// Published returns the [offset, offset+limit) window of published posts,
// newest first, each joined with its category. Receiving fewer than limit
// rows is the caller's signal that no more pages exist.
func (s *Posts) Published(ctx context.Context, limit, offset int) []blog.Post {
	limit = s.clampPage(limit)
	if offset < 0 {
		offset = 0
	}

	if !s.cfg.Configured() {
		s.logger.Warn("remote store not configured, serving fallback data", "op", "posts.published")
		return s.fb.Published(limit, offset)
	}

	out, err := memocache.Do(ctx, s.cache, memocache.Key("posts:published", limit, offset), s.cfg.CacheTTL,
		func(ctx context.Context) ([]blog.Post, error) {
			var posts []blog.Post
			err := s.remote.Select(ctx, remote.Query{
				Table:   "posts",
				Select:  postSelect,
				Filters: []remote.Filter{remote.Eq("published", "true")},
				Order:   "published_at.desc",
				Limit:   limit,
				Offset:  offset,
			}, &posts)
			return posts, err
		}, nil)
	if err != nil {
		s.logger.Error("remote posts query failed, serving fallback data", "error", err)
		return s.fb.Published(limit, offset)
	}
	return out
}

// BySlug returns the post with the given slug, published or not, joined with
// its category, or nil when absent.
func (s *Posts) BySlug(ctx context.Context, slug string) *blog.Post {
	if !s.cfg.Configured() {
		s.logger.Warn("remote store not configured, serving fallback data", "op", "posts.bySlug", "slug", slug)
		return s.fb.PostBySlug(slug)
	}

	out, err := memocache.Do(ctx, s.cache, memocache.Key("posts:slug", slug), s.cfg.CacheTTL,
		func(ctx context.Context) ([]blog.Post, error) {
			var posts []blog.Post
			err := s.remote.Select(ctx, remote.Query{
				Table:   "posts",
				Select:  postSelect,
				Filters: []remote.Filter{remote.Eq("slug", slug)},
				Limit:   1,
			}, &posts)
			return posts, err
		}, nil)
	if err != nil {
		s.logger.Error("remote post query failed, serving fallback data", "slug", slug, "error", err)
		return s.fb.PostBySlug(slug)
	}
	if len(out) == 0 {
		return nil
	}
	return &out[0]
}

// ByCategory resolves the category by slug first and windows its published
// posts like Published. An unknown category slug short-circuits to an empty
// result.
func (s *Posts) ByCategory(ctx context.Context, categories *Categories, categorySlug string, limit, offset int) []blog.Post {
	limit = s.clampPage(limit)
	if offset < 0 {
		offset = 0
	}

	cat := categories.BySlug(ctx, categorySlug)
	if cat == nil {
		return []blog.Post{}
	}

	if !s.cfg.Configured() {
		s.logger.Warn("remote store not configured, serving fallback data", "op", "posts.byCategory", "category", categorySlug)
		return s.fb.PostsByCategory(cat.ID, limit, offset)
	}

	out, err := memocache.Do(ctx, s.cache, memocache.Key("posts:category", cat.ID, limit, offset), s.cfg.CacheTTL,
		func(ctx context.Context) ([]blog.Post, error) {
			var posts []blog.Post
			err := s.remote.Select(ctx, remote.Query{
				Table:  "posts",
				Select: postSelect,
				Filters: []remote.Filter{
					remote.Eq("published", "true"),
					remote.Eq("category_id", cat.ID),
				},
				Order:  "published_at.desc",
				Limit:  limit,
				Offset: offset,
			}, &posts)
			return posts, err
		}, nil)
	if err != nil {
		s.logger.Error("remote posts query failed, serving fallback data", "category", categorySlug, "error", err)
		return s.fb.PostsByCategory(cat.ID, limit, offset)
	}
	return out
}

// Related returns up to limit posts sharing categoryID, excluding one post
// id, ordered by recency remotely and randomized in fallback mode.
func (s *Posts) Related(ctx context.Context, categoryID, excludeID string, limit int) []blog.Post {
	if limit <= 0 {
		limit = 3
	}

	if !s.cfg.Configured() {
		s.logger.Warn("remote store not configured, serving fallback data", "op", "posts.related")
		return s.fb.Related(categoryID, excludeID, limit)
	}

	out, err := memocache.Do(ctx, s.cache, memocache.Key("posts:related", categoryID, excludeID, limit), s.cfg.CacheTTL,
		func(ctx context.Context) ([]blog.Post, error) {
			var posts []blog.Post
			err := s.remote.Select(ctx, remote.Query{
				Table:  "posts",
				Select: postSelect,
				Filters: []remote.Filter{
					remote.Eq("published", "true"),
					remote.Eq("category_id", categoryID),
					remote.Neq("id", excludeID),
				},
				Order: "published_at.desc",
				Limit: limit,
			}, &posts)
			return posts, err
		}, nil)
	if err != nil {
		s.logger.Error("remote related query failed, serving fallback data", "error", err)
		return s.fb.Related(categoryID, excludeID, limit)
	}
	return out
}

// IncrementViews bumps the post's view counter and returns the new count.
// The atomic server-side procedure is preferred; when it is unavailable the
// non-atomic read-then-write path runs instead. In fallback mode the write
// is simulated: accepted, not persisted, count zero.
func (s *Posts) IncrementViews(ctx context.Context, postID string) (int, error) {
	if !s.cfg.Configured() {
		s.logger.Warn("remote store not configured, simulating view increment", "post", postID)
		return 0, nil
	}

	var count int
	err := s.remote.RPC(ctx, "increment_post_views", map[string]string{"post_id_input": postID}, &count)
	if err == nil {
		s.cache.InvalidatePrefix("posts:")
		return count, nil
	}
	s.logger.Warn("increment rpc failed, falling back to read-then-write", "post", postID, "error", err)

	var rows []struct {
		Views int `json:"views"`
	}
	if err := s.remote.Select(ctx, remote.Query{
		Table:   "posts",
		Select:  "views",
		Filters: []remote.Filter{remote.Eq("id", postID)},
		Limit:   1,
	}, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	next := rows[0].Views + 1
	if err := s.remote.Update(ctx, "posts", map[string]int{"views": next}, remote.Eq("id", postID)); err != nil {
		return 0, err
	}

	s.cache.InvalidatePrefix("posts:")
	return next, nil
}
