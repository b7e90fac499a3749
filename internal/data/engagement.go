package data

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ehsan-mad/blogfront/internal/blog"
	"github.com/ehsan-mad/blogfront/internal/config"
	"github.com/ehsan-mad/blogfront/internal/fallback"
	"github.com/ehsan-mad/blogfront/internal/local"
	"github.com/ehsan-mad/blogfront/internal/memocache"
	"github.com/ehsan-mad/blogfront/internal/remote"
)

// LikeResult is the typed outcome of a like toggle. Authoritative carries
// whether Count came from the remote store; when false the caller keeps its
// optimistic count and surfaces a non-blocking notice that the change may
// not persist.
type LikeResult struct {
	Liked         bool
	Count         int
	Authoritative bool
}

// Engagement serves like reads and writes attributed to the durable guest
// identifier.
type Engagement struct {
	cfg    *config.Config
	remote *remote.Client
	cache  *memocache.Cache
	fb     *fallback.Dataset
	store  *local.Store
	logger *slog.Logger
}

// NewEngagement creates the engagement service.
func NewEngagement(cfg *config.Config, rc *remote.Client, cache *memocache.Cache, fb *fallback.Dataset, store *local.Store, logger *slog.Logger) *Engagement {
	return &Engagement{cfg: cfg, remote: rc, cache: cache, fb: fb, store: store, logger: logger}
}

// ToggleLike deletes (if currentlyLiked) or inserts the like row for
// (postID, guest id). Duplicate-insert conflicts are swallowed. After the
// write it reads back an authoritative count: the denormalized counter
// first, a direct row count second. If the write or both reads fail the
// result is degraded and the optimistic state stands.
func (s *Engagement) ToggleLike(ctx context.Context, postID string, currentlyLiked bool) LikeResult {
	res := LikeResult{Liked: !currentlyLiked}

	if !s.cfg.Configured() {
		s.logger.Warn("remote store not configured, simulating like toggle", "post", postID)
		return res
	}

	guestID, err := s.store.GuestID()
	if err != nil {
		s.logger.Error("failed to resolve guest id", "error", err)
		return res
	}

	if currentlyLiked {
		err = s.remote.Delete(ctx, "likes", remote.Eq("post_id", postID), remote.Eq("user_id", guestID))
	} else {
		err = s.remote.Insert(ctx, "likes", blog.Like{PostID: postID, UserID: guestID}, true)
	}
	if err != nil {
		s.logger.Error("like write failed, keeping optimistic state", "post", postID, "error", err)
		return res
	}

	s.cache.InvalidatePrefix("posts:")
	s.cache.InvalidatePrefix("likes:")

	count, ok := s.likeCount(ctx, postID)
	if !ok {
		return res
	}
	res.Count = count
	res.Authoritative = true
	return res
}

// Likes returns the post's like count: the denormalized counter first, a
// direct row count second, the fallback dataset's snapshot last.
func (s *Engagement) Likes(ctx context.Context, postID string) int {
	if s.cfg.Configured() {
		if count, ok := s.likeCount(ctx, postID); ok {
			return count
		}
	} else {
		s.logger.Warn("remote store not configured, serving fallback data", "op", "engagement.likes", "post", postID)
	}

	// By id, not via the published window: unpublished posts are reachable
	// through their slug and their snapshot count must surface too.
	if p := s.fb.PostByID(postID); p != nil {
		return p.Likes
	}
	return 0
}

// likeCount reads the denormalized counter and falls back to counting like
// rows. The two sources can in principle disagree; the first one that
// answers wins and no cross-check is attempted.
func (s *Engagement) likeCount(ctx context.Context, postID string) (int, bool) {
	var rows []struct {
		Likes int `json:"likes"`
	}
	err := s.remote.Select(ctx, remote.Query{
		Table:   "posts",
		Select:  "likes",
		Filters: []remote.Filter{remote.Eq("id", postID)},
		Limit:   1,
	}, &rows)
	if err == nil && len(rows) > 0 {
		return rows[0].Likes, true
	}
	if err != nil {
		s.logger.Warn("denormalized like counter read failed, counting rows", "post", postID, "error", err)
	}

	count, err := s.remote.Count(ctx, "likes", remote.Eq("post_id", postID))
	if err != nil {
		s.logger.Warn("like row count failed", "post", postID, "error", err)
		return 0, false
	}
	return count, true
}

// HasLikedRemote checks the remote store for a like row for (postID,
// userID). It returns ErrNotConfigured when the gate is closed so callers
// can fall back to the local persistent list.
func (s *Engagement) HasLikedRemote(ctx context.Context, postID, userID string) (bool, error) {
	if !s.cfg.Configured() {
		return false, remote.ErrNotConfigured
	}

	count, err := memocache.Do(ctx, s.cache,
		memocache.Key("likes:has", postID, userID), s.cfg.CacheTTL,
		func(ctx context.Context) (int, error) {
			return s.remote.Count(ctx, "likes", remote.Eq("post_id", postID), remote.Eq("user_id", userID))
		}, nil)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// HasLiked reports whether the user likes the post, falling back to the
// client-local persistent like list on any failure or missing configuration.
func (s *Engagement) HasLiked(ctx context.Context, postID, userID string) bool {
	liked, err := s.HasLikedRemote(ctx, postID, userID)
	if err != nil {
		s.logger.Debug("remote like check unavailable, using local list",
			"post", postID, "configured", strconv.FormatBool(s.cfg.Configured()), "error", err)
		return s.store.HasLike(postID)
	}
	return liked
}
