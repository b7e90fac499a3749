// Package engage gives each client a consistent, mostly-correct view of
// "have I viewed this post this session" and "do I currently like this
// post", independent of whether the remote store is reachable.
package engage

import (
	"context"
	"log/slog"

	"github.com/ehsan-mad/blogfront/internal/data"
	"github.com/ehsan-mad/blogfront/internal/local"
)

// Tracker combines the data services with the client-local state stores.
type Tracker struct {
	posts      *data.Posts
	engagement *data.Engagement
	store      *local.Store
	session    *local.Session
	logger     *slog.Logger
}

// New creates a tracker.
func New(posts *data.Posts, engagement *data.Engagement, store *local.Store, session *local.Session, logger *slog.Logger) *Tracker {
	return &Tracker{posts: posts, engagement: engagement, store: store, session: session, logger: logger}
}

// TrackView counts a view for postID at most once per session. It reports
// whether this call performed the increment, and the new view count when the
// remote store provided one. Two tabs racing the same post can still double
// count; that limitation is accepted.
func (t *Tracker) TrackView(ctx context.Context, postID string) (counted bool, views int) {
	if t.session.Viewed(postID) {
		return false, 0
	}

	views, err := t.posts.IncrementViews(ctx, postID)
	if err != nil {
		t.logger.Warn("view increment failed, view not counted", "post", postID, "error", err)
		return false, 0
	}

	t.session.MarkViewed(postID)
	return true, views
}

// LikedState returns whether this client likes the post. The remote
// existence check under the guest identifier is the preferred source of
// truth; when it answers, the local persistent list is reconciled to match.
// When it is unavailable the local list alone decides.
func (t *Tracker) LikedState(ctx context.Context, postID string) bool {
	guestID, err := t.store.GuestID()
	if err != nil {
		t.logger.Error("failed to resolve guest id", "error", err)
		return t.store.HasLike(postID)
	}

	liked, err := t.engagement.HasLikedRemote(ctx, postID, guestID)
	if err != nil {
		return t.store.HasLike(postID)
	}

	if liked && !t.store.HasLike(postID) {
		if err := t.store.AddLike(postID); err != nil {
			t.logger.Warn("failed to reconcile local like list", "post", postID, "error", err)
		}
	}
	if !liked && t.store.HasLike(postID) {
		if err := t.store.RemoveLike(postID); err != nil {
			t.logger.Warn("failed to reconcile local like list", "post", postID, "error", err)
		}
	}
	return liked
}

// Likes returns the post's current like count from the best available
// source.
func (t *Tracker) Likes(ctx context.Context, postID string) int {
	return t.engagement.Likes(ctx, postID)
}

// State returns this client's local engagement snapshot: posts viewed this
// session in counted order, and posts currently on the persistent liked
// list.
func (t *Tracker) State() (viewed, liked []string) {
	return t.session.ViewedPosts(), t.store.LikedPosts()
}

// ToggleLike flips the liked state for postID. The local persistent list is
// mutated first (optimistic update), then the remote write runs. A degraded
// result leaves the optimistic state in place; it is never rolled back, by
// the accept-eventual-inconsistency choice for anonymous likes.
func (t *Tracker) ToggleLike(ctx context.Context, postID string) data.LikeResult {
	currentlyLiked := t.store.HasLike(postID)

	var err error
	if currentlyLiked {
		err = t.store.RemoveLike(postID)
	} else {
		err = t.store.AddLike(postID)
	}
	if err != nil {
		t.logger.Warn("failed to update local like list", "post", postID, "error", err)
	}

	res := t.engagement.ToggleLike(ctx, postID, currentlyLiked)
	if !res.Authoritative {
		t.logger.Warn("like change may not persist", "post", postID)
	}
	return res
}
