package data

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToggleLike_InsertThenAuthoritativeCount(t *testing.T) {
	var inserted atomic.Bool
	d := newConfiguredDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/rest/v1/likes":
			inserted.Store(true)
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodGet && r.URL.Path == "/rest/v1/posts":
			require.Equal(t, "likes", r.URL.Query().Get("select"))
			_, _ = w.Write([]byte(`[{"likes":12}]`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	svc := d.engagement()

	res := svc.ToggleLike(context.Background(), "p1", false)

	require.True(t, inserted.Load())
	require.True(t, res.Liked)
	require.True(t, res.Authoritative)
	require.Equal(t, 12, res.Count)
}

func TestToggleLike_DeleteWhenCurrentlyLiked(t *testing.T) {
	var deleted atomic.Bool
	d := newConfiguredDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/rest/v1/likes":
			require.Equal(t, "eq.p1", r.URL.Query().Get("post_id"))
			deleted.Store(true)
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodGet:
			_, _ = w.Write([]byte(`[{"likes":4}]`))
		}
	}))
	svc := d.engagement()

	res := svc.ToggleLike(context.Background(), "p1", true)

	require.True(t, deleted.Load())
	require.False(t, res.Liked)
	require.True(t, res.Authoritative)
	require.Equal(t, 4, res.Count)
}

func TestToggleLike_CounterFallsBackToRowCount(t *testing.T) {
	d := newConfiguredDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodGet:
			// Denormalized counter read fails
			http.Error(w, "no", http.StatusInternalServerError)
		case r.Method == http.MethodHead:
			w.Header().Set("Content-Range", "*/9")
			w.WriteHeader(http.StatusOK)
		}
	}))
	svc := d.engagement()

	res := svc.ToggleLike(context.Background(), "p1", false)

	require.True(t, res.Authoritative)
	require.Equal(t, 9, res.Count, "row count is the second source of the authoritative count")
}

func TestToggleLike_WriteFailureIsDegraded(t *testing.T) {
	d := newConfiguredDeps(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	svc := d.engagement()

	res := svc.ToggleLike(context.Background(), "p1", false)

	require.True(t, res.Liked, "optimistic liked state is preserved")
	require.False(t, res.Authoritative, "failed write must yield a degraded result")
}

func TestToggleLike_ClosedGateSimulates(t *testing.T) {
	d := newUnconfiguredDeps(t)
	svc := d.engagement()

	res := svc.ToggleLike(context.Background(), "p1", false)
	require.True(t, res.Liked)
	require.False(t, res.Authoritative)
}

func TestToggleLike_DuplicateInsertSwallowed(t *testing.T) {
	d := newConfiguredDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.WriteHeader(http.StatusConflict)
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"likes":1}]`))
		}
	}))
	svc := d.engagement()

	res := svc.ToggleLike(context.Background(), "p1", false)
	require.True(t, res.Authoritative, "duplicate insert must not surface as an error")
	require.Equal(t, 1, res.Count)
}

func TestHasLiked_RemoteAnswer(t *testing.T) {
	d := newConfiguredDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		require.Equal(t, "eq.u1", r.URL.Query().Get("user_id"))
		w.Header().Set("Content-Range", "*/1")
		w.WriteHeader(http.StatusOK)
	}))
	svc := d.engagement()

	require.True(t, svc.HasLiked(context.Background(), "p1", "u1"))
}

func TestHasLiked_FallsBackToLocalList(t *testing.T) {
	d := newConfiguredDeps(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	require.NoError(t, d.store.AddLike("p1"))
	svc := d.engagement()

	require.True(t, svc.HasLiked(context.Background(), "p1", "u1"))
	require.False(t, svc.HasLiked(context.Background(), "p2", "u1"))
}

func TestHasLiked_ClosedGateUsesLocalList(t *testing.T) {
	d := newUnconfiguredDeps(t)
	require.NoError(t, d.store.AddLike("p1"))
	svc := d.engagement()

	require.True(t, svc.HasLiked(context.Background(), "p1", "u1"))
}

func TestLikes_ClosedGateUsesFallbackSnapshot(t *testing.T) {
	d := newUnconfiguredDeps(t)
	svc := d.engagement()

	require.Equal(t, 37, svc.Likes(context.Background(), "p1"))
	require.Zero(t, svc.Likes(context.Background(), "unknown"))
}

func TestLikes_FallbackCoversUnpublishedPosts(t *testing.T) {
	d := newUnconfiguredDeps(t)
	svc := d.engagement()

	// p6 is a draft: reachable by slug, absent from the published window
	require.Equal(t, 4, svc.Likes(context.Background(), "p6"))
}
