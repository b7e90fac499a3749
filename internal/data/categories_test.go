package data

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoriesAll_ClosedGateServesFallback(t *testing.T) {
	d := newUnconfiguredDeps(t)
	svc := d.categories()

	got := svc.All(context.Background())

	require.Equal(t, d.fb.Categories(), got, "closed gate must serve the fallback list unmodified")
}

func TestCategoriesAll_RemoteAndCached(t *testing.T) {
	var calls atomic.Int32
	d := newConfiguredDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/rest/v1/categories", r.URL.Path)
		require.Equal(t, "name.asc", r.URL.Query().Get("order"))
		_, _ = w.Write([]byte(`[{"id":"r1","name":"Remote","slug":"remote"}]`))
	}))
	svc := d.categories()

	first := svc.All(context.Background())
	second := svc.All(context.Background())

	require.Len(t, first, 1)
	require.Equal(t, "remote", first[0].Slug)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, calls.Load(), "second call within the TTL must hit the cache")
}

func TestCategoriesAll_RemoteFailureDegrades(t *testing.T) {
	d := newConfiguredDeps(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	svc := d.categories()

	got := svc.All(context.Background())

	require.Equal(t, d.fb.Categories(), got, "remote failure must degrade to the fallback list")
	require.Zero(t, d.cache.Len(), "fallback results must not be cached")
}

func TestCategoriesBySlug_NotFoundIsNil(t *testing.T) {
	d := newConfiguredDeps(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	svc := d.categories()

	require.Nil(t, svc.BySlug(context.Background(), "nonexistent-slug"))
}

func TestCategoriesBySlug_ClosedGate(t *testing.T) {
	d := newUnconfiguredDeps(t)
	svc := d.categories()

	got := svc.BySlug(context.Background(), "engineering")
	require.NotNil(t, got)
	require.Equal(t, "Engineering", got.Name)

	require.Nil(t, svc.BySlug(context.Background(), "nonexistent-slug"))
}
