package data

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ehsan-mad/blogfront/internal/config"
	"github.com/ehsan-mad/blogfront/internal/fallback"
	"github.com/ehsan-mad/blogfront/internal/local"
	"github.com/ehsan-mad/blogfront/internal/memocache"
	"github.com/ehsan-mad/blogfront/internal/remote"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// deps bundles everything a service under test needs.
type deps struct {
	cfg    *config.Config
	remote *remote.Client
	cache  *memocache.Cache
	fb     *fallback.Dataset
	store  *local.Store
	logger *slog.Logger
}

// newConfiguredDeps points the remote client at an httptest handler with
// credentials present, so the gate is open.
func newConfiguredDeps(t *testing.T, handler http.Handler) *deps {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.RemoteURL = srv.URL
	cfg.RemoteKey = "test-key"

	return &deps{
		cfg:    cfg,
		remote: remote.New(srv.URL, "test-key", 5*time.Second, testLogger()),
		cache:  memocache.New(),
		fb:     fallback.Builtin(),
		store:  openTestStore(t),
		logger: testLogger(),
	}
}

// newUnconfiguredDeps leaves credentials empty; the handler fails the test
// if any network call slips through the closed gate.
func newUnconfiguredDeps(t *testing.T) *deps {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected network call with closed gate: %s %s", r.Method, r.URL.Path)
	}))
	t.Cleanup(srv.Close)

	return &deps{
		cfg:    config.Default(),
		remote: remote.New(srv.URL, "", 5*time.Second, testLogger()),
		cache:  memocache.New(),
		fb:     fallback.Builtin(),
		store:  openTestStore(t),
		logger: testLogger(),
	}
}

func openTestStore(t *testing.T) *local.Store {
	t.Helper()
	s, err := local.Open(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("failed to open local store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func (d *deps) categories() *Categories {
	return NewCategories(d.cfg, d.remote, d.cache, d.fb, d.logger)
}

func (d *deps) posts() *Posts {
	return NewPosts(d.cfg, d.remote, d.cache, d.fb, d.logger)
}

func (d *deps) engagement() *Engagement {
	return NewEngagement(d.cfg, d.remote, d.cache, d.fb, d.store, d.logger)
}
