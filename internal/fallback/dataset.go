// Package fallback holds the static in-memory snapshot of categories and
// posts served whenever the remote store is unconfigured or unreachable.
// The snapshot is read-only: accessors hand out copies, and the in-memory
// filtering mirrors the remote query semantics so callers cannot tell the
// two apart.
package fallback

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ehsan-mad/blogfront/internal/blog"
)

// Dataset is a snapshot of categories and posts. Safe for concurrent use;
// Reload swaps the snapshot atomically under the lock.
type Dataset struct {
	mu         sync.RWMutex
	categories []blog.Category
	posts      []blog.Post
}

// fileFormat is the YAML shape of an on-disk dataset override.
type fileFormat struct {
	Categories []blog.Category `yaml:"categories"`
	Posts      []blog.Post     `yaml:"posts"`
}

// Builtin returns the compiled-in demo dataset.
func Builtin() *Dataset {
	d := &Dataset{}
	d.replace(builtinCategories(), builtinPosts())
	return d
}

// Load reads a dataset from a YAML file.
func Load(path string) (*Dataset, error) {
	d := &Dataset{}
	if err := d.Reload(path); err != nil {
		return nil, err
	}
	return d, nil
}

// Reload replaces the snapshot with the contents of the YAML file at path.
// On any error the current snapshot is left untouched.
func (d *Dataset) Reload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read fallback dataset: %w", err)
	}

	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return fmt.Errorf("failed to parse fallback dataset: %w", err)
	}
	if len(ff.Categories) == 0 && len(ff.Posts) == 0 {
		return fmt.Errorf("fallback dataset %s is empty", path)
	}

	d.replace(ff.Categories, ff.Posts)
	return nil
}

func (d *Dataset) replace(categories []blog.Category, posts []blog.Post) {
	// Join posts to their categories up front so reads are plain copies
	byID := make(map[string]blog.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	for i := range posts {
		if posts[i].CategoryID != nil {
			if c, ok := byID[*posts[i].CategoryID]; ok {
				cc := c
				posts[i].Category = &cc
			}
		}
	}

	d.mu.Lock()
	d.categories = categories
	d.posts = posts
	d.mu.Unlock()
}

// Categories returns all categories ordered by display name ascending.
func (d *Dataset) Categories() []blog.Category {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]blog.Category, len(d.categories))
	copy(out, d.categories)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CategoryBySlug returns the category with the given slug, or nil.
func (d *Dataset) CategoryBySlug(slug string) *blog.Category {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, c := range d.categories {
		if c.Slug == slug {
			cc := c
			return &cc
		}
	}
	return nil
}

// published returns copies of published posts ordered newest first.
// Callers must not hold the lock.
func (d *Dataset) published() []blog.Post {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []blog.Post
	for _, p := range d.posts {
		if p.Published {
			out = append(out, clonePost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PublishedTime().After(out[j].PublishedTime())
	})
	return out
}

// Published returns the [offset, offset+limit) window of published posts,
// ordered by publish timestamp descending.
func (d *Dataset) Published(limit, offset int) []blog.Post {
	return window(d.published(), limit, offset)
}

// PostBySlug returns the post with the given slug, published or not, or nil.
func (d *Dataset) PostBySlug(slug string) *blog.Post {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, p := range d.posts {
		if p.Slug == slug {
			pp := clonePost(p)
			return &pp
		}
	}
	return nil
}

// PostByID returns the post with the given id, published or not, or nil.
func (d *Dataset) PostByID(id string) *blog.Post {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, p := range d.posts {
		if p.ID == id {
			pp := clonePost(p)
			return &pp
		}
	}
	return nil
}

// PostsByCategory windows published posts belonging to the category id.
func (d *Dataset) PostsByCategory(categoryID string, limit, offset int) []blog.Post {
	var matched []blog.Post
	for _, p := range d.published() {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			matched = append(matched, p)
		}
	}
	return window(matched, limit, offset)
}

// Related returns up to limit published posts sharing the category,
// excluding one post id, in randomized order.
func (d *Dataset) Related(categoryID, excludeID string, limit int) []blog.Post {
	var pool []blog.Post
	for _, p := range d.published() {
		if p.ID == excludeID {
			continue
		}
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			pool = append(pool, p)
		}
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if limit > 0 && len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}

func window(posts []blog.Post, limit, offset int) []blog.Post {
	if offset >= len(posts) {
		return []blog.Post{}
	}
	end := len(posts)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return posts[offset:end]
}

func clonePost(p blog.Post) blog.Post {
	if p.Category != nil {
		cc := *p.Category
		p.Category = &cc
	}
	if p.CategoryID != nil {
		id := *p.CategoryID
		p.CategoryID = &id
	}
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		p.PublishedAt = &t
	}
	return p
}
