// Package images covers cover-image handling: resolving a post's image URL
// from one of three explicit sources, generating placeholder cards for
// posts without a cover, and the admin-panel image store.
package images

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ehsan-mad/blogfront/internal/blog"
)

// SourceKind discriminates the variants of an image source.
type SourceKind int

const (
	// FromEntity derives the image from a post row: its cover image if set,
	// a placeholder otherwise.
	FromEntity SourceKind = iota
	// FromPath resolves a bare URL or storage-relative path.
	FromPath
	// FromPlaceholder always renders a generated card.
	FromPlaceholder
)

// Source is a tagged image source. Build one with the constructors; only
// the fields of the active variant are read.
type Source struct {
	Kind SourceKind

	Post *blog.Post // FromEntity

	Path string // FromPath

	Title    string // FromPlaceholder
	Category string // FromPlaceholder
}

// EntitySource builds a source from a post row.
func EntitySource(p *blog.Post) Source {
	return Source{Kind: FromEntity, Post: p}
}

// PathSource builds a source from a URL or storage-relative path.
func PathSource(path string) Source {
	return Source{Kind: FromPath, Path: path}
}

// PlaceholderSource builds a source that renders a generated card.
func PlaceholderSource(title, category string) Source {
	return Source{Kind: FromPlaceholder, Title: title, Category: category}
}

// Resolver turns image sources into servable URLs.
type Resolver struct {
	baseURL     string
	store       *Store
	placeholder *Placeholder
	logger      *slog.Logger
}

// NewResolver creates a resolver. baseURL prefixes storage-relative paths.
func NewResolver(baseURL string, store *Store, placeholder *Placeholder, logger *slog.Logger) *Resolver {
	return &Resolver{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		store:       store,
		placeholder: placeholder,
		logger:      logger,
	}
}

// Resolve dispatches on the source variant and returns a URL.
func (r *Resolver) Resolve(src Source) (string, error) {
	switch src.Kind {
	case FromEntity:
		if src.Post == nil {
			return "", fmt.Errorf("entity image source without a post")
		}
		if src.Post.CoverImage != "" {
			return r.Resolve(PathSource(src.Post.CoverImage))
		}
		category := ""
		if src.Post.Category != nil {
			category = src.Post.Category.Name
		}
		return r.Resolve(PlaceholderSource(src.Post.Title, category))

	case FromPath:
		if strings.HasPrefix(src.Path, "http://") || strings.HasPrefix(src.Path, "https://") {
			return src.Path, nil
		}
		return r.baseURL + "/images/" + strings.TrimPrefix(src.Path, "/"), nil

	case FromPlaceholder:
		name, err := r.placeholder.Ensure(r.store, src.Title, src.Category)
		if err != nil {
			return "", fmt.Errorf("failed to resolve placeholder image: %w", err)
		}
		return r.baseURL + "/images/" + name, nil

	default:
		return "", fmt.Errorf("unknown image source kind %d", src.Kind)
	}
}
