// Package blog defines the entities exchanged with the remote store and the
// fallback dataset.
package blog

import "time"

// Category groups posts. Categories are created out-of-band and are
// immutable from this application's point of view.
type Category struct {
	ID        string    `json:"id" yaml:"id" msgpack:"id"`
	Name      string    `json:"name" yaml:"name" msgpack:"name"`
	Slug      string    `json:"slug" yaml:"slug" msgpack:"slug"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" msgpack:"created_at"`
}

// Post is a blog post row. CategoryID is nullable: deleting a category
// detaches its posts instead of deleting them. Category carries the joined
// category row when the query embedded it.
type Post struct {
	ID          string     `json:"id" yaml:"id" msgpack:"id"`
	Title       string     `json:"title" yaml:"title" msgpack:"title"`
	Slug        string     `json:"slug" yaml:"slug" msgpack:"slug"`
	Excerpt     string     `json:"excerpt,omitempty" yaml:"excerpt" msgpack:"excerpt"`
	Content     string     `json:"content" yaml:"content" msgpack:"content"`
	CoverImage  string     `json:"cover_image,omitempty" yaml:"cover_image" msgpack:"cover_image"`
	CategoryID  *string    `json:"category_id" yaml:"category_id" msgpack:"category_id"`
	Published   bool       `json:"published" yaml:"published" msgpack:"published"`
	PublishedAt *time.Time `json:"published_at" yaml:"published_at" msgpack:"published_at"`
	Views       int        `json:"views" yaml:"views" msgpack:"views"`
	Likes       int        `json:"likes" yaml:"likes" msgpack:"likes"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at" msgpack:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at" msgpack:"updated_at"`

	Category *Category `json:"categories,omitempty" yaml:"category" msgpack:"category"`
}

// PublishedTime returns the publish timestamp, falling back to CreatedAt
// for rows that were published without one.
func (p *Post) PublishedTime() time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

// Like marks that a user currently likes a post. The (PostID, UserID) pair
// is unique in the remote store; deleting the row means unlike.
type Like struct {
	PostID string `json:"post_id" msgpack:"post_id"`
	UserID string `json:"user_id" msgpack:"user_id"`
}
