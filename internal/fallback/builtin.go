package fallback

import (
	"time"

	"github.com/ehsan-mad/blogfront/internal/blog"
)

func ts(value string) time.Time {
	t, _ := time.Parse(time.RFC3339, value)
	return t
}

func tsp(value string) *time.Time {
	t := ts(value)
	return &t
}

func sp(s string) *string { return &s }

func builtinCategories() []blog.Category {
	return []blog.Category{
		{ID: "c1", Name: "Engineering", Slug: "engineering", CreatedAt: ts("2025-01-10T09:00:00Z")},
		{ID: "c2", Name: "Tutorials", Slug: "tutorials", CreatedAt: ts("2025-01-10T09:05:00Z")},
		{ID: "c3", Name: "Notes", Slug: "notes", CreatedAt: ts("2025-02-01T12:00:00Z")},
		{ID: "c4", Name: "Announcements", Slug: "announcements", CreatedAt: ts("2025-03-15T08:30:00Z")},
	}
}

func builtinPosts() []blog.Post {
	return []blog.Post{
		{
			ID:          "p1",
			Title:       "Designing a Read-Heavy Data Layer",
			Slug:        "designing-a-read-heavy-data-layer",
			Excerpt:     "Caching, invalidation, and why a 60 second TTL covers most of a blog's traffic.",
			Content:     "# Designing a Read-Heavy Data Layer\n\nMost blog traffic is reads of the same few pages. A keyed cache with a short\nTTL in front of the store removes nearly all duplicate queries.\n\n```go\nentry, ok := cache.Get(key, ttl)\n```\n\n> [!note]\n> Invalidate by prefix after writes; the writer never knows which pages are cached.\n",
			CategoryID:  sp("c1"),
			Published:   true,
			PublishedAt: tsp("2025-06-02T10:00:00Z"),
			Views:       412,
			Likes:       37,
			CreatedAt:   ts("2025-06-01T18:00:00Z"),
			UpdatedAt:   ts("2025-06-02T10:00:00Z"),
		},
		{
			ID:          "p2",
			Title:       "Optimistic UI Without Regret",
			Slug:        "optimistic-ui-without-regret",
			Excerpt:     "Apply the change first, reconcile to the server's count when it answers.",
			Content:     "# Optimistic UI Without Regret\n\nFor anonymous likes the cost of being briefly wrong is tiny, so apply the\nchange immediately and let the authoritative counter win later.\n\n- toggle locally\n- fire the write\n- overwrite the count when the response carries one\n",
			CategoryID:  sp("c1"),
			Published:   true,
			PublishedAt: tsp("2025-06-20T14:30:00Z"),
			Views:       230,
			Likes:       19,
			CreatedAt:   ts("2025-06-19T09:00:00Z"),
			UpdatedAt:   ts("2025-06-20T14:30:00Z"),
		},
		{
			ID:          "p3",
			Title:       "Markdown Pipelines with Goldmark",
			Slug:        "markdown-pipelines-with-goldmark",
			Excerpt:     "Syntax highlighting, admonitions, and math passthrough in one renderer.",
			Content:     "# Markdown Pipelines with Goldmark\n\nA single configured renderer handles everything a post needs:\n\n```go\nmd := goldmark.New(goldmark.WithExtensions(extension.GFM))\n```\n\nInline math like $E = mc^2$ passes through untouched for the client.\n",
			CategoryID:  sp("c2"),
			Published:   true,
			PublishedAt: tsp("2025-07-08T08:00:00Z"),
			Views:       388,
			Likes:       42,
			CreatedAt:   ts("2025-07-07T20:00:00Z"),
			UpdatedAt:   ts("2025-07-08T08:00:00Z"),
		},
		{
			ID:          "p4",
			Title:       "Counting Views Exactly Once",
			Slug:        "counting-views-exactly-once",
			Excerpt:     "A session-scoped viewed list keeps refreshes from inflating the counter.",
			Content:     "# Counting Views Exactly Once\n\nBefore counting, check the session's viewed list. Absent? Increment and add\nit. Two tabs racing can still double count; that is an accepted limitation.\n",
			CategoryID:  sp("c2"),
			Published:   true,
			PublishedAt: tsp("2025-07-25T16:45:00Z"),
			Views:       151,
			Likes:       8,
			CreatedAt:   ts("2025-07-25T11:00:00Z"),
			UpdatedAt:   ts("2025-07-25T16:45:00Z"),
		},
		{
			ID:          "p5",
			Title:       "Running in Demo Mode",
			Slug:        "running-in-demo-mode",
			Excerpt:     "No credentials, no problem: the app serves a built-in snapshot.",
			Content:     "# Running in Demo Mode\n\nLeave the remote URL and key unset and every read comes from this very\ndataset. Writes are accepted and simulated, never persisted.\n",
			CategoryID:  sp("c4"),
			Published:   true,
			PublishedAt: tsp("2025-08-10T12:00:00Z"),
			Views:       95,
			Likes:       5,
			CreatedAt:   ts("2025-08-10T10:00:00Z"),
			UpdatedAt:   ts("2025-08-10T12:00:00Z"),
		},
		{
			ID:         "p6",
			Title:      "Draft: Reconciling Disagreeing Counters",
			Slug:       "reconciling-disagreeing-counters",
			Excerpt:    "What if the denormalized counter and the row count differ?",
			Content:    "# Reconciling Disagreeing Counters\n\nStill thinking about this one.\n",
			CategoryID: sp("c3"),
			Published:  false,
			Views:      3,
			Likes:      4,
			CreatedAt:  ts("2025-08-20T22:00:00Z"),
			UpdatedAt:  ts("2025-08-21T07:30:00Z"),
		},
		{
			ID:          "p7",
			Title:       "A Post Without a Home",
			Slug:        "a-post-without-a-home",
			Excerpt:     "Category deletion detaches posts instead of deleting them.",
			Content:     "# A Post Without a Home\n\nThis post's category was removed. The post survives with a null category\nand renders with a placeholder cover.\n",
			CategoryID:  nil,
			Published:   true,
			PublishedAt: tsp("2025-05-14T09:15:00Z"),
			Views:       61,
			Likes:       2,
			CreatedAt:   ts("2025-05-14T08:00:00Z"),
			UpdatedAt:   ts("2025-05-14T09:15:00Z"),
		},
	}
}
