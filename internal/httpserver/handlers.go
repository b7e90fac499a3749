package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/ehsan-mad/blogfront/internal/blog"
	"github.com/ehsan-mad/blogfront/internal/images"
)

// postView is a post as the list and detail views consume it: cover image
// resolved to a URL, body rendered to HTML on the detail view only.
type postView struct {
	blog.Post
	CoverURL string `json:"cover_url,omitempty"`
	HTML     string `json:"html,omitempty"`
}

// pageResponse wraps a post window with the pagination heuristic: a page
// shorter than the requested limit means no more pages exist.
type pageResponse struct {
	Posts   []postView `json:"posts"`
	HasMore bool       `json:"has_more"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) pageParams(r *http.Request) (limit, offset int) {
	limit = s.cfg.DefaultPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	if limit <= 0 {
		limit = s.cfg.DefaultPageSize
	}
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	return limit, offset
}

func (s *Server) toViews(posts []blog.Post) []postView {
	out := make([]postView, 0, len(posts))
	for i := range posts {
		out = append(out, s.toView(&posts[i], false))
	}
	return out
}

func (s *Server) toView(p *blog.Post, detail bool) postView {
	view := postView{Post: *p}

	url, err := s.resolver.Resolve(images.EntitySource(p))
	if err != nil {
		s.logger.Warn("cover image resolution failed", "post", p.Slug, "error", err)
	} else {
		view.CoverURL = url
	}

	if detail {
		html, err := s.renderer.Render([]byte(p.Content))
		if err != nil {
			s.logger.Error("markdown render failed", "post", p.Slug, "error", err)
		} else {
			view.HTML = html
		}
	}
	return view
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "configured": s.cfg.Configured()})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.categories.All(r.Context()))
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	cat := s.categories.BySlug(r.Context(), r.PathValue("slug"))
	if cat == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

func (s *Server) handleCategoryPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := s.pageParams(r)
	posts := s.posts.ByCategory(r.Context(), s.categories, r.PathValue("slug"), limit, offset)
	writeJSON(w, http.StatusOK, pageResponse{
		Posts:   s.toViews(posts),
		HasMore: len(posts) == limit,
	})
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := s.pageParams(r)
	posts := s.posts.Published(r.Context(), limit, offset)
	writeJSON(w, http.StatusOK, pageResponse{
		Posts:   s.toViews(posts),
		HasMore: len(posts) == limit,
	})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	post := s.posts.BySlug(r.Context(), r.PathValue("slug"))
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	counted, views := s.tracker.TrackView(r.Context(), post.ID)
	if counted && views > 0 {
		post.Views = views
	}

	view := s.toView(post, true)
	writeJSON(w, http.StatusOK, map[string]any{
		"post":  view,
		"liked": s.tracker.LikedState(r.Context(), post.ID),
	})
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	post := s.posts.BySlug(r.Context(), r.PathValue("slug"))
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if post.CategoryID == nil {
		writeJSON(w, http.StatusOK, []postView{})
		return
	}

	limit := 3
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	writeJSON(w, http.StatusOK, s.toViews(s.posts.Related(r.Context(), *post.CategoryID, post.ID, limit)))
}

func (s *Server) handleLiked(w http.ResponseWriter, r *http.Request) {
	post := s.posts.BySlug(r.Context(), r.PathValue("slug"))
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": s.tracker.LikedState(r.Context(), post.ID)})
}

func (s *Server) handleLikes(w http.ResponseWriter, r *http.Request) {
	post := s.posts.BySlug(r.Context(), r.PathValue("slug"))
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"likes": s.tracker.Likes(r.Context(), post.ID)})
}

// handleEngagement reports the client-local engagement state the views hold
// in browser storage: the session's viewed list and the persistent likes.
func (s *Server) handleEngagement(w http.ResponseWriter, _ *http.Request) {
	viewed, liked := s.tracker.State()
	if viewed == nil {
		viewed = []string{}
	}
	if liked == nil {
		liked = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"viewed": viewed, "liked": liked})
}

func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	post := s.posts.BySlug(r.Context(), r.PathValue("slug"))
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	res := s.tracker.ToggleLike(r.Context(), post.ID)
	body := map[string]any{
		"liked":         res.Liked,
		"authoritative": res.Authoritative,
	}
	if res.Authoritative {
		body["likes"] = res.Count
	} else {
		// Caller keeps its optimistic count and shows a non-blocking notice
		body["notice"] = "change may not persist"
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleImageUpload(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	// Optional display name; when present its slug names the file,
	// otherwise the content hash does.
	name := images.Slugify(r.FormValue("name"))

	saved, err := s.imageStore.Save(file, name)
	if err != nil {
		s.logger.Error("image upload failed", "error", err)
		writeError(w, http.StatusUnprocessableEntity, "could not process image")
		return
	}

	url, err := s.resolver.Resolve(images.PathSource(saved.Name))
	if err != nil {
		url = ""
	}
	writeJSON(w, http.StatusCreated, map[string]any{"name": saved.Name, "size": saved.Size, "url": url})
}

func (s *Server) handleImageList(w http.ResponseWriter, _ *http.Request) {
	list, err := s.imageStore.List()
	if err != nil {
		s.logger.Error("image list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list images")
		return
	}
	if list == nil {
		list = []images.Saved{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleImageDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.imageStore.Exists(name) {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	if err := s.imageStore.Delete(name); err != nil {
		s.logger.Error("image delete failed", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, "could not delete image")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImageServe(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	f, err := s.imageStore.Open(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	defer func() { _ = f.Close() }()

	w.Header().Set("Content-Type", "image/webp")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	_, _ = io.Copy(w, f)
}
