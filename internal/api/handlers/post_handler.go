package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/updoot/updoot-be/internal/auth"
	"github.com/updoot/updoot-be/internal/services"
	"github.com/updoot/updoot-be/internal/storage"
)

// PostHandler handles HTTP requests for posts and votes.
type PostHandler struct {
	posts services.PostServiceProvider
	votes services.VoteServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts services.PostServiceProvider, votes services.VoteServiceProvider) *PostHandler {
	return &PostHandler{posts: posts, votes: votes}
}

// PostPayload defines the structure for create and update requests.
type PostPayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Create handles new post creation.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var payload PostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, ferrs, err := h.posts.Create(r.Context(), userID, payload.Title, payload.Text)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to create post")
		respondInternal(w)
		return
	}
	if ferrs != nil {
		respondFieldErrors(w, ferrs)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"post": post})
}

// List returns a page of posts, newest first. Accepts limit and an
// optional cursor: the createdAt of the last post already seen.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var cursor *time.Time
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			http.Error(w, "Invalid cursor", http.StatusBadRequest)
			return
		}
		cursor = &t
	}

	posts, hasMore, err := h.posts.List(r.Context(), limit, cursor, viewerID(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list posts")
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"posts": posts, "hasMore": hasMore})
}

// Get handles retrieving a post by its ID.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		http.Error(w, "Invalid post id", http.StatusBadRequest)
		return
	}

	post, err := h.posts.Get(r.Context(), id, viewerID(r))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondNotFound(w, "id", "post not found")
			return
		}
		log.Error().Err(err).Int64("post_id", id).Msg("Failed to get post")
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"post": post})
}

// Update handles rewriting a post's content. Creator only; anyone else
// sees the same 404 as for a missing post.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		http.Error(w, "Invalid post id", http.StatusBadRequest)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	var payload PostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, ferrs, err := h.posts.Update(r.Context(), id, userID, payload.Title, payload.Text)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondNotFound(w, "id", "post not found")
			return
		}
		log.Error().Err(err).Int64("post_id", id).Msg("Failed to update post")
		respondInternal(w)
		return
	}
	if ferrs != nil {
		respondFieldErrors(w, ferrs)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"post": post})
}

// Delete handles removing a post. Creator only.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		http.Error(w, "Invalid post id", http.StatusBadRequest)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.posts.Delete(r.Context(), id, userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondNotFound(w, "id", "post not found")
			return
		}
		log.Error().Err(err).Int64("post_id", id).Msg("Failed to delete post")
		respondInternal(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Vote records the caller's vote on a post.
func (h *PostHandler) Vote(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		http.Error(w, "Invalid post id", http.StatusBadRequest)
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())

	var payload struct {
		Value int `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.votes.Vote(r.Context(), userID, id, payload.Value)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondNotFound(w, "id", "post not found")
			return
		}
		log.Error().Err(err).Int64("post_id", id).Int64("user_id", userID).Msg("Failed to apply vote")
		respondInternal(w)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"post": post})
}

// postID parses the {id} route parameter.
func postID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// viewerID returns the authenticated user id as an optional value for
// vote-status resolution.
func viewerID(r *http.Request) *int64 {
	if id, ok := auth.UserIDFromContext(r.Context()); ok {
		return &id
	}
	return nil
}
