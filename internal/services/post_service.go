package services

import (
	"context"
	"strings"
	"time"

	"github.com/updoot/updoot-be/internal/models"
	"github.com/updoot/updoot-be/internal/storage"
	"github.com/updoot/updoot-be/internal/websocket"
)

// Broadcaster publishes board events to connected feed clients.
type Broadcaster interface {
	BroadcastEvent(action string, payload any)
}

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	Create(ctx context.Context, creatorID int64, title, text string) (*models.Post, []FieldError, error)
	Get(ctx context.Context, id int64, viewerID *int64) (*models.Post, error)
	List(ctx context.Context, limit int, cursor *time.Time, viewerID *int64) ([]*models.Post, bool, error)
	Update(ctx context.Context, id, creatorID int64, title, text string) (*models.Post, []FieldError, error)
	Delete(ctx context.Context, id, creatorID int64) error
}

// Paging bounds for the post listing.
const (
	defaultPostLimit = 10
	maxPostLimit     = 50
)

// PostService provides business logic for posts.
type PostService struct {
	posts storage.PostRepository
	feed  Broadcaster
}

// NewPostService creates a new PostService.
func NewPostService(posts storage.PostRepository, feed Broadcaster) *PostService {
	return &PostService{posts: posts, feed: feed}
}

func validatePost(title, text string) []FieldError {
	if strings.TrimSpace(title) == "" {
		return fieldErr("title", "title cannot be empty")
	}
	if strings.TrimSpace(text) == "" {
		return fieldErr("text", "text cannot be empty")
	}
	return nil
}

// Create stores a new post and announces it on the feed.
func (s *PostService) Create(ctx context.Context, creatorID int64, title, text string) (*models.Post, []FieldError, error) {
	if errs := validatePost(title, text); errs != nil {
		return nil, errs, nil
	}

	post, err := s.posts.Create(ctx, creatorID, title, text)
	if err != nil {
		return nil, nil, err
	}

	s.feed.BroadcastEvent(websocket.ActionPostCreated, post)
	return post, nil, nil
}

// Get retrieves a single post, with the viewer's vote status when known.
func (s *PostService) Get(ctx context.Context, id int64, viewerID *int64) (*models.Post, error) {
	return s.posts.GetByID(ctx, id, viewerID)
}

// List returns a page of posts in reverse chronological order plus a flag
// telling the caller whether older posts remain past the page.
func (s *PostService) List(ctx context.Context, limit int, cursor *time.Time, viewerID *int64) ([]*models.Post, bool, error) {
	if limit <= 0 {
		limit = defaultPostLimit
	}
	if limit > maxPostLimit {
		limit = maxPostLimit
	}

	// Fetch one extra row to learn whether another page exists.
	posts, err := s.posts.List(ctx, limit+1, cursor, viewerID)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}
	return posts, hasMore, nil
}

// Update rewrites a post's content. Only the creator may update.
func (s *PostService) Update(ctx context.Context, id, creatorID int64, title, text string) (*models.Post, []FieldError, error) {
	if errs := validatePost(title, text); errs != nil {
		return nil, errs, nil
	}

	post, err := s.posts.Update(ctx, id, creatorID, title, text)
	if err != nil {
		return nil, nil, err
	}
	return post, nil, nil
}

// Delete removes a post owned by creatorID and announces the removal.
func (s *PostService) Delete(ctx context.Context, id, creatorID int64) error {
	if err := s.posts.Delete(ctx, id, creatorID); err != nil {
		return err
	}
	s.feed.BroadcastEvent(websocket.ActionPostDeleted, map[string]int64{"postId": id})
	return nil
}
