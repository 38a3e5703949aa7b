package services

import (
	"context"
	"fmt"
	"time"

	"github.com/updoot/updoot-be/internal/models"
	"github.com/updoot/updoot-be/internal/storage"
	"github.com/updoot/updoot-be/internal/tokens"
)

// fakeUserRepo is an in-memory storage.UserRepository.
type fakeUserRepo struct {
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, username, email, passwordHash string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return nil, storage.ErrConflict
		}
	}
	r.nextID++
	now := time.Now().UTC()
	user := &models.User{
		ID: r.nextID, Username: username, Email: email, PasswordHash: passwordHash,
		CreatedAt: now, UpdatedAt: now,
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

// fakeTokenStore is an in-memory tokens.Store.
type fakeTokenStore struct {
	n int
	m map[string]int64
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{m: make(map[string]int64)}
}

func (s *fakeTokenStore) Issue(_ context.Context, userID int64) (string, error) {
	s.n++
	token := fmt.Sprintf("token-%d", s.n)
	s.m[token] = userID
	return token, nil
}

func (s *fakeTokenStore) Lookup(_ context.Context, token string) (int64, error) {
	if id, ok := s.m[token]; ok {
		return id, nil
	}
	return 0, tokens.ErrTokenInvalid
}

func (s *fakeTokenStore) Delete(_ context.Context, token string) error {
	delete(s.m, token)
	return nil
}

// fakeMailer records dispatched mail instead of sending it.
type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	sent []sentMail
}

func (m *fakeMailer) SendAsync(to, subject, htmlBody string) {
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
}

// fakeBroadcaster records feed events.
type feedEvent struct {
	Action  string
	Payload any
}

type fakeBroadcaster struct {
	events []feedEvent
}

func (b *fakeBroadcaster) BroadcastEvent(action string, payload any) {
	b.events = append(b.events, feedEvent{Action: action, Payload: payload})
}

// fakePostRepo is a scriptable storage.PostRepository.
type fakePostRepo struct {
	posts     map[int64]*models.Post
	nextID    int64
	listLimit int // records the limit the service asked for
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*models.Post)}
}

func (r *fakePostRepo) Create(_ context.Context, creatorID int64, title, text string) (*models.Post, error) {
	r.nextID++
	now := time.Now().UTC()
	post := &models.Post{
		ID: r.nextID, Title: title, Text: text, CreatorID: creatorID,
		Creator: &models.User{ID: creatorID}, CreatedAt: now, UpdatedAt: now,
	}
	r.posts[post.ID] = post
	return post, nil
}

func (r *fakePostRepo) GetByID(_ context.Context, id int64, _ *int64) (*models.Post, error) {
	if p, ok := r.posts[id]; ok {
		return p, nil
	}
	return nil, storage.ErrNotFound
}

func (r *fakePostRepo) List(_ context.Context, limit int, _ *time.Time, _ *int64) ([]*models.Post, error) {
	r.listLimit = limit
	var out []*models.Post
	for _, p := range r.posts {
		if len(out) == limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePostRepo) Update(_ context.Context, id, creatorID int64, title, text string) (*models.Post, error) {
	p, ok := r.posts[id]
	if !ok || p.CreatorID != creatorID {
		return nil, storage.ErrNotFound
	}
	p.Title, p.Text = title, text
	return p, nil
}

func (r *fakePostRepo) Delete(_ context.Context, id, creatorID int64) error {
	p, ok := r.posts[id]
	if !ok || p.CreatorID != creatorID {
		return storage.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) ReconcilePoints(_ context.Context) (int64, error) {
	return 0, nil
}

// fakeVoteRepo records Apply calls and plays back scripted results.
type appliedVote struct {
	UserID, PostID int64
	Value          int
}

type fakeVoteRepo struct {
	applied []appliedVote
	changed bool
	err     error
}

func (r *fakeVoteRepo) Apply(_ context.Context, userID, postID int64, value int) (bool, error) {
	r.applied = append(r.applied, appliedVote{UserID: userID, PostID: postID, Value: value})
	if r.err != nil {
		return false, r.err
	}
	return r.changed, nil
}
