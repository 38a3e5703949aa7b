package services

import (
	"context"

	"github.com/updoot/updoot-be/internal/models"
	"github.com/updoot/updoot-be/internal/storage"
	"github.com/updoot/updoot-be/internal/websocket"
)

// VoteServiceProvider defines the interface for the vote ledger.
type VoteServiceProvider interface {
	Vote(ctx context.Context, userID, postID int64, value int) (*models.Post, error)
}

// VoteService applies votes and keeps post point totals consistent.
type VoteService struct {
	votes storage.VoteRepository
	posts storage.PostRepository
	feed  Broadcaster
}

// NewVoteService creates a new VoteService.
func NewVoteService(votes storage.VoteRepository, posts storage.PostRepository, feed Broadcaster) *VoteService {
	return &VoteService{votes: votes, posts: posts, feed: feed}
}

// Vote records userID's vote on postID. Anything that is not a downvote
// counts as an upvote. Voting the same way twice is a no-op; switching
// sides swings the total by two. Returns the post with its fresh total
// and the caller's vote status.
func (s *VoteService) Vote(ctx context.Context, userID, postID int64, value int) (*models.Post, error) {
	if value != -1 {
		value = 1
	}

	changed, err := s.votes.Apply(ctx, userID, postID, value)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID, &userID)
	if err != nil {
		return nil, err
	}

	if changed {
		s.feed.BroadcastEvent(websocket.ActionPostVoted, map[string]int64{
			"postId": post.ID,
			"points": post.Points,
		})
	}
	return post, nil
}
