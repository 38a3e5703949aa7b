package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/updoot/updoot-be/internal/storage"
	"github.com/updoot/updoot-be/internal/websocket"
)

func newTestVoteService(changed bool) (*VoteService, *fakeVoteRepo, *fakePostRepo, *fakeBroadcaster) {
	votes := &fakeVoteRepo{changed: changed}
	posts := newFakePostRepo()
	feed := &fakeBroadcaster{}
	return NewVoteService(votes, posts, feed), votes, posts, feed
}

func TestVote_NormalizesValue(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"upvote stays", 1, 1},
		{"downvote stays", -1, -1},
		{"zero becomes upvote", 0, 1},
		{"large value becomes upvote", 5, 1},
		{"other negatives become upvotes", -7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, votes, posts, _ := newTestVoteService(true)
			post, err := posts.Create(context.Background(), 1, "t", "x")
			require.NoError(t, err)

			_, err = svc.Vote(context.Background(), 3, post.ID, tt.in)
			require.NoError(t, err)
			require.Len(t, votes.applied, 1)
			assert.Equal(t, tt.want, votes.applied[0].Value)
		})
	}
}

func TestVote_BroadcastsOnlyWhenLedgerChanged(t *testing.T) {
	svc, _, posts, feed := newTestVoteService(true)
	post, err := posts.Create(context.Background(), 1, "t", "x")
	require.NoError(t, err)

	_, err = svc.Vote(context.Background(), 3, post.ID, 1)
	require.NoError(t, err)
	require.Len(t, feed.events, 1)
	assert.Equal(t, websocket.ActionPostVoted, feed.events[0].Action)

	// Same-value revote: ledger reports no change, feed stays quiet.
	svc2, _, posts2, feed2 := newTestVoteService(false)
	post2, err := posts2.Create(context.Background(), 1, "t", "x")
	require.NoError(t, err)

	_, err = svc2.Vote(context.Background(), 3, post2.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, feed2.events)
}

func TestVote_MissingPost(t *testing.T) {
	svc, votes, _, feed := newTestVoteService(false)
	votes.err = storage.ErrNotFound

	_, err := svc.Vote(context.Background(), 3, 99, 1)
	require.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, feed.events)
}

func TestVote_ReturnsPostWithViewerStatus(t *testing.T) {
	svc, _, posts, _ := newTestVoteService(true)
	created, err := posts.Create(context.Background(), 1, "t", "x")
	require.NoError(t, err)

	post, err := svc.Vote(context.Background(), 3, created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, created.ID, post.ID)
}
