package models

import "time"

// Post is a board entry. Points is a denormalized sum of the post's vote
// values, maintained by the vote ledger and never written directly.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Points    int64     `json:"points"`
	CreatorID int64     `json:"creatorId"`
	Creator   *User     `json:"creator,omitempty"`
	// VoteStatus is the viewing user's own vote on the post (1, -1), nil
	// when the viewer is anonymous or has not voted.
	VoteStatus *int      `json:"voteStatus"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
