package models

// Vote records a single user's signed rating of a post. One row per
// (UserID, PostID) pair; changing a vote updates the row in place.
type Vote struct {
	UserID int64 `json:"userId"`
	PostID int64 `json:"postId"`
	Value  int   `json:"value"` // 1 or -1
}
