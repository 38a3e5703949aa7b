package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// Board event actions emitted on the feed.
const (
	ActionPostCreated = "post.created"
	ActionPostVoted   = "post.voted"
	ActionPostDeleted = "post.deleted"
)

// EncodeMessage serializes a feed event for broadcast.
func EncodeMessage(action string, payload any) ([]byte, error) {
	return json.Marshal(Message{Action: action, Payload: payload})
}
