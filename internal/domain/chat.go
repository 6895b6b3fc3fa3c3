package domain

import "time"

// Role identifies who authored a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is one entry of the assistant widget. Messages are only ever
// appended, never edited or removed.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Turn is the role/text pair replayed to the model as conversation history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Canned replies used by the AI gateway when the model cannot answer.
const (
	ChatEmptyReply   = "I'm having trouble understanding right now. Please try again."
	ChatOfflineReply = "Sorry, I'm currently offline. Please try again later."
	ChatGreeting     = "Hi! I am SchemeXpert. I can help you find eligibility criteria or explain schemes. How can I help today?"
)
