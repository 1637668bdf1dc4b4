package models

import "time"

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Chat models a thread may be bound to.
const (
	ModelGPT4o        = "gpt-4o"
	ModelGPT4oMini    = "gpt-4o-mini"
	ModelClaudeSonnet = "claude-sonnet"
)

// ChatModels lists the accepted thread models.
var ChatModels = []string{ModelGPT4o, ModelGPT4oMini, ModelClaudeSonnet}

// IsChatModel reports whether name is one of ChatModels.
func IsChatModel(name string) bool {
	for _, m := range ChatModels {
		if m == name {
			return true
		}
	}
	return false
}

// Message is one immutable turn of a thread.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Thread is an ordered conversation. Messages are append-only and kept in
// chronological order.
type Thread struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}
