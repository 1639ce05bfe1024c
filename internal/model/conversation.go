package model

import "time"

// Conversation is a direct-message thread between exactly two users.
//
// The participant pair is conceptually unordered but stored ordered
// (Participant1 < Participant2 lexicographically), which lets a unique index
// guarantee one conversation per pair. LastMessageAt is bumped by a database
// trigger whenever a message is inserted.
type Conversation struct {
	ID            string    `json:"id"`
	Participant1  string    `json:"participant1"`
	Participant2  string    `json:"participant2"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt"`

	// Populated on list reads.
	Participant1Profile *ProfileSummary `json:"participant1Profile,omitempty"`
	Participant2Profile *ProfileSummary `json:"participant2Profile,omitempty"`
	LastMessage         *Message        `json:"lastMessage,omitempty"`
}

// Message is a single direct message. ReadAt is nil until the recipient
// marks the conversation read.
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	SenderID       string     `json:"senderId"`
	Content        string     `json:"content"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`

	Sender *ProfileSummary `json:"sender,omitempty"`
}
