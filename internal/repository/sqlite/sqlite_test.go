package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/pulse/internal/model"
)

// newTestDB opens an in-memory database with the full schema and triggers
// applied. t.Cleanup closes it even if the test fails mid-way.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestProfile(t *testing.T, db *DB, username string) *model.Profile {
	t.Helper()
	p := &model.Profile{
		Username:    username,
		DisplayName: username,
		Email:       username + "@example.com",
	}
	if err := db.Profiles().Create(context.Background(), p); err != nil {
		t.Fatalf("failed to create test profile %s: %v", username, err)
	}
	return p
}

func createTestPost(t *testing.T, db *DB, userID, content string) *model.Post {
	t.Helper()
	p := &model.Post{
		UserID:    userID,
		Content:   content,
		Mood:      "spark",
		Dimension: "personal",
	}
	if err := db.Posts().Create(context.Background(), p); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return p
}

func createTestComment(t *testing.T, db *DB, postID, userID, content string) *model.Comment {
	t.Helper()
	c := &model.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := db.Comments().Create(context.Background(), c); err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}
	return c
}

func createTestConversation(t *testing.T, db *DB, p1, p2 string) *model.Conversation {
	t.Helper()
	if p2 < p1 {
		p1, p2 = p2, p1
	}
	c := &model.Conversation{Participant1: p1, Participant2: p2}
	if err := db.Conversations().Create(context.Background(), c); err != nil {
		t.Fatalf("failed to create test conversation: %v", err)
	}
	return c
}

func createTestMessage(t *testing.T, db *DB, convID, senderID, content string) *model.Message {
	t.Helper()
	m := &model.Message{
		ConversationID: convID,
		SenderID:       senderID,
		Content:        content,
	}
	if err := db.Messages().Create(context.Background(), m); err != nil {
		t.Fatalf("failed to create test message: %v", err)
	}
	return m
}
