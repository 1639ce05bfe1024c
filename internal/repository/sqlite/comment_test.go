package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/pulse/internal/apperror"
	"github.com/sakif/pulse/internal/model"
)

func TestCommentCreate(t *testing.T) {
	db := newTestDB(t)
	author := createTestProfile(t, db, "nova")
	post := createTestPost(t, db, author.ID, "hello")

	c := &model.Comment{PostID: post.ID, UserID: author.ID, Content: "hi there"}
	if err := db.Comments().Create(context.Background(), c); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.ID == "" {
		t.Error("Create() did not set comment.ID")
	}

	got, err := db.Comments().GetByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Content != "hi there" {
		t.Errorf("GetByID() content = %q, want %q", got.Content, "hi there")
	}
	if got.Author == nil || got.Author.Username != "nova" {
		t.Errorf("GetByID() author = %+v, want username nova", got.Author)
	}
	if got.ParentID != nil {
		t.Errorf("GetByID() parentID = %v, want nil", got.ParentID)
	}
}

func TestCommentCreate_BumpsPostCommentCount(t *testing.T) {
	db := newTestDB(t)
	author := createTestProfile(t, db, "nova")
	post := createTestPost(t, db, author.ID, "hello")

	createTestComment(t, db, post.ID, author.ID, "one")
	createTestComment(t, db, post.ID, author.ID, "two")

	got, err := db.Posts().GetByID(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.CommentsCount != 2 {
		t.Errorf("comments_count = %d, want 2", got.CommentsCount)
	}
}

func TestCommentCreate_WithParent(t *testing.T) {
	db := newTestDB(t)
	author := createTestProfile(t, db, "nova")
	post := createTestPost(t, db, author.ID, "hello")
	parent := createTestComment(t, db, post.ID, author.ID, "parent")

	reply := &model.Comment{
		PostID:   post.ID,
		UserID:   author.ID,
		ParentID: &parent.ID,
		Content:  "reply",
	}
	if err := db.Comments().Create(context.Background(), reply); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := db.Comments().GetByID(context.Background(), reply.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ParentID == nil || *got.ParentID != parent.ID {
		t.Errorf("GetByID() parentID = %v, want %q", got.ParentID, parent.ID)
	}
}

func TestCommentGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Comments().GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestCommentListByPost_OldestFirst(t *testing.T) {
	db := newTestDB(t)
	author := createTestProfile(t, db, "nova")
	post := createTestPost(t, db, author.ID, "hello")

	for _, content := range []string{"first", "second", "third"} {
		createTestComment(t, db, post.ID, author.ID, content)
		time.Sleep(2 * time.Millisecond)
	}

	comments, err := db.Comments().ListByPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("ListByPost() error = %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("ListByPost() returned %d comments, want 3", len(comments))
	}
	for i, want := range []string{"first", "second", "third"} {
		if comments[i].Content != want {
			t.Errorf("comments[%d].Content = %q, want %q", i, comments[i].Content, want)
		}
	}
}

func TestCommentListByPost_Empty(t *testing.T) {
	db := newTestDB(t)
	author := createTestProfile(t, db, "nova")
	post := createTestPost(t, db, author.ID, "hello")

	comments, err := db.Comments().ListByPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("ListByPost() error = %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("ListByPost() returned %d comments, want 0", len(comments))
	}
}
