package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sakif/pulse/internal/apperror"
	"github.com/sakif/pulse/internal/auth"
	"github.com/sakif/pulse/internal/model"
	"github.com/sakif/pulse/internal/repository"
)

// In-memory fakes for the repository interfaces. Plain fakes rather than a
// mock framework; what each one does is visible right here.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeProfileRepo struct {
	profiles map[string]*model.Profile
	nextID   int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*model.Profile), nextID: 1}
}

func (f *fakeProfileRepo) add(p *model.Profile) *model.Profile {
	if p.ID == "" {
		p.ID = fmt.Sprintf("fake-profile-%d", f.nextID)
		f.nextID++
	}
	copied := *p
	f.profiles[p.ID] = &copied
	return &copied
}

func (f *fakeProfileRepo) Create(_ context.Context, p *model.Profile) error {
	for _, existing := range f.profiles {
		if existing.Username == p.Username {
			return apperror.Conflict("profile", p.Username)
		}
		if p.Email != "" && existing.Email == p.Email {
			return apperror.Conflict("profile", p.Email)
		}
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.add(p)
	return nil
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id string) (*model.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, apperror.NotFound("profile", id)
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*model.Profile, error) {
	for _, p := range f.profiles {
		if p.Email == email && email != "" {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("profile", email)
}

func (f *fakeProfileRepo) GetByGoogleID(_ context.Context, googleID string) (*model.Profile, error) {
	for _, p := range f.profiles {
		if p.GoogleID == googleID && googleID != "" {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("profile", googleID)
}

func (f *fakeProfileRepo) UsernameTaken(_ context.Context, username string) (bool, error) {
	for _, p := range f.profiles {
		if p.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProfileRepo) Update(_ context.Context, p *model.Profile) error {
	if _, ok := f.profiles[p.ID]; !ok {
		return apperror.NotFound("profile", p.ID)
	}
	copied := *p
	f.profiles[p.ID] = &copied
	return nil
}

type fakePostRepo struct {
	posts map[string]*model.Post
	// lastListOpts records what GetPosts passed down, for clamp assertions.
	lastListOpts repository.ListOptions
	nextID       int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[string]*model.Post), nextID: 1}
}

func (f *fakePostRepo) Create(_ context.Context, p *model.Post) error {
	p.ID = fmt.Sprintf("fake-post-%d", f.nextID)
	f.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	copied := *p
	f.posts[p.ID] = &copied
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id string) (*model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	copied := *p
	return &copied, nil
}

func (f *fakePostRepo) List(_ context.Context, _ string, opts repository.ListOptions) ([]model.Post, error) {
	f.lastListOpts = opts
	out := []model.Post{}
	for _, p := range f.posts {
		out = append(out, *p)
	}
	return out, nil
}

type fakeCommentRepo struct {
	comments map[string]*model.Comment
	nextID   int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string]*model.Comment), nextID: 1}
}

func (f *fakeCommentRepo) Create(_ context.Context, c *model.Comment) error {
	c.ID = fmt.Sprintf("fake-comment-%d", f.nextID)
	f.nextID++
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	copied := *c
	f.comments[c.ID] = &copied
	return nil
}

func (f *fakeCommentRepo) GetByID(_ context.Context, id string) (*model.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, apperror.NotFound("comment", id)
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCommentRepo) ListByPost(_ context.Context, postID string) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeLikeRepo struct {
	// liked is keyed by "kind/userID/targetID".
	liked  map[string]bool
	counts map[string]int
}

func newFakeLikeRepo() *fakeLikeRepo {
	return &fakeLikeRepo{liked: make(map[string]bool), counts: make(map[string]int)}
}

func (f *fakeLikeRepo) toggle(kind, userID, targetID string) (bool, int, error) {
	key := kind + "/" + userID + "/" + targetID
	if f.liked[key] {
		delete(f.liked, key)
		f.counts[targetID]--
		return false, f.counts[targetID], nil
	}
	f.liked[key] = true
	f.counts[targetID]++
	return true, f.counts[targetID], nil
}

func (f *fakeLikeRepo) TogglePostLike(_ context.Context, userID, postID string) (bool, int, error) {
	return f.toggle("post", userID, postID)
}

func (f *fakeLikeRepo) ToggleCommentLike(_ context.Context, userID, commentID string) (bool, int, error) {
	return f.toggle("comment", userID, commentID)
}

type fakeFollowRepo struct {
	edges map[string]bool // "follower/following"
}

func newFakeFollowRepo() *fakeFollowRepo {
	return &fakeFollowRepo{edges: make(map[string]bool)}
}

func (f *fakeFollowRepo) Toggle(_ context.Context, followerID, followingID string) (bool, error) {
	key := followerID + "/" + followingID
	if f.edges[key] {
		delete(f.edges, key)
		return false, nil
	}
	f.edges[key] = true
	return true, nil
}

func (f *fakeFollowRepo) Exists(_ context.Context, followerID, followingID string) (bool, error) {
	return f.edges[followerID+"/"+followingID], nil
}

type fakeConversationRepo struct {
	convs  map[string]*model.Conversation
	nextID int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{convs: make(map[string]*model.Conversation), nextID: 1}
}

func (f *fakeConversationRepo) Create(_ context.Context, c *model.Conversation) error {
	for _, existing := range f.convs {
		if existing.Participant1 == c.Participant1 && existing.Participant2 == c.Participant2 {
			return apperror.Conflict("conversation", c.Participant1+"/"+c.Participant2)
		}
	}
	c.ID = fmt.Sprintf("fake-conv-%d", f.nextID)
	f.nextID++
	c.CreatedAt = time.Now()
	c.LastMessageAt = c.CreatedAt
	copied := *c
	f.convs[c.ID] = &copied
	return nil
}

func (f *fakeConversationRepo) GetByID(_ context.Context, id string) (*model.Conversation, error) {
	c, ok := f.convs[id]
	if !ok {
		return nil, apperror.NotFound("conversation", id)
	}
	copied := *c
	return &copied, nil
}

func (f *fakeConversationRepo) FindByParticipants(_ context.Context, p1, p2 string) (*model.Conversation, error) {
	for _, c := range f.convs {
		if c.Participant1 == p1 && c.Participant2 == p2 {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeConversationRepo) ListForUser(_ context.Context, userID string) ([]model.Conversation, error) {
	out := []model.Conversation{}
	for _, c := range f.convs {
		if c.Participant1 == userID || c.Participant2 == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	messages []*model.Message
	nextID   int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{nextID: 1}
}

func (f *fakeMessageRepo) Create(_ context.Context, m *model.Message) error {
	m.ID = fmt.Sprintf("fake-msg-%d", f.nextID)
	f.nextID++
	m.CreatedAt = time.Now()
	copied := *m
	f.messages = append(f.messages, &copied)
	return nil
}

func (f *fakeMessageRepo) ListByConversation(_ context.Context, conversationID string) ([]model.Message, error) {
	out := []model.Message{}
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkRead(_ context.Context, conversationID, readerID string) error {
	now := time.Now()
	for _, m := range f.messages {
		if m.ConversationID == conversationID && m.SenderID != readerID && m.ReadAt == nil {
			t := now
			m.ReadAt = &t
		}
	}
	return nil
}

// Interface checks: the fakes must track the real repository contracts.
var (
	_ repository.ProfileRepository      = (*fakeProfileRepo)(nil)
	_ repository.PostRepository         = (*fakePostRepo)(nil)
	_ repository.CommentRepository      = (*fakeCommentRepo)(nil)
	_ repository.LikeRepository         = (*fakeLikeRepo)(nil)
	_ repository.FollowRepository       = (*fakeFollowRepo)(nil)
	_ repository.ConversationRepository = (*fakeConversationRepo)(nil)
	_ repository.MessageRepository      = (*fakeMessageRepo)(nil)
)

func newTestSessionService(t *testing.T) (*SessionService, *fakeProfileRepo) {
	t.Helper()
	profiles := newFakeProfileRepo()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(4)
	return NewSessionService(profiles, tokens, passwords, testLogger()), profiles
}

func longString(n int) string {
	return strings.Repeat("x", n)
}
