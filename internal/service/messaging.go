package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/pulse/internal/apperror"
	"github.com/sakif/pulse/internal/model"
	"github.com/sakif/pulse/internal/repository"
)

// MessagingService owns direct-message conversations.
type MessagingService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	profiles      repository.ProfileRepository
	logger        *slog.Logger
}

func NewMessagingService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	profiles repository.ProfileRepository,
	logger *slog.Logger,
) *MessagingService {
	return &MessagingService{
		conversations: conversations,
		messages:      messages,
		profiles:      profiles,
		logger:        logger,
	}
}

// CreateConversation opens a thread between userID and otherID, or returns
// the existing one. The pair is stored in lexicographic order so the same
// two users always map to the same row regardless of who initiates.
func (s *MessagingService) CreateConversation(ctx context.Context, userID, otherID string) (*model.Conversation, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to start a conversation")
	}
	if otherID == "" {
		return nil, apperror.ValidationFailed("participantId", "a participant is required")
	}
	if userID == otherID {
		return nil, apperror.ValidationFailed("participantId", "you cannot start a conversation with yourself")
	}

	if _, err := s.profiles.GetByID(ctx, otherID); err != nil {
		return nil, err
	}

	p1, p2 := orderPair(userID, otherID)
	existing, err := s.conversations.FindByParticipants(ctx, p1, p2)
	if err != nil {
		return nil, fmt.Errorf("service/messaging: finding conversation: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	conv := &model.Conversation{
		Participant1: p1,
		Participant2: p2,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("service/messaging: creating conversation: %w", err)
	}

	s.logger.Info("conversation created",
		slog.String("conversationID", conv.ID),
		slog.String("participant1", p1),
		slog.String("participant2", p2),
	)

	return conv, nil
}

// GetConversations lists the user's threads, most recently active first,
// with both participant profiles and the latest message attached.
func (s *MessagingService) GetConversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to read conversations")
	}

	convs, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/messaging: listing conversations: %w", err)
	}
	return convs, nil
}

// GetMessages returns a conversation's messages oldest-first. Only the two
// participants may read a thread.
func (s *MessagingService) GetMessages(ctx context.Context, userID, conversationID string) ([]model.Message, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to read messages")
	}
	if _, err := s.requireParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("service/messaging: listing messages: %w", err)
	}
	return msgs, nil
}

// SendMessage appends a message to a conversation the sender participates in.
// The conversation's last-activity timestamp is bumped by a database trigger.
func (s *MessagingService) SendMessage(ctx context.Context, userID, conversationID, content string) (*model.Message, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to send messages")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "message content must not be empty")
	}
	if len(content) > maxContentLength {
		return nil, apperror.ValidationFailed("content", fmt.Sprintf("message content must be at most %d characters", maxContentLength))
	}

	if _, err := s.requireParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("service/messaging: creating message: %w", err)
	}

	return msg, nil
}

// MarkRead stamps read_at on every unread message in the conversation that
// the caller did not send.
func (s *MessagingService) MarkRead(ctx context.Context, userID, conversationID string) error {
	if userID == "" {
		return apperror.Unauthorized("sign in to read messages")
	}
	if _, err := s.requireParticipant(ctx, userID, conversationID); err != nil {
		return err
	}

	if err := s.messages.MarkRead(ctx, conversationID, userID); err != nil {
		return fmt.Errorf("service/messaging: marking messages read: %w", err)
	}
	return nil
}

func (s *MessagingService) requireParticipant(ctx context.Context, userID, conversationID string) (*model.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Participant1 != userID && conv.Participant2 != userID {
		return nil, apperror.Forbidden("you are not a participant of this conversation")
	}
	return conv, nil
}

func orderPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}
