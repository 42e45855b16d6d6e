package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/matchcall/predictor-league/internal/domain/chat"
	"github.com/matchcall/predictor-league/internal/domain/league"
	idgen "github.com/matchcall/predictor-league/internal/platform/id"
)

const defaultChatPageSize = 50

type PostMessageInput struct {
	UserID   string
	LeagueID string
	Body     string
}

type ChatService struct {
	leagueRepo league.Repository
	chatRepo   chat.Repository
	idGen      idgen.Generator
	now        func() time.Time
}

func NewChatService(leagueRepo league.Repository, chatRepo chat.Repository, idGen idgen.Generator) *ChatService {
	return &ChatService{
		leagueRepo: leagueRepo,
		chatRepo:   chatRepo,
		idGen:      idGen,
		now:        time.Now,
	}
}

// ListMessages returns the league's message board, newest last. The board is
// member-only and only exists when the league has chat enabled.
func (s *ChatService) ListMessages(ctx context.Context, userID, leagueID string, limit int) ([]chat.Message, error) {
	ctx, span := startUsecaseSpan(ctx, "ChatService.ListMessages")
	defer span.End()

	if err := s.requireChatAccess(ctx, userID, leagueID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultChatPageSize
	}

	messages, err := s.chatRepo.ListByLeague(ctx, leagueID, limit)
	if err != nil {
		return nil, fmt.Errorf("list league messages: %w", err)
	}
	return messages, nil
}

func (s *ChatService) PostMessage(ctx context.Context, input PostMessageInput) (chat.Message, error) {
	ctx, span := startUsecaseSpan(ctx, "ChatService.PostMessage")
	defer span.End()

	if err := s.requireChatAccess(ctx, input.UserID, input.LeagueID); err != nil {
		return chat.Message{}, err
	}

	body, err := chat.NormalizeBody(input.Body)
	if err != nil {
		return chat.Message{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return chat.Message{}, fmt.Errorf("generate message id: %w", err)
	}
	message := chat.Message{
		ID:        id,
		LeagueID:  strings.TrimSpace(input.LeagueID),
		UserID:    strings.TrimSpace(input.UserID),
		Body:      body,
		CreatedAt: s.now().UTC(),
	}

	if err := s.chatRepo.Create(ctx, message); err != nil {
		return chat.Message{}, fmt.Errorf("create league message: %w", err)
	}
	return message, nil
}

func (s *ChatService) requireChatAccess(ctx context.Context, userID, leagueID string) error {
	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	if userID == "" || leagueID == "" {
		return fmt.Errorf("%w: user id and league id are required", ErrInvalidInput)
	}

	found, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("get league by id: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: league not found", ErrNotFound)
	}
	if !found.HasChat {
		return fmt.Errorf("%w: %v", ErrForbidden, chat.ErrChatDisabled)
	}

	isMember, err := s.leagueRepo.IsMember(ctx, leagueID, userID)
	if err != nil {
		return fmt.Errorf("check league member: %w", err)
	}
	if !isMember {
		return fmt.Errorf("%w: you are not a member of this league", ErrForbidden)
	}
	return nil
}
