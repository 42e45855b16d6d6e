package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/matchcall/predictor-league/internal/domain/chat"
	"github.com/matchcall/predictor-league/internal/usecase"
)

type postMessageRequest struct {
	Body string `json:"body" validate:"required,max=500"`
}

type chatMessageDTO struct {
	ID        string `json:"id"`
	LeagueID  string `json:"leagueId"`
	UserID    string `json:"userId"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

func (h *Handler) ListLeagueMessages(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueMessages")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	messages, err := h.chatService.ListMessages(ctx, principal.UserID, leagueID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list league messages failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]chatMessageDTO, 0, len(messages))
	for _, m := range messages {
		items = append(items, messageToDTO(ctx, m))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) PostLeagueMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PostLeagueMessage")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req postMessageRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	posted, err := h.chatService.PostMessage(ctx, usecase.PostMessageInput{
		UserID:   principal.UserID,
		LeagueID: leagueID,
		Body:     req.Body,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "post league message failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, messageToDTO(ctx, posted))
}

func messageToDTO(ctx context.Context, m chat.Message) chatMessageDTO {
	ctx, span := startSpan(ctx, "httpapi.messageToDTO")
	defer span.End()

	return chatMessageDTO{
		ID:        m.ID,
		LeagueID:  m.LeagueID,
		UserID:    m.UserID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
