package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/matchcall/predictor-league/internal/domain/user"
	"github.com/matchcall/predictor-league/internal/platform/logging"
	"github.com/matchcall/predictor-league/internal/usecase"
)

type Handler struct {
	predictionService  *usecase.PredictionService
	leagueService      *usecase.LeagueService
	leaderboardService *usecase.LeaderboardService
	chatService        *usecase.ChatService
	ingestionService   *usecase.IngestionService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	predictionService *usecase.PredictionService,
	leagueService *usecase.LeagueService,
	leaderboardService *usecase.LeaderboardService,
	chatService *usecase.ChatService,
	ingestionService *usecase.IngestionService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		predictionService:  predictionService,
		leagueService:      leagueService,
		leaderboardService: leaderboardService,
		chatService:        chatService,
		ingestionService:   ingestionService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}
