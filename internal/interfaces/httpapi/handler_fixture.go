package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matchcall/predictor-league/internal/domain/fixture"
	"github.com/matchcall/predictor-league/internal/usecase"
)

type fixtureDTO struct {
	ID        string `json:"id"`
	Matchday  int    `json:"matchday"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	KickoffAt string `json:"kickoffAt"`
	Status    string `json:"status"`
	HomeScore *int   `json:"homeScore"`
	AwayScore *int   `json:"awayScore"`
}

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	matchday := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("matchday")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: matchday must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		matchday = parsed
	}

	fixtures, err := h.predictionService.ListFixtures(ctx, matchday)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures failed", "matchday", matchday, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]fixtureDTO, 0, len(fixtures))
	for _, f := range fixtures {
		items = append(items, fixtureToDTO(ctx, f))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func fixtureToDTO(ctx context.Context, v fixture.Fixture) fixtureDTO {
	ctx, span := startSpan(ctx, "httpapi.fixtureToDTO")
	defer span.End()

	return fixtureDTO{
		ID:        v.ID,
		Matchday:  v.Matchday,
		HomeTeam:  v.HomeTeam,
		AwayTeam:  v.AwayTeam,
		KickoffAt: v.KickoffAt.UTC().Format(time.RFC3339),
		Status:    v.Status,
		HomeScore: v.HomeScore,
		AwayScore: v.AwayScore,
	}
}
