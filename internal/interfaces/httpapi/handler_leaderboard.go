package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/matchcall/predictor-league/internal/usecase"
)

type leaderboardRowDTO struct {
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	Rank           int    `json:"rank"`
	OverallPoints  int    `json:"overallPoints"`
	MonthPoints    int    `json:"monthPoints"`
	WeekPoints     int    `json:"weekPoints"`
	LastWeekPoints int    `json:"lastWeekPoints"`
	WeekDelta      int    `json:"weekDelta"`
}

type monthlyHonourDTO struct {
	Month    string `json:"month"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Points   int    `json:"points"`
}

type userStatsDTO struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Predicted int    `json:"predicted"`
	Exact     int    `json:"exact"`
	Outcome   int    `json:"outcome"`
	Wrong     int    `json:"wrong"`
	BonusUsed int    `json:"bonusUsed"`
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	rows, err := h.leaderboardService.Leaderboard(ctx, principal.UserID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardRowDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, leaderboardRowDTO{
			UserID:         row.UserID,
			Username:       row.Username,
			Rank:           row.Rank,
			OverallPoints:  row.OverallPoints,
			MonthPoints:    row.MonthPoints,
			WeekPoints:     row.WeekPoints,
			LastWeekPoints: row.LastWeekPoints,
			WeekDelta:      row.WeekDelta,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMonthlyHonours(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMonthlyHonours")
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
	honours, err := h.leaderboardService.Honours(ctx, principal.UserID, leagueID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "get monthly honours failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]monthlyHonourDTO, 0, len(honours))
	for _, hon := range honours {
		items = append(items, monthlyHonourDTO{
			Month:    hon.MonthLabel,
			UserID:   hon.UserID,
			Username: hon.Username,
			Points:   hon.Points,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetLeagueStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueStats")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	stats, err := h.leaderboardService.Stats(ctx, principal.UserID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get league stats failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]userStatsDTO, 0, len(stats))
	for _, st := range stats {
		items = append(items, userStatsDTO{
			UserID:    st.UserID,
			Username:  st.Username,
			Predicted: st.Predicted,
			Exact:     st.Exact,
			Outcome:   st.Outcome,
			Wrong:     st.Wrong,
			BonusUsed: st.BonusUsed,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
