package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/matchcall/predictor-league/internal/usecase"
)

type submitPredictionRequest struct {
	PredictedHome int  `json:"predictedHome" validate:"min=0,max=99"`
	PredictedAway int  `json:"predictedAway" validate:"min=0,max=99"`
	IsBonus       bool `json:"isBonus"`
}

type predictionDTO struct {
	FixtureID     string `json:"fixtureId"`
	PredictedHome int    `json:"predictedHome"`
	PredictedAway int    `json:"predictedAway"`
	IsBonus       bool   `json:"isBonus"`
	UpdatedAt     string `json:"updatedAt"`
}

type predictionViewDTO struct {
	predictionDTO
	Points  int  `json:"points"`
	Settled bool `json:"settled"`
}

func (h *Handler) SubmitPrediction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitPrediction")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))
	if fixtureID == "" {
		writeError(ctx, w, fmt.Errorf("%w: fixture id is required", usecase.ErrInvalidInput))
		return
	}

	var req submitPredictionRequest
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

	stored, err := h.predictionService.Submit(ctx, usecase.SubmitPredictionInput{
		UserID:        principal.UserID,
		FixtureID:     fixtureID,
		PredictedHome: req.PredictedHome,
		PredictedAway: req.PredictedAway,
		IsBonus:       req.IsBonus,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit prediction failed", "user_id", principal.UserID, "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, predictionDTO{
		FixtureID:     stored.FixtureID,
		PredictedHome: stored.PredictedHome,
		PredictedAway: stored.PredictedAway,
		IsBonus:       stored.IsBonus,
		UpdatedAt:     stored.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) ListMyPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyPredictions")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	views, err := h.predictionService.ListMine(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list predictions failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]predictionViewDTO, 0, len(views))
	for _, v := range views {
		items = append(items, predictionViewToDTO(ctx, v))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func predictionViewToDTO(ctx context.Context, v usecase.PredictionView) predictionViewDTO {
	ctx, span := startSpan(ctx, "httpapi.predictionViewToDTO")
	defer span.End()

	return predictionViewDTO{
		predictionDTO: predictionDTO{
			FixtureID:     v.Prediction.FixtureID,
			PredictedHome: v.Prediction.PredictedHome,
			PredictedAway: v.Prediction.PredictedAway,
			IsBonus:       v.Prediction.IsBonus,
			UpdatedAt:     v.Prediction.UpdatedAt.UTC().Format(time.RFC3339),
		},
		Points:  v.Points,
		Settled: v.Settled,
	}
}
