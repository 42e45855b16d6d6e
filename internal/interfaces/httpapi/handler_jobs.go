package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/matchcall/predictor-league/internal/usecase"
)

type importFixturesJobRequest struct {
	MaxWorkers   int  `json:"max_workers" validate:"min=0,max=64"`
	ScheduleNext bool `json:"schedule_next"`
}

type importFixturesJobDTO struct {
	Fetched       int   `json:"fetched"`
	Upserted      int   `json:"upserted"`
	Skipped       int   `json:"skipped"`
	MatchdayCount int   `json:"matchdayCount"`
	WorkerCount   int   `json:"workerCount"`
	DurationMs    int64 `json:"durationMs"`
}

func (h *Handler) RunImportFixturesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunImportFixturesJob")
	defer span.End()

	if h.ingestionService == nil {
		writeError(ctx, w, fmt.Errorf("%w: fixture ingestion is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeImportFixturesJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.ingestionService.ImportFixtures(ctx, usecase.ImportFixturesInput{
		MaxWorkers:   req.MaxWorkers,
		ScheduleNext: req.ScheduleNext,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run import fixtures job failed", "schedule_next", req.ScheduleNext, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, importFixturesJobDTO{
		Fetched:       result.Fetched,
		Upserted:      result.Upserted,
		Skipped:       result.Skipped,
		MatchdayCount: result.MatchdayCount,
		WorkerCount:   result.WorkerCount,
		DurationMs:    result.DurationMs,
	})
}

// decodeImportFixturesJobRequest tolerates an empty body: scheduler pings
// carry no payload.
func decodeImportFixturesJobRequest(r *http.Request) (importFixturesJobRequest, error) {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req importFixturesJobRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return importFixturesJobRequest{}, nil
		}
		return importFixturesJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
