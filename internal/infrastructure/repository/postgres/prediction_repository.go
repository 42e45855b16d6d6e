package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/matchcall/predictor-league/internal/domain/prediction"
	qb "github.com/matchcall/predictor-league/internal/platform/querybuilder"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID string) ([]prediction.Prediction, error) {
	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select predictions by user query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select predictions by user: %w", err)
	}

	return predictionsFromRows(rows), nil
}

func (r *PredictionRepository) ListByUsers(ctx context.Context, userIDs []string) ([]prediction.Prediction, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	values := make([]any, 0, len(userIDs))
	for _, id := range userIDs {
		values = append(values, id)
	}

	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.In("user_id", values),
			qb.IsNull("deleted_at"),
		).
		OrderBy("user_id", "created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select predictions by users query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select predictions by users: %w", err)
	}

	return predictionsFromRows(rows), nil
}

func (r *PredictionRepository) ListByUserAndFixtures(ctx context.Context, userID string, fixtureIDs []string) ([]prediction.Prediction, error) {
	if len(fixtureIDs) == 0 {
		return nil, nil
	}

	values := make([]any, 0, len(fixtureIDs))
	for _, id := range fixtureIDs {
		values = append(values, id)
	}

	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.In("fixture_public_id", values),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select predictions by user and fixtures query: %w", err)
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select predictions by user and fixtures: %w", err)
	}

	return predictionsFromRows(rows), nil
}

// Upsert is keyed on (user_id, fixture_public_id): a resubmission replaces
// the predicted scoreline and bonus flag but keeps the original public_id
// and created_at.
func (r *PredictionRepository) Upsert(ctx context.Context, p prediction.Prediction) (prediction.Prediction, error) {
	insertModel := predictionInsertModel{
		PublicID:      p.ID,
		UserID:        p.UserID,
		FixtureID:     p.FixtureID,
		PredictedHome: p.PredictedHome,
		PredictedAway: p.PredictedAway,
		IsBonus:       p.IsBonus,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	query, args, err := qb.InsertModel("predictions", insertModel, `ON CONFLICT (user_id, fixture_public_id)
DO UPDATE SET
    predicted_home = EXCLUDED.predicted_home,
    predicted_away = EXCLUDED.predicted_away,
    is_bonus = EXCLUDED.is_bonus,
    updated_at = EXCLUDED.updated_at,
    deleted_at = NULL
RETURNING *`)
	if err != nil {
		return prediction.Prediction{}, fmt.Errorf("build upsert prediction query: %w", err)
	}

	var row predictionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		return prediction.Prediction{}, fmt.Errorf("upsert prediction: %w", err)
	}

	return predictionFromRow(row), nil
}

func predictionsFromRows(rows []predictionTableModel) []prediction.Prediction {
	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, predictionFromRow(row))
	}
	return out
}
