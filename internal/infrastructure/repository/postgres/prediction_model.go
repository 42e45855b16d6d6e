package postgres

import (
	"time"

	"github.com/matchcall/predictor-league/internal/domain/prediction"
)

type predictionTableModel struct {
	ID            int64      `db:"id"`
	PublicID      string     `db:"public_id"`
	UserID        string     `db:"user_id"`
	FixtureID     string     `db:"fixture_public_id"`
	PredictedHome int        `db:"predicted_home"`
	PredictedAway int        `db:"predicted_away"`
	IsBonus       bool       `db:"is_bonus"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

type predictionInsertModel struct {
	PublicID      string    `db:"public_id"`
	UserID        string    `db:"user_id"`
	FixtureID     string    `db:"fixture_public_id"`
	PredictedHome int       `db:"predicted_home"`
	PredictedAway int       `db:"predicted_away"`
	IsBonus       bool      `db:"is_bonus"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func predictionFromRow(row predictionTableModel) prediction.Prediction {
	return prediction.Prediction{
		ID:            row.PublicID,
		UserID:        row.UserID,
		FixtureID:     row.FixtureID,
		PredictedHome: row.PredictedHome,
		PredictedAway: row.PredictedAway,
		IsBonus:       row.IsBonus,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
