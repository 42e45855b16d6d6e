package postgres

import (
	"database/sql"
	"time"

	"github.com/matchcall/predictor-league/internal/domain/fixture"
)

type fixtureTableModel struct {
	ID         int64         `db:"id"`
	PublicID   string        `db:"public_id"`
	ExternalID int64         `db:"external_id"`
	Matchday   int           `db:"matchday"`
	HomeTeam   string        `db:"home_team"`
	AwayTeam   string        `db:"away_team"`
	KickoffAt  time.Time     `db:"kickoff_at"`
	Status     string        `db:"status"`
	HomeScore  sql.NullInt64 `db:"home_score"`
	AwayScore  sql.NullInt64 `db:"away_score"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
	DeletedAt  *time.Time    `db:"deleted_at"`
}

type fixtureInsertModel struct {
	PublicID   string        `db:"public_id"`
	ExternalID int64         `db:"external_id"`
	Matchday   int           `db:"matchday"`
	HomeTeam   string        `db:"home_team"`
	AwayTeam   string        `db:"away_team"`
	KickoffAt  time.Time     `db:"kickoff_at"`
	Status     string        `db:"status"`
	HomeScore  sql.NullInt64 `db:"home_score"`
	AwayScore  sql.NullInt64 `db:"away_score"`
}

func fixtureFromRow(row fixtureTableModel) fixture.Fixture {
	return fixture.Fixture{
		ID:         row.PublicID,
		ExternalID: row.ExternalID,
		Matchday:   row.Matchday,
		HomeTeam:   row.HomeTeam,
		AwayTeam:   row.AwayTeam,
		KickoffAt:  row.KickoffAt,
		Status:     row.Status,
		HomeScore:  nullInt64ToIntPtr(row.HomeScore),
		AwayScore:  nullInt64ToIntPtr(row.AwayScore),
	}
}

func fixtureToInsertModel(f fixture.Fixture) fixtureInsertModel {
	return fixtureInsertModel{
		PublicID:   f.ID,
		ExternalID: f.ExternalID,
		Matchday:   f.Matchday,
		HomeTeam:   f.HomeTeam,
		AwayTeam:   f.AwayTeam,
		KickoffAt:  f.KickoffAt,
		Status:     f.Status,
		HomeScore:  intPtrToNullInt64(f.HomeScore),
		AwayScore:  intPtrToNullInt64(f.AwayScore),
	}
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func intPtrToNullInt64(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
