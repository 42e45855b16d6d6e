package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/matchcall/predictor-league/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo fixture list into an empty database so the
// API is usable before the first import job has run.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM fixtures WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count fixtures for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, f := range memory.SeedFixtures() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO fixtures (public_id, external_id, matchday, home_team, away_team, kickoff_at, status, home_score, away_score)
VALUES (:public_id, :external_id, :matchday, :home_team, :away_team, :kickoff_at, :status, :home_score, :away_score)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":   f.ID,
			"external_id": f.ExternalID,
			"matchday":    f.Matchday,
			"home_team":   f.HomeTeam,
			"away_team":   f.AwayTeam,
			"kickoff_at":  f.KickoffAt.UTC(),
			"status":      f.Status,
			"home_score":  f.HomeScore,
			"away_score":  f.AwayScore,
		})
		if err != nil {
			return fmt.Errorf("bind seed fixture %s query: %w", f.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed fixture %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
