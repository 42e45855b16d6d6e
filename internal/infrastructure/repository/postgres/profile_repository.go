package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/matchcall/predictor-league/internal/domain/profile"
	qb "github.com/matchcall/predictor-league/internal/platform/querybuilder"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

type profileTableModel struct {
	ID        int64      `db:"id"`
	UserID    string     `db:"user_id"`
	Username  string     `db:"username"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type profileInsertModel struct {
	UserID    string    `db:"user_id"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func profileFromRow(row profileTableModel) profile.Profile {
	return profile.Profile{
		UserID:    row.UserID,
		Username:  row.Username,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (profile.Profile, bool, error) {
	query, args, err := qb.Select("*").From("profiles").
		Where(
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("build get profile query: %w", err)
	}

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return profile.Profile{}, false, nil
		}
		return profile.Profile{}, false, fmt.Errorf("get profile: %w", err)
	}

	return profileFromRow(row), true, nil
}

func (r *ProfileRepository) ListByUserIDs(ctx context.Context, userIDs []string) ([]profile.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	values := make([]any, len(userIDs))
	for i, id := range userIDs {
		values[i] = id
	}

	query, args, err := qb.Select("*").From("profiles").
		Where(
			qb.In("user_id", values),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list profiles query: %w", err)
	}

	var rows []profileTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	out := make([]profile.Profile, len(rows))
	for i, row := range rows {
		out[i] = profileFromRow(row)
	}
	return out, nil
}

// Upsert keeps the original created_at when a user renames themselves.
func (r *ProfileRepository) Upsert(ctx context.Context, p profile.Profile) error {
	insertModel := profileInsertModel{
		UserID:    p.UserID,
		Username:  p.Username,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}

	suffix := `ON CONFLICT (user_id) DO UPDATE SET
		username = EXCLUDED.username,
		updated_at = EXCLUDED.updated_at,
		deleted_at = NULL`
	query, args, err := qb.InsertModel("profiles", insertModel, suffix)
	if err != nil {
		return fmt.Errorf("build upsert profile query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	return nil
}
