package postgres

import (
	"database/sql"
	"time"

	"github.com/matchcall/predictor-league/internal/domain/league"
)

type leagueTableModel struct {
	ID         int64          `db:"id"`
	PublicID   string         `db:"public_id"`
	Name       string         `db:"name"`
	Visibility string         `db:"visibility"`
	InviteCode sql.NullString `db:"invite_code"`
	HasChat    bool           `db:"has_chat"`
	CreatedBy  string         `db:"created_by"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
	DeletedAt  *time.Time     `db:"deleted_at"`
}

type leagueInsertModel struct {
	PublicID   string         `db:"public_id"`
	Name       string         `db:"name"`
	Visibility string         `db:"visibility"`
	InviteCode sql.NullString `db:"invite_code"`
	HasChat    bool           `db:"has_chat"`
	CreatedBy  string         `db:"created_by"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

type leagueMemberTableModel struct {
	ID        int64      `db:"id"`
	LeagueID  string     `db:"league_public_id"`
	UserID    string     `db:"user_id"`
	JoinedAt  time.Time  `db:"joined_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type leagueMemberInsertModel struct {
	LeagueID string    `db:"league_public_id"`
	UserID   string    `db:"user_id"`
	JoinedAt time.Time `db:"joined_at"`
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:         row.PublicID,
		Name:       row.Name,
		Visibility: league.Visibility(row.Visibility),
		InviteCode: row.InviteCode.String,
		HasChat:    row.HasChat,
		CreatedBy:  row.CreatedBy,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func membershipFromRow(row leagueMemberTableModel) league.Membership {
	return league.Membership{
		LeagueID: row.LeagueID,
		UserID:   row.UserID,
		JoinedAt: row.JoinedAt,
	}
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
