package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/matchcall/predictor-league/internal/domain/league"
	qb "github.com/matchcall/predictor-league/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) Create(ctx context.Context, l league.League) error {
	insertModel := leagueInsertModel{
		PublicID:   l.ID,
		Name:       l.Name,
		Visibility: string(l.Visibility),
		InviteCode: nullString(l.InviteCode),
		HasChat:    l.HasChat,
		CreatedBy:  l.CreatedBy,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
	query, args, err := qb.InsertModel("leagues", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create league query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create league: %w", err)
	}

	return nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(
			qb.Eq("public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by id query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by id: %w", err)
	}

	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) GetByInviteCode(ctx context.Context, inviteCode string) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(
			qb.Eq("invite_code", inviteCode),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league by invite code query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by invite code: %w", err)
	}

	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) ListPublic(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(
			qb.Eq("visibility", string(league.VisibilityPublic)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list public leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list public leagues: %w", err)
	}

	return leaguesFromRows(rows), nil
}

func (r *LeagueRepository) ListByUser(ctx context.Context, userID string) ([]league.League, error) {
	query, args, err := qb.Select("l.*").
		From("leagues l JOIN league_members lm ON lm.league_public_id = l.public_id").
		Where(
			qb.Eq("lm.user_id", userID),
			qb.IsNull("lm.deleted_at"),
			qb.IsNull("l.deleted_at"),
		).
		OrderBy("lm.joined_at", "l.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues by user query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leagues by user: %w", err)
	}

	return leaguesFromRows(rows), nil
}

func (r *LeagueRepository) AddMember(ctx context.Context, m league.Membership) error {
	insertModel := leagueMemberInsertModel{
		LeagueID: m.LeagueID,
		UserID:   m.UserID,
		JoinedAt: m.JoinedAt,
	}
	query, args, err := qb.InsertModel("league_members", insertModel, "")
	if err != nil {
		return fmt.Errorf("build add league member query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add league member: %w", err)
	}

	return nil
}

func (r *LeagueRepository) RemoveMember(ctx context.Context, leagueID, userID string) error {
	query, args, err := qb.Update("league_members").
		SetExpr("deleted_at", "NOW()").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build remove league member query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("remove league member: %w", err)
	}
	return nil
}

func (r *LeagueRepository) IsMember(ctx context.Context, leagueID, userID string) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("league_members").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build is member query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("is member: %w", err)
	}
	return count > 0, nil
}

// ListMembers orders by join time: standings use this order for the stable
// tiebreak, so it must not change across calls.
func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.Membership, error) {
	query, args, err := qb.Select("*").From("league_members").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("joined_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league members query: %w", err)
	}

	var rows []leagueMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}

	out := make([]league.Membership, 0, len(rows))
	for _, row := range rows {
		out = append(out, membershipFromRow(row))
	}
	return out, nil
}

func leaguesFromRows(rows []leagueTableModel) []league.League {
	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueFromRow(row))
	}
	return out
}
