package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/matchcall/predictor-league/internal/domain/chat"
	qb "github.com/matchcall/predictor-league/internal/platform/querybuilder"
)

type ChatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

type chatMessageTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	LeagueID  string     `db:"league_public_id"`
	UserID    string     `db:"user_id"`
	Body      string     `db:"body"`
	CreatedAt time.Time  `db:"created_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type chatMessageInsertModel struct {
	PublicID  string    `db:"public_id"`
	LeagueID  string    `db:"league_public_id"`
	UserID    string    `db:"user_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}

// ListByLeague returns the newest limit messages in chronological order.
func (r *ChatRepository) ListByLeague(ctx context.Context, leagueID string, limit int) ([]chat.Message, error) {
	query, args, err := qb.Select("*").From("league_messages").
		Where(
			qb.Eq("league_public_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list league messages query: %w", err)
	}

	var rows []chatMessageTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list league messages: %w", err)
	}

	out := make([]chat.Message, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = chat.Message{
			ID:        row.PublicID,
			LeagueID:  row.LeagueID,
			UserID:    row.UserID,
			Body:      row.Body,
			CreatedAt: row.CreatedAt,
		}
	}
	return out, nil
}

func (r *ChatRepository) Create(ctx context.Context, m chat.Message) error {
	insertModel := chatMessageInsertModel{
		PublicID:  m.ID,
		LeagueID:  m.LeagueID,
		UserID:    m.UserID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
	query, args, err := qb.InsertModel("league_messages", insertModel, "")
	if err != nil {
		return fmt.Errorf("build create league message query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create league message: %w", err)
	}

	return nil
}
