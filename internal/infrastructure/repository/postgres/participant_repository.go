package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pickemhq/pickem-pool/internal/domain/participant"
	qb "github.com/pickemhq/pickem-pool/internal/platform/querybuilder"
)

type participantTableModel struct {
	ID          string    `db:"id"`
	DisplayName string    `db:"display_name"`
	JoinedAt    time.Time `db:"joined_at"`
}

func participantColumns() []string {
	return []string{"id", "display_name", "joined_at"}
}

type ParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (participant.Participant, bool, error) {
	query, args, err := qb.Select(participantColumns()...).
		From("participants").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return participant.Participant{}, false, fmt.Errorf("build get participant query: %w", err)
	}

	var row participantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return participant.Participant{}, false, nil
		}
		return participant.Participant{}, false, fmt.Errorf("get participant: %w", err)
	}
	return participant.Participant{ID: row.ID, DisplayName: row.DisplayName, JoinedAt: row.JoinedAt}, true, nil
}

func (r *ParticipantRepository) Create(ctx context.Context, item participant.Participant) error {
	query, args, err := qb.InsertModel("participants", participantTableModel{
		ID:          item.ID,
		DisplayName: item.DisplayName,
		JoinedAt:    item.JoinedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert participant query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert participant %s: %w", item.ID, err)
	}
	return nil
}
