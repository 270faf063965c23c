package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pickemhq/pickem-pool/internal/domain/week"
	qb "github.com/pickemhq/pickem-pool/internal/platform/querybuilder"
)

type WeekRepository struct {
	db *sqlx.DB
}

func NewWeekRepository(db *sqlx.DB) *WeekRepository {
	return &WeekRepository{db: db}
}

func (r *WeekRepository) GetByID(ctx context.Context, id string) (week.Week, bool, error) {
	query, args, err := qb.Select(weekColumns()...).
		From("weeks").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return week.Week{}, false, fmt.Errorf("build get week query: %w", err)
	}

	var row weekTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return week.Week{}, false, nil
		}
		return week.Week{}, false, fmt.Errorf("get week: %w", err)
	}
	return weekFromRow(row), true, nil
}

func (r *WeekRepository) ListBySeason(ctx context.Context, season int) ([]week.Week, error) {
	query, args, err := qb.Select(weekColumns()...).
		From("weeks").
		Where(qb.Eq("season", season)).
		OrderBy("starts_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list weeks query: %w", err)
	}

	var rows []weekTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list weeks by season: %w", err)
	}

	out := make([]week.Week, 0, len(rows))
	for _, row := range rows {
		out = append(out, weekFromRow(row))
	}
	return out, nil
}

func (r *WeekRepository) Create(ctx context.Context, item week.Week) error {
	query, args, err := qb.InsertModel("weeks", weekInsertModel(item), "")
	if err != nil {
		return fmt.Errorf("build insert week query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert week %s: %w", item.ID, err)
	}
	return nil
}
