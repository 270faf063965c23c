package postgres

import (
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/pick"
)

type pickTableModel struct {
	ID            string     `db:"id"`
	ParticipantID string     `db:"participant_id"`
	GameID        string     `db:"game_id"`
	Side          string     `db:"side"`
	Spread        *float64   `db:"spread"`
	TriplePlay    bool       `db:"triple_play"`
	Submitted     bool       `db:"submitted"`
	Result        *string    `db:"result"`
	EvaluatedAt   *time.Time `db:"evaluated_at"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

func pickColumns() []string {
	return []string{
		"id", "participant_id", "game_id", "side", "spread",
		"triple_play", "submitted", "result", "evaluated_at",
		"created_at", "updated_at",
	}
}

func prefixedPickColumns(alias string) []string {
	cols := pickColumns()
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		out = append(out, alias+"."+c)
	}
	return out
}

func pickFromRow(row pickTableModel) pick.Pick {
	item := pick.Pick{
		ID:            row.ID,
		ParticipantID: row.ParticipantID,
		GameID:        row.GameID,
		Side:          pick.Side(row.Side),
		Spread:        row.Spread,
		TriplePlay:    row.TriplePlay,
		Submitted:     row.Submitted,
		EvaluatedAt:   row.EvaluatedAt,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.Result != nil {
		result := pick.Result(*row.Result)
		item.Result = &result
	}
	return item
}

func pickInsertModel(item pick.Pick) pickTableModel {
	row := pickTableModel{
		ID:            item.ID,
		ParticipantID: item.ParticipantID,
		GameID:        item.GameID,
		Side:          string(item.Side),
		Spread:        item.Spread,
		TriplePlay:    item.TriplePlay,
		Submitted:     item.Submitted,
		EvaluatedAt:   item.EvaluatedAt,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
	if item.Result != nil {
		result := string(*item.Result)
		row.Result = &result
	}
	return row
}
