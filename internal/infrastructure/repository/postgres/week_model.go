package postgres

import (
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/week"
)

type weekTableModel struct {
	ID               string     `db:"id"`
	Name             string     `db:"name"`
	Season           int        `db:"season"`
	StartsAt         time.Time  `db:"starts_at"`
	EndsAt           time.Time  `db:"ends_at"`
	SubmissionCutoff *time.Time `db:"submission_cutoff"`
	PickerChoiceCap  *int       `db:"picker_choice_cap"`
	TriplePlayCap    *int       `db:"triple_play_cap"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

func weekColumns() []string {
	return []string{
		"id", "name", "season", "starts_at", "ends_at",
		"submission_cutoff", "picker_choice_cap", "triple_play_cap",
		"created_at", "updated_at",
	}
}

func weekFromRow(row weekTableModel) week.Week {
	return week.Week{
		ID:               row.ID,
		Name:             row.Name,
		Season:           row.Season,
		StartsAt:         row.StartsAt,
		EndsAt:           row.EndsAt,
		SubmissionCutoff: row.SubmissionCutoff,
		PickerChoiceCap:  row.PickerChoiceCap,
		TriplePlayCap:    row.TriplePlayCap,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func weekInsertModel(item week.Week) weekTableModel {
	return weekTableModel{
		ID:               item.ID,
		Name:             item.Name,
		Season:           item.Season,
		StartsAt:         item.StartsAt,
		EndsAt:           item.EndsAt,
		SubmissionCutoff: item.SubmissionCutoff,
		PickerChoiceCap:  item.PickerChoiceCap,
		TriplePlayCap:    item.TriplePlayCap,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}
