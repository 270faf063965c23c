package postgres

import (
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/game"
)

type gameTableModel struct {
	ID             string     `db:"id"`
	WeekID         string     `db:"week_id"`
	HomeTeam       string     `db:"home_team"`
	AwayTeam       string     `db:"away_team"`
	KickoffAt      time.Time  `db:"kickoff_at"`
	Spread         *float64   `db:"spread"`
	Total          *float64   `db:"total"`
	MoneylineHome  *int       `db:"moneyline_home"`
	MoneylineAway  *int       `db:"moneyline_away"`
	QuoteSource    *string    `db:"quote_source"`
	QuotedAt       *time.Time `db:"quoted_at"`
	MustPick       bool       `db:"must_pick"`
	HomeScore      *int       `db:"home_score"`
	AwayScore      *int       `db:"away_score"`
	ManualScore    bool       `db:"manual_score"`
	Status         string     `db:"status"`
	ExternalID     *int64     `db:"external_id"`
	OddsSyncedAt   *time.Time `db:"odds_synced_at"`
	ScoresSyncedAt *time.Time `db:"scores_synced_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

func gameColumns() []string {
	return []string{
		"id", "week_id", "home_team", "away_team", "kickoff_at",
		"spread", "total", "moneyline_home", "moneyline_away", "quote_source", "quoted_at",
		"must_pick", "home_score", "away_score", "manual_score", "status",
		"external_id", "odds_synced_at", "scores_synced_at",
		"created_at", "updated_at",
	}
}

func gameFromRow(row gameTableModel) game.Game {
	item := game.Game{
		ID:             row.ID,
		WeekID:         row.WeekID,
		HomeTeam:       row.HomeTeam,
		AwayTeam:       row.AwayTeam,
		KickoffAt:      row.KickoffAt,
		MustPick:       row.MustPick,
		HomeScore:      row.HomeScore,
		AwayScore:      row.AwayScore,
		ManualScore:    row.ManualScore,
		Status:         row.Status,
		OddsSyncedAt:   row.OddsSyncedAt,
		ScoresSyncedAt: row.ScoresSyncedAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.ExternalID != nil {
		item.ExternalID = *row.ExternalID
	}
	// A quote exists once any market column was written; quoted_at is the
	// marker because every quote write stamps it.
	if row.QuotedAt != nil {
		item.Quote = &game.Quote{
			Spread:        row.Spread,
			Total:         row.Total,
			MoneylineHome: row.MoneylineHome,
			MoneylineAway: row.MoneylineAway,
			QuotedAt:      *row.QuotedAt,
		}
		if row.QuoteSource != nil {
			item.Quote.Source = *row.QuoteSource
		}
	}
	return item
}

func gameInsertModel(item game.Game) gameTableModel {
	row := gameTableModel{
		ID:             item.ID,
		WeekID:         item.WeekID,
		HomeTeam:       item.HomeTeam,
		AwayTeam:       item.AwayTeam,
		KickoffAt:      item.KickoffAt,
		MustPick:       item.MustPick,
		HomeScore:      item.HomeScore,
		AwayScore:      item.AwayScore,
		ManualScore:    item.ManualScore,
		Status:         item.Status,
		OddsSyncedAt:   item.OddsSyncedAt,
		ScoresSyncedAt: item.ScoresSyncedAt,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
	if item.ExternalID > 0 {
		externalID := item.ExternalID
		row.ExternalID = &externalID
	}
	if item.Quote != nil {
		row.Spread = item.Quote.Spread
		row.Total = item.Quote.Total
		row.MoneylineHome = item.Quote.MoneylineHome
		row.MoneylineAway = item.Quote.MoneylineAway
		quotedAt := item.Quote.QuotedAt
		row.QuotedAt = &quotedAt
		if item.Quote.Source != "" {
			source := item.Quote.Source
			row.QuoteSource = &source
		}
	}
	return row
}
