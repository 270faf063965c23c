package game

import (
	"strings"
	"time"
)

const (
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusFinal      = "final"
	StatusCancelled  = "cancelled"
	StatusPostponed  = "postponed"
)

const (
	// OddsMaxAge is how long a quote is served before a background refresh
	// is scheduled.
	OddsMaxAge = 3 * time.Hour
	// ScoresMaxAge is how long after kickoff a non-final, non-manual score
	// is trusted before a background refresh is scheduled.
	ScoresMaxAge = 4 * time.Hour
)

// Quote is one published market line. Spread is framed from the home team's
// perspective (negative = home favored).
type Quote struct {
	Spread        *float64
	Total         *float64
	MoneylineHome *int
	MoneylineAway *int
	Source        string
	QuotedAt      time.Time
}

// Game is one matchup inside a week. Scores are nil until entered; both are
// set together or not at all.
type Game struct {
	ID             string
	WeekID         string
	HomeTeam       string
	AwayTeam       string
	KickoffAt      time.Time
	Quote          *Quote
	MustPick       bool
	HomeScore      *int
	AwayScore      *int
	ManualScore    bool
	Status         string
	ExternalID     int64
	OddsSyncedAt   *time.Time
	ScoresSyncedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

func IsFinalStatus(status string) bool {
	return NormalizeStatus(status) == StatusFinal
}

func IsCancelledLikeStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusCancelled, StatusPostponed:
		return true
	default:
		return false
	}
}

func (g Game) Started(now time.Time) bool {
	return !now.Before(g.KickoffAt)
}

func (g Game) Final() bool {
	return IsFinalStatus(g.Status)
}

// SpreadForSide reframes the home-framed spread quote for the given side of
// the market. Nil when the game carries no spread quote.
func SpreadForSide(g Game, homeSide bool) *float64 {
	if g.Quote == nil || g.Quote.Spread == nil {
		return nil
	}
	value := *g.Quote.Spread
	if !homeSide {
		value = -value
	}
	return &value
}

// IsStale reports whether a synced-at timestamp is older than maxAge. A nil
// timestamp means the data was never synced and is stale by definition.
func IsStale(lastUpdate *time.Time, now time.Time, maxAge time.Duration) bool {
	if lastUpdate == nil {
		return true
	}
	return now.Sub(*lastUpdate) > maxAge
}

// StaleOdds reports whether the game's quote should be refreshed. Finished
// and cancelled games are never refresh candidates.
func StaleOdds(g Game, now time.Time) bool {
	if g.Final() || IsCancelledLikeStatus(g.Status) {
		return false
	}
	return IsStale(g.OddsSyncedAt, now, OddsMaxAge)
}

// StaleScores reports whether the game's score should be refreshed: the game
// kicked off more than ScoresMaxAge ago, no score was entered manually, and
// the game is not final or cancelled.
func StaleScores(g Game, now time.Time) bool {
	if g.Final() || IsCancelledLikeStatus(g.Status) || g.ManualScore {
		return false
	}
	if now.Sub(g.KickoffAt) < ScoresMaxAge {
		return false
	}
	return IsStale(g.ScoresSyncedAt, now, ScoresMaxAge)
}
