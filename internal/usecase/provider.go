package usecase

import (
	"context"
	"time"
)

// ExternalQuote is a normalized market line from the odds provider. Spread
// is framed from the home team's perspective.
type ExternalQuote struct {
	Spread        *float64
	Total         *float64
	MoneylineHome *int
	MoneylineAway *int
	Source        string
	QuotedAt      time.Time
}

// ExternalScore is a normalized score observation from the provider.
type ExternalScore struct {
	HomeScore *int
	AwayScore *int
	Status    string
	Completed bool
}

// OddsScoreProvider fetches market and score data keyed by the provider's
// own game identifier.
type OddsScoreProvider interface {
	FetchQuote(ctx context.Context, externalID int64) (ExternalQuote, error)
	FetchScore(ctx context.Context, externalID int64) (ExternalScore, error)
}
