package pick

import "time"

type Side string

const (
	SideHomeSpread Side = "home_spread"
	SideAwaySpread Side = "away_spread"
)

type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultPush Result = "push"
)

// Pick is one participant's selection on one game. Spread is the line value
// captured at pick time, signed from the picked side's perspective; it stays
// nil when the game carried no quote. Result stays nil until the game is
// graded.
type Pick struct {
	ID            string
	ParticipantID string
	GameID        string
	Side          Side
	Spread        *float64
	Submitted     bool
	TriplePlay    bool
	Result        *Result
	EvaluatedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func ValidSide(side Side) bool {
	return side == SideHomeSpread || side == SideAwaySpread
}
