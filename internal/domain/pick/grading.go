package pick

import (
	"errors"
	"fmt"
)

// ErrNoSpread marks a pick that cannot be graded because no line was
// captured at pick time. Callers leave such picks ungraded instead of
// defaulting them to a loss.
var ErrNoSpread = errors.New("pick has no captured spread")

// Evaluate grades a spread pick against a final score. The picked side's
// score adjusted by its captured spread is compared against the opponent's
// raw score: higher is a win, equal a push, lower a loss. Lines carry
// half-point precision, so no rounding happens anywhere in here.
func Evaluate(side Side, spread *float64, homeScore, awayScore int) (Result, error) {
	if spread == nil {
		return "", ErrNoSpread
	}

	var team, opponent float64
	switch side {
	case SideHomeSpread:
		team, opponent = float64(homeScore), float64(awayScore)
	case SideAwaySpread:
		team, opponent = float64(awayScore), float64(homeScore)
	default:
		return "", fmt.Errorf("unknown pick side %q", side)
	}

	adjusted := team + *spread
	switch {
	case adjusted > opponent:
		return ResultWin, nil
	case adjusted < opponent:
		return ResultLoss, nil
	default:
		return ResultPush, nil
	}
}
