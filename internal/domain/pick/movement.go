package pick

import "math"

// changeEpsilon guards the changed/unchanged decision against float noise in
// provider feeds.
const changeEpsilon = 0.001

// LineChange describes how the market moved between pick time and now, both
// values framed from the picked side's perspective.
type LineChange struct {
	OriginalSpread    float64
	CurrentSpread     float64
	HasChanged        bool
	IsFavorable       bool
	ImprovementAmount *float64
}

// ChangeFor compares the pick's captured spread with the current line for
// the same side. Nil when the pick captured no spread or the game has no
// current quote. Improvement is current minus original: a less negative or
// more positive line is better for whoever holds it, home or away alike.
// ImprovementAmount is set only on favorable moves.
func ChangeFor(p Pick, currentSpreadForSide *float64) *LineChange {
	if p.Spread == nil || currentSpreadForSide == nil {
		return nil
	}

	change := &LineChange{
		OriginalSpread: *p.Spread,
		CurrentSpread:  *currentSpreadForSide,
	}
	improvement := change.CurrentSpread - change.OriginalSpread
	if math.Abs(improvement) <= changeEpsilon {
		return change
	}

	change.HasChanged = true
	if improvement > 0 {
		change.IsFavorable = true
		amount := improvement
		change.ImprovementAmount = &amount
	}
	return change
}

// AutoApplicable reports whether the pick may be silently moved to the
// current line: only unsubmitted picks on games that have not kicked off,
// and only when the move favors the picker.
func AutoApplicable(p Pick, change *LineChange, gameStarted bool) bool {
	if change == nil || !change.HasChanged || !change.IsFavorable {
		return false
	}
	return !p.Submitted && !gameStarted
}
