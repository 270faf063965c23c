package pick

import (
	"math"
	"testing"
)

func TestChangeForUndefinedInputs(t *testing.T) {
	if got := ChangeFor(Pick{Spread: nil}, fptr(-3.5)); got != nil {
		t.Fatalf("expected nil change without a captured spread, got %+v", got)
	}
	if got := ChangeFor(Pick{Spread: fptr(-3.5)}, nil); got != nil {
		t.Fatalf("expected nil change without a current quote, got %+v", got)
	}
}

func TestChangeForFavorableMove(t *testing.T) {
	// Home side held at -7 while the line tightened to -3.5.
	change := ChangeFor(Pick{Side: SideHomeSpread, Spread: fptr(-7)}, fptr(-3.5))
	if change == nil {
		t.Fatal("expected a change")
	}
	if !change.HasChanged || !change.IsFavorable {
		t.Fatalf("expected favorable change, got %+v", change)
	}
	if change.ImprovementAmount == nil || *change.ImprovementAmount != 3.5 {
		t.Fatalf("expected improvement of 3.5, got %+v", change.ImprovementAmount)
	}
}

func TestChangeForUnfavorableMove(t *testing.T) {
	change := ChangeFor(Pick{Side: SideAwaySpread, Spread: fptr(6.5)}, fptr(3))
	if change == nil || !change.HasChanged {
		t.Fatalf("expected a changed line, got %+v", change)
	}
	if change.IsFavorable {
		t.Fatal("worsening line must not be favorable")
	}
	if change.ImprovementAmount != nil {
		t.Fatalf("improvement amount must stay unset on unfavorable moves, got %v", *change.ImprovementAmount)
	}
}

func TestChangeForEpsilonAbsorbsFloatNoise(t *testing.T) {
	change := ChangeFor(Pick{Spread: fptr(-3.5)}, fptr(-3.5+0.0004))
	if change == nil {
		t.Fatal("expected a change record")
	}
	if change.HasChanged {
		t.Fatalf("sub-epsilon delta must not register as movement: %+v", change)
	}
	if change.IsFavorable || change.ImprovementAmount != nil {
		t.Fatalf("unchanged line cannot be favorable: %+v", change)
	}
}

func TestChangeForIdempotentOnUnchangedInput(t *testing.T) {
	p := Pick{Spread: fptr(-4.5)}
	first := ChangeFor(p, fptr(-4.5))
	second := ChangeFor(p, fptr(-4.5))
	if *first != *second {
		t.Fatalf("repeated evaluation diverged: %+v vs %+v", first, second)
	}
	if first.HasChanged {
		t.Fatalf("identical line reported as changed: %+v", first)
	}
}

// A move favorable to one side mirrors as the same-magnitude unfavorable
// move for the other side's framing.
func TestChangeForSignFlipSymmetry(t *testing.T) {
	original, current := -7.0, -3.5

	homeHeld := ChangeFor(Pick{Side: SideHomeSpread, Spread: &original}, &current)
	awayOriginal, awayCurrent := -original, -current
	awayHeld := ChangeFor(Pick{Side: SideAwaySpread, Spread: &awayOriginal}, &awayCurrent)

	if !homeHeld.HasChanged || !awayHeld.HasChanged {
		t.Fatalf("both framings must register movement: %+v %+v", homeHeld, awayHeld)
	}
	if !homeHeld.IsFavorable || awayHeld.IsFavorable {
		t.Fatalf("favorability must flip with the framing: home=%+v away=%+v", homeHeld, awayHeld)
	}
	improvement := homeHeld.CurrentSpread - homeHeld.OriginalSpread
	decline := awayHeld.CurrentSpread - awayHeld.OriginalSpread
	if math.Abs(improvement+decline) > 1e-9 {
		t.Fatalf("move magnitudes must mirror: %v vs %v", improvement, decline)
	}
}

func TestAutoApplicable(t *testing.T) {
	favorable := ChangeFor(Pick{Spread: fptr(-7)}, fptr(-3.5))
	unfavorable := ChangeFor(Pick{Spread: fptr(-3.5)}, fptr(-7))

	tests := []struct {
		name    string
		p       Pick
		change  *LineChange
		started bool
		want    bool
	}{
		{"favorable unsubmitted pregame", Pick{}, favorable, false, true},
		{"submitted pick never moves", Pick{Submitted: true}, favorable, false, false},
		{"started game never moves", Pick{}, favorable, true, false},
		{"unfavorable never moves", Pick{}, unfavorable, false, false},
		{"nil change never moves", Pick{}, nil, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := AutoApplicable(tc.p, tc.change, tc.started); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
