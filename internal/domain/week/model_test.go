package week

import (
	"errors"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)
	negative := -1

	if err := Validate(Week{StartsAt: start, EndsAt: end}); err != nil {
		t.Fatalf("valid week rejected: %v", err)
	}
	if err := Validate(Week{StartsAt: end, EndsAt: start}); !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("expected %v, got %v", ErrInvalidWindow, err)
	}
	if err := Validate(Week{StartsAt: start, EndsAt: end, PickerChoiceCap: &negative}); !errors.Is(err, ErrNegativeCap) {
		t.Fatalf("expected %v, got %v", ErrNegativeCap, err)
	}
}

func TestCutoffPassed(t *testing.T) {
	now := time.Date(2026, 1, 11, 13, 0, 0, 0, time.UTC)
	cutoff := now.Add(-time.Minute)

	if CutoffPassed(Week{}, now) {
		t.Fatal("week without a cutoff never locks")
	}
	if !CutoffPassed(Week{SubmissionCutoff: &cutoff}, now) {
		t.Fatal("expected passed cutoff to lock the week")
	}
	future := now.Add(time.Hour)
	if CutoffPassed(Week{SubmissionCutoff: &future}, now) {
		t.Fatal("future cutoff must not lock the week")
	}
}
