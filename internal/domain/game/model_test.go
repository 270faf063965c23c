package game

import (
	"testing"
	"time"
)

func tptr(t time.Time) *time.Time { return &t }

func TestSpreadForSide(t *testing.T) {
	spread := -6.5
	g := Game{Quote: &Quote{Spread: &spread}}

	home := SpreadForSide(g, true)
	if home == nil || *home != -6.5 {
		t.Fatalf("expected home spread -6.5, got %v", home)
	}
	away := SpreadForSide(g, false)
	if away == nil || *away != 6.5 {
		t.Fatalf("expected away spread 6.5, got %v", away)
	}
	if got := SpreadForSide(Game{}, true); got != nil {
		t.Fatalf("expected nil without a quote, got %v", *got)
	}
}

func TestStaleOdds(t *testing.T) {
	now := time.Date(2026, 1, 11, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		g    Game
		want bool
	}{
		{"never synced", Game{Status: StatusScheduled}, true},
		{"synced beyond max age", Game{Status: StatusScheduled, OddsSyncedAt: tptr(now.Add(-4 * time.Hour))}, true},
		{"freshly synced", Game{Status: StatusScheduled, OddsSyncedAt: tptr(now.Add(-time.Hour))}, false},
		{"final game is never a refresh candidate", Game{Status: StatusFinal}, false},
		{"cancelled game is never a refresh candidate", Game{Status: StatusCancelled}, false},
		{"postponed game is never a refresh candidate", Game{Status: StatusPostponed}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StaleOdds(tc.g, now); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestStaleScores(t *testing.T) {
	now := time.Date(2026, 1, 11, 22, 0, 0, 0, time.UTC)
	kickoff := now.Add(-5 * time.Hour)

	tests := []struct {
		name string
		g    Game
		want bool
	}{
		{"long past kickoff and never synced", Game{Status: StatusInProgress, KickoffAt: kickoff}, true},
		{"recent kickoff", Game{Status: StatusInProgress, KickoffAt: now.Add(-time.Hour)}, false},
		{"manual score wins over the provider", Game{Status: StatusInProgress, KickoffAt: kickoff, ManualScore: true}, false},
		{"final game stays final regardless of elapsed time", Game{Status: StatusFinal, KickoffAt: now.Add(-90 * 24 * time.Hour)}, false},
		{"recently synced snapshot", Game{Status: StatusInProgress, KickoffAt: kickoff, ScoresSyncedAt: tptr(now.Add(-time.Hour))}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StaleScores(tc.g, now); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	if got := NormalizeStatus("  FINAL "); got != StatusFinal {
		t.Fatalf("expected %s, got %s", StatusFinal, got)
	}
	if got := NormalizeStatus(""); got != StatusScheduled {
		t.Fatalf("expected %s, got %s", StatusScheduled, got)
	}
}
