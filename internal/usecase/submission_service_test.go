package usecase

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/pick"
)

func newSubmissionFixture(t *testing.T) (*poolFixture, *SubmissionService) {
	t.Helper()

	f := newPoolFixture(t)
	svc := NewSubmissionService(f.weekRepo, f.gameRepo, f.pickRepo, f.picks)
	svc.now = func() time.Time { return poolNow }
	return f, svc
}

func TestSubmissionService_SubmitBatch_HappyPath(t *testing.T) {
	f, svc := newSubmissionFixture(t)
	f.seedWeek(t, "week-1", intPtr(2), intPtr(1))
	f.seedGame(t, "g-must", "week-1", poolNow.Add(4*time.Hour), true, floatPtr(-6.5))
	f.seedGame(t, "g-choice", "week-1", poolNow.Add(5*time.Hour), false, floatPtr(3))

	caller := Identity{ParticipantID: "alice"}
	created, err := svc.SubmitBatch(t.Context(), caller, SubmitBatchInput{
		WeekID: "week-1",
		Picks: []BatchPick{
			{GameID: "g-must", Side: pick.SideHomeSpread, TriplePlay: true},
			{GameID: "g-choice", Side: pick.SideAwaySpread},
		},
	})
	if err != nil {
		t.Fatalf("submit batch: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 created picks, got %d", len(created))
	}
	for _, p := range created {
		if !p.Submitted {
			t.Fatalf("pick %s not submitted", p.ID)
		}
	}
	if created[0].Spread == nil || *created[0].Spread != -6.5 {
		t.Fatalf("home pick must capture -6.5, got %v", created[0].Spread)
	}
	if created[1].Spread == nil || *created[1].Spread != -3 {
		t.Fatalf("away pick against a +3 home line must capture -3, got %v", created[1].Spread)
	}
}

func TestSubmissionService_SubmitBatch_RejectsAlreadySubmittedWeek(t *testing.T) {
	f, svc := newSubmissionFixture(t)
	f.seedWeek(t, "week-1", nil, nil)
	f.seedGame(t, "g-must", "week-1", poolNow.Add(4*time.Hour), true, nil)

	f.seedPick(t, pick.Pick{ID: "p1", ParticipantID: "alice", GameID: "g-must", Side: pick.SideHomeSpread, Submitted: true})

	_, err := svc.SubmitBatch(t.Context(), Identity{ParticipantID: "alice"}, SubmitBatchInput{
		WeekID: "week-1",
		Picks:  []BatchPick{{GameID: "g-must", Side: pick.SideAwaySpread}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected already-submitted rejection, got %v", err)
	}
}

func TestSubmissionService_SubmitBatch_RejectsCrossWeekGame(t *testing.T) {
	f, svc := newSubmissionFixture(t)
	f.seedWeek(t, "week-1", nil, nil)
	f.seedWeek(t, "week-2", nil, nil)
	f.seedGame(t, "g-w1", "week-1", poolNow.Add(4*time.Hour), true, nil)
	f.seedGame(t, "g-w2", "week-2", poolNow.Add(4*time.Hour), true, nil)

	_, err := svc.SubmitBatch(t.Context(), Identity{ParticipantID: "alice"}, SubmitBatchInput{
		WeekID: "week-1",
		Picks: []BatchPick{
			{GameID: "g-w1", Side: pick.SideHomeSpread},
			{GameID: "g-w2", Side: pick.SideHomeSpread},
		},
	})
	if !errors.Is(err, ErrInvalidInput) || !strings.Contains(err.Error(), "belongs to week") {
		t.Fatalf("expected cross-week rejection, got %v", err)
	}
}

// Resubmitted games must not count against the cap twice: 2 existing choice
// picks with cap 3, batch holds 1 new choice pick plus a re-send of an
// existing one. Existing-excluding-resubmitted = 1, incoming = 2, total 3.
func TestSubmissionService_SubmitBatch_ResubmissionExcludedFromExistingCount(t *testing.T) {
	f, svc := newSubmissionFixture(t)
	f.seedWeek(t, "week-1", intPtr(3), nil)
	f.seedGame(t, "g-c1", "week-1", poolNow.Add(4*time.Hour), false, nil)
	f.seedGame(t, "g-c2", "week-1", poolNow.Add(4*time.Hour), false, nil)
	f.seedGame(t, "g-c3", "week-1", poolNow.Add(4*time.Hour), false, nil)

	f.seedPick(t, pick.Pick{ID: "p1", ParticipantID: "alice", GameID: "g-c1", Side: pick.SideHomeSpread})
	f.seedPick(t, pick.Pick{ID: "p2", ParticipantID: "alice", GameID: "g-c2", Side: pick.SideHomeSpread})

	created, err := svc.SubmitBatch(t.Context(), Identity{ParticipantID: "alice"}, SubmitBatchInput{
		WeekID: "week-1",
		Picks: []BatchPick{
			{GameID: "g-c2", Side: pick.SideAwaySpread},
			{GameID: "g-c3", Side: pick.SideHomeSpread},
		},
	})
	if err != nil {
		t.Fatalf("resubmission wrongly counted twice: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 picks, got %d", len(created))
	}

	// Without the exclusion shape: a genuinely new pick pushing the total
	// past the cap is still rejected.
	f2, svc2 := newSubmissionFixture(t)
	f2.seedWeek(t, "week-1", intPtr(2), nil)
	f2.seedGame(t, "g-c1", "week-1", poolNow.Add(4*time.Hour), false, nil)
	f2.seedGame(t, "g-c2", "week-1", poolNow.Add(4*time.Hour), false, nil)
	f2.seedGame(t, "g-c3", "week-1", poolNow.Add(4*time.Hour), false, nil)
	f2.seedPick(t, pick.Pick{ID: "p1", ParticipantID: "alice", GameID: "g-c1", Side: pick.SideHomeSpread})
	f2.seedPick(t, pick.Pick{ID: "p2", ParticipantID: "alice", GameID: "g-c2", Side: pick.SideHomeSpread})

	_, err = svc2.SubmitBatch(t.Context(), Identity{ParticipantID: "alice"}, SubmitBatchInput{
		WeekID: "week-1",
		Picks:  []BatchPick{{GameID: "g-c3", Side: pick.SideHomeSpread}},
	})
	if !errors.Is(err, ErrInvalidInput) || !strings.Contains(err.Error(), "picker's-choice") {
		t.Fatalf("expected choice-cap rejection, got %v", err)
	}
}

func TestSubmissionService_SubmitBatch_MissingMustPickReportedByIdentity(t *testing.T) {
	f, svc := newSubmissionFixture(t)
	f.seedWeek(t, "week-1", nil, nil)
	f.seedGame(t, "g-must-1", "week-1", poolNow.Add(4*time.Hour), true, nil)
	f.seedGame(t, "g-must-2", "week-1", poolNow.Add(4*time.Hour), true, nil)
	f.seedGame(t, "g-choice", "week-1", poolNow.Add(4*time.Hour), false, nil)

	_, err := svc.SubmitBatch(t.Context(), Identity{ParticipantID: "alice"}, SubmitBatchInput{
		WeekID: "week-1",
		Picks:  []BatchPick{{GameID: "g-choice", Side: pick.SideHomeSpread}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected must-pick completeness rejection, got %v", err)
	}
	if !strings.Contains(err.Error(), "g-must-1") || !strings.Contains(err.Error(), "g-must-2") {
		t.Fatalf("missing must-pick games not reported by identity: %v", err)
	}
}

func TestSubmissionService_SubmitBatch_TriplePlayCap(t *testing.T) {
	f, svc := newSubmissionFixture(t)
	f.seedWeek(t, "week-1", nil, intPtr(1))
	f.seedGame(t, "g-must", "week-1", poolNow.Add(4*time.Hour), true, nil)
	f.seedGame(t, "g-c1", "week-1", poolNow.Add(4*time.Hour), false, nil)
	f.seedGame(t, "g-c2", "week-1", poolNow.Add(4*time.Hour), false, nil)

	_, err := svc.SubmitBatch(t.Context(), Identity{ParticipantID: "alice"}, SubmitBatchInput{
		WeekID: "week-1",
		Picks: []BatchPick{
			{GameID: "g-must", Side: pick.SideHomeSpread},
			{GameID: "g-c1", Side: pick.SideHomeSpread, TriplePlay: true},
			{GameID: "g-c2", Side: pick.SideHomeSpread, TriplePlay: true},
		},
	})
	if !errors.Is(err, ErrInvalidInput) || !strings.Contains(err.Error(), "triple") {
		t.Fatalf("expected triple-play cap rejection, got %v", err)
	}
}

func TestSubmissionService_SubmitBatch_RejectsDuplicateGame(t *testing.T) {
	f, svc := newSubmissionFixture(t)
	f.seedWeek(t, "week-1", nil, nil)
	f.seedGame(t, "g-must", "week-1", poolNow.Add(4*time.Hour), true, nil)

	_, err := svc.SubmitBatch(t.Context(), Identity{ParticipantID: "alice"}, SubmitBatchInput{
		WeekID: "week-1",
		Picks: []BatchPick{
			{GameID: "g-must", Side: pick.SideHomeSpread},
			{GameID: "g-must", Side: pick.SideAwaySpread},
		},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected duplicate-game rejection, got %v", err)
	}
}

func TestSubmissionService_SubmitBatch_EmptyBatch(t *testing.T) {
	_, svc := newSubmissionFixture(t)

	_, err := svc.SubmitBatch(t.Context(), Identity{ParticipantID: "alice"}, SubmitBatchInput{WeekID: "week-1"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected empty-batch rejection, got %v", err)
	}
}
