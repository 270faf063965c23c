package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/game"
	"github.com/pickemhq/pickem-pool/internal/domain/pick"
	"github.com/pickemhq/pickem-pool/internal/domain/week"
	"github.com/pickemhq/pickem-pool/internal/infrastructure/repository/memory"
	"github.com/pickemhq/pickem-pool/internal/platform/id"
)

var poolNow = time.Date(2026, 9, 13, 12, 0, 0, 0, time.UTC)

type poolFixture struct {
	weekRepo *memory.WeekRepository
	gameRepo *memory.GameRepository
	pickRepo *memory.PickRepository
	picks    *PickService
}

func newPoolFixture(t *testing.T) *poolFixture {
	t.Helper()

	f := &poolFixture{
		weekRepo: memory.NewWeekRepository(),
		gameRepo: memory.NewGameRepository(),
	}
	f.pickRepo = memory.NewPickRepository(f.gameRepo)
	f.picks = NewPickService(f.weekRepo, f.gameRepo, f.pickRepo, id.NewRandomGenerator())
	f.picks.now = func() time.Time { return poolNow }
	return f
}

func (f *poolFixture) seedWeek(t *testing.T, id string, choiceCap, tripleCap *int) week.Week {
	t.Helper()

	wk := week.Week{
		ID:              id,
		Name:            id,
		Season:          2026,
		StartsAt:        poolNow.Add(-24 * time.Hour),
		EndsAt:          poolNow.Add(6 * 24 * time.Hour),
		PickerChoiceCap: choiceCap,
		TriplePlayCap:   tripleCap,
	}
	if err := f.weekRepo.Create(t.Context(), wk); err != nil {
		t.Fatalf("seed week: %v", err)
	}
	return wk
}

func (f *poolFixture) seedGame(t *testing.T, id, weekID string, kickoff time.Time, mustPick bool, homeSpread *float64) game.Game {
	t.Helper()

	g := game.Game{
		ID:        id,
		WeekID:    weekID,
		HomeTeam:  "Home " + id,
		AwayTeam:  "Away " + id,
		KickoffAt: kickoff,
		MustPick:  mustPick,
		Status:    game.StatusScheduled,
	}
	if homeSpread != nil {
		g.Quote = &game.Quote{Spread: homeSpread, QuotedAt: poolNow.Add(-time.Hour)}
	}
	if err := f.gameRepo.Create(t.Context(), g); err != nil {
		t.Fatalf("seed game: %v", err)
	}
	return g
}

func (f *poolFixture) seedPick(t *testing.T, p pick.Pick) {
	t.Helper()
	if err := f.pickRepo.Create(t.Context(), p); err != nil {
		t.Fatalf("seed pick: %v", err)
	}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestPickService_Save_CapturesSideFramedSpread(t *testing.T) {
	f := newPoolFixture(t)
	f.seedWeek(t, "week-1", nil, nil)
	f.seedGame(t, "g1", "week-1", poolNow.Add(4*time.Hour), true, floatPtr(-9.5))

	caller := Identity{ParticipantID: "alice"}
	item, err := f.picks.Save(t.Context(), caller, SavePickInput{GameID: "g1", Side: pick.SideAwaySpread})
	if err != nil {
		t.Fatalf("save pick: %v", err)
	}
	if item.Spread == nil || *item.Spread != 9.5 {
		t.Fatalf("away pick against a -9.5 home line must capture +9.5, got %v", item.Spread)
	}
	if item.Submitted {
		t.Fatal("direct saves must not be submitted")
	}

	// Switching sides re-captures the line for the new side.
	item, err = f.picks.Save(t.Context(), caller, SavePickInput{GameID: "g1", Side: pick.SideHomeSpread})
	if err != nil {
		t.Fatalf("update pick: %v", err)
	}
	if item.Spread == nil || *item.Spread != -9.5 {
		t.Fatalf("home pick must capture -9.5, got %v", item.Spread)
	}
}

func TestPickService_Save_GameWithoutQuoteKeepsNilSpread(t *testing.T) {
	f := newPoolFixture(t)
	f.seedWeek(t, "week-1", nil, nil)
	f.seedGame(t, "g1", "week-1", poolNow.Add(4*time.Hour), true, nil)

	item, err := f.picks.Save(t.Context(), Identity{ParticipantID: "alice"}, SavePickInput{GameID: "g1", Side: pick.SideHomeSpread})
	if err != nil {
		t.Fatalf("save pick: %v", err)
	}
	if item.Spread != nil {
		t.Fatalf("expected nil captured spread, got %v", *item.Spread)
	}
}

func TestPickService_Validate_UnknownGame(t *testing.T) {
	f := newPoolFixture(t)
	f.seedWeek(t, "week-1", nil, nil)

	verdict, err := f.picks.Validate(t.Context(), Identity{ParticipantID: "alice"}, "nope", false, OperationCreate)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if verdict.OK || !strings.Contains(verdict.Reason, "does not exist") {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
}

func TestPickService_Validate_CutoffPassed(t *testing.T) {
	f := newPoolFixture(t)
	cutoff := poolNow.Add(-time.Minute)
	wk := week.Week{
		ID:               "week-1",
		Name:             "Week 1",
		Season:           2026,
		StartsAt:         poolNow.Add(-24 * time.Hour),
		EndsAt:           poolNow.Add(6 * 24 * time.Hour),
		SubmissionCutoff: &cutoff,
	}
	if err := f.weekRepo.Create(t.Context(), wk); err != nil {
		t.Fatalf("seed week: %v", err)
	}
	f.seedGame(t, "g1", "week-1", poolNow.Add(4*time.Hour), true, nil)

	verdict, err := f.picks.Validate(t.Context(), Identity{ParticipantID: "alice"}, "g1", false, OperationCreate)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if verdict.OK || !strings.Contains(verdict.Reason, "cutoff") {
		t.Fatalf("unexpected verdict: %+v", verdict)
	}
}

func TestPickService_StartedGameRules(t *testing.T) {
	f := newPoolFixture(t)
	f.seedWeek(t, "week-1", nil, nil)
	f.seedGame(t, "g-started", "week-1", poolNow.Add(-time.Hour), true, floatPtr(-3))

	caller := Identity{ParticipantID: "alice"}

	_, err := f.picks.Save(t.Context(), caller, SavePickInput{GameID: "g-started", Side: pick.SideHomeSpread})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected rejection on started game, got %v", err)
	}

	// An unsubmitted pick on a started game can still be retracted.
	f.seedPick(t, pick.Pick{ID: "p1", ParticipantID: "alice", GameID: "g-started", Side: pick.SideHomeSpread, Spread: floatPtr(-3)})
	if err := f.picks.Delete(t.Context(), caller, "g-started"); err != nil {
		t.Fatalf("delete unsubmitted pick after start: %v", err)
	}

	// A submitted one cannot.
	f.seedPick(t, pick.Pick{ID: "p2", ParticipantID: "alice", GameID: "g-started", Side: pick.SideHomeSpread, Spread: floatPtr(-3), Submitted: true})
	err = f.picks.Delete(t.Context(), caller, "g-started")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected rejection deleting submitted pick, got %v", err)
	}
}

func TestPickService_SubmissionLockScopedToEligiblePicks(t *testing.T) {
	f := newPoolFixture(t)
	f.seedWeek(t, "week-1", nil, nil)
	f.seedGame(t, "g-future-1", "week-1", poolNow.Add(4*time.Hour), true, nil)
	f.seedGame(t, "g-future-2", "week-1", poolNow.Add(5*time.Hour), false, nil)
	f.seedGame(t, "g-done", "week-1", poolNow.Add(-26*time.Hour), false, nil)

	caller := Identity{ParticipantID: "alice"}

	// Every eligible pick submitted: the week is locked for new picks.
	f.seedPick(t, pick.Pick{ID: "p1", ParticipantID: "alice", GameID: "g-future-1", Side: pick.SideHomeSpread, Submitted: true})
	_, err := f.picks.Save(t.Context(), caller, SavePickInput{GameID: "g-future-2", Side: pick.SideHomeSpread})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected submission lock, got %v", err)
	}

	// A submitted pick whose game already started is not eligible, so it
	// alone must not lock the rest of the week.
	if err := f.pickRepo.Delete(t.Context(), "alice", "g-future-1"); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	f.seedPick(t, pick.Pick{ID: "p2", ParticipantID: "alice", GameID: "g-done", Side: pick.SideHomeSpread, Submitted: true})
	if _, err := f.picks.Save(t.Context(), caller, SavePickInput{GameID: "g-future-1", Side: pick.SideAwaySpread}); err != nil {
		t.Fatalf("finished game locked the week: %v", err)
	}
}

func TestPickService_SubmittedPickImmutable(t *testing.T) {
	f := newPoolFixture(t)
	f.seedWeek(t, "week-1", nil, nil)
	f.seedGame(t, "g1", "week-1", poolNow.Add(4*time.Hour), true, nil)
	f.seedGame(t, "g2", "week-1", poolNow.Add(4*time.Hour), true, nil)

	caller := Identity{ParticipantID: "alice"}
	f.seedPick(t, pick.Pick{ID: "p1", ParticipantID: "alice", GameID: "g1", Side: pick.SideHomeSpread, Submitted: true})
	// Keep an unsubmitted eligible pick around so the week-level lock does
	// not trip first; this isolates the per-pick immutability check.
	f.seedPick(t, pick.Pick{ID: "p2", ParticipantID: "alice", GameID: "g2", Side: pick.SideHomeSpread})

	_, err := f.picks.Save(t.Context(), caller, SavePickInput{GameID: "g1", Side: pick.SideAwaySpread})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected immutability rejection, got %v", err)
	}
}

func TestPickService_PickerChoiceCap(t *testing.T) {
	f := newPoolFixture(t)
	f.seedWeek(t, "week-1", intPtr(1), nil)
	f.seedGame(t, "g-choice-1", "week-1", poolNow.Add(4*time.Hour), false, nil)
	f.seedGame(t, "g-choice-2", "week-1", poolNow.Add(4*time.Hour), false, nil)
	f.seedGame(t, "g-must", "week-1", poolNow.Add(4*time.Hour), true, nil)

	caller := Identity{ParticipantID: "alice"}
	if _, err := f.picks.Save(t.Context(), caller, SavePickInput{GameID: "g-choice-1", Side: pick.SideHomeSpread}); err != nil {
		t.Fatalf("first choice pick: %v", err)
	}

	_, err := f.picks.Save(t.Context(), caller, SavePickInput{GameID: "g-choice-2", Side: pick.SideHomeSpread})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected picker's-choice cap rejection, got %v", err)
	}

	// The cap only limits picker's-choice games.
	if _, err := f.picks.Save(t.Context(), caller, SavePickInput{GameID: "g-must", Side: pick.SideAwaySpread}); err != nil {
		t.Fatalf("must-pick blocked by choice cap: %v", err)
	}

	// Updating the existing choice pick is not a new pick and stays allowed.
	if _, err := f.picks.Save(t.Context(), caller, SavePickInput{GameID: "g-choice-1", Side: pick.SideAwaySpread}); err != nil {
		t.Fatalf("update of existing choice pick rejected: %v", err)
	}
}

func TestPickService_TriplePlayCap(t *testing.T) {
	f := newPoolFixture(t)
	f.seedWeek(t, "week-1", nil, intPtr(1))
	f.seedGame(t, "g-done", "week-1", poolNow.Add(-26*time.Hour), false, nil)
	f.seedGame(t, "g-future", "week-1", poolNow.Add(4*time.Hour), false, nil)
	f.seedGame(t, "g-must", "week-1", poolNow.Add(4*time.Hour), true, nil)

	caller := Identity{ParticipantID: "alice"}
	// A submitted triple play on an already-started game fills the cap
	// without locking the week.
	f.seedPick(t, pick.Pick{ID: "p1", ParticipantID: "alice", GameID: "g-done", Side: pick.SideHomeSpread, Submitted: true, TriplePlay: true})

	_, err := f.picks.Save(t.Context(), caller, SavePickInput{GameID: "g-future", Side: pick.SideHomeSpread, TriplePlay: true})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected triple-play cap rejection, got %v", err)
	}

	// Must-pick games are exempt from the cap.
	if _, err := f.picks.Save(t.Context(), caller, SavePickInput{GameID: "g-must", Side: pick.SideHomeSpread, TriplePlay: true}); err != nil {
		t.Fatalf("must-pick triple play rejected: %v", err)
	}

	// And a plain pick on the same game is unaffected.
	if _, err := f.picks.Save(t.Context(), caller, SavePickInput{GameID: "g-future", Side: pick.SideHomeSpread}); err != nil {
		t.Fatalf("non-triple pick rejected: %v", err)
	}
}

func TestPickService_Delete_NotFound(t *testing.T) {
	f := newPoolFixture(t)
	f.seedWeek(t, "week-1", nil, nil)
	f.seedGame(t, "g1", "week-1", poolNow.Add(4*time.Hour), true, nil)

	err := f.picks.Delete(t.Context(), Identity{ParticipantID: "alice"}, "g1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPickService_CreateRetriesAsUpdateOnUniqueViolation(t *testing.T) {
	f := newPoolFixture(t)
	f.seedWeek(t, "week-1", nil, nil)
	f.seedGame(t, "g1", "week-1", poolNow.Add(4*time.Hour), true, floatPtr(-3.5))

	// Simulate losing the create race: the row exists even though the
	// service's advisory read said otherwise.
	racing := &racingPickRepo{PickRepository: f.pickRepo}
	svc := NewPickService(f.weekRepo, f.gameRepo, racing, id.NewRandomGenerator())
	svc.now = func() time.Time { return poolNow }

	item, err := svc.Save(t.Context(), Identity{ParticipantID: "alice"}, SavePickInput{GameID: "g1", Side: pick.SideAwaySpread})
	if err != nil {
		t.Fatalf("save pick after unique violation: %v", err)
	}
	if item.Side != pick.SideAwaySpread {
		t.Fatalf("unexpected side: %s", item.Side)
	}
	if !racing.raced {
		t.Fatal("test did not exercise the unique-violation path")
	}
}

// racingPickRepo hides the row from the first existence check and then
// inserts it behind the service's back, forcing Create into the
// already-exists retry path.
type racingPickRepo struct {
	*memory.PickRepository
	reads int
	raced bool
}

func (r *racingPickRepo) GetByParticipantAndGame(ctx context.Context, participantID, gameID string) (pick.Pick, bool, error) {
	r.reads++
	if r.reads <= 2 && !r.raced {
		return pick.Pick{}, false, nil
	}
	return r.PickRepository.GetByParticipantAndGame(ctx, participantID, gameID)
}

func (r *racingPickRepo) Create(ctx context.Context, item pick.Pick) error {
	if !r.raced {
		r.raced = true
		competitor := item
		competitor.ID = "competitor"
		competitor.Side = pick.SideHomeSpread
		if err := r.PickRepository.Create(ctx, competitor); err != nil {
			return err
		}
	}
	return r.PickRepository.Create(ctx, item)
}
