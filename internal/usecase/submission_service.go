package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/game"
	"github.com/pickemhq/pickem-pool/internal/domain/pick"
	"github.com/pickemhq/pickem-pool/internal/domain/week"
)

type BatchPick struct {
	GameID     string
	Side       pick.Side
	TriplePlay bool
}

type SubmitBatchInput struct {
	WeekID string
	Picks  []BatchPick
}

// SubmissionService commits a whole week's picks as one submission. The
// quota preconditions are checked against the batch as a set before any
// write; a per-pick check against a partially-applied batch would miscount.
type SubmissionService struct {
	weekRepo    week.Repository
	gameRepo    game.Repository
	pickRepo    pick.Repository
	pickService *PickService
	now         func() time.Time
}

func NewSubmissionService(
	weekRepo week.Repository,
	gameRepo game.Repository,
	pickRepo pick.Repository,
	pickService *PickService,
) *SubmissionService {
	return &SubmissionService{
		weekRepo:    weekRepo,
		gameRepo:    gameRepo,
		pickRepo:    pickRepo,
		pickService: pickService,
		now:         time.Now,
	}
}

// SubmitBatch validates the set-level preconditions, then persists each pick
// with submitted=true in the order given. Writes happen under a
// per-(participant, week) lock so concurrent submissions cannot both pass
// the quota counts on stale reads. A persistence failure mid-batch aborts
// without rolling back earlier picks; callers detect the partial state by
// re-reading the week's picks.
func (s *SubmissionService) SubmitBatch(ctx context.Context, identity Identity, input SubmitBatchInput) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SubmissionService.SubmitBatch")
	defer span.End()

	identity = identity.Normalize()
	input.WeekID = strings.TrimSpace(input.WeekID)
	if !identity.Valid() {
		return nil, fmt.Errorf("%w: participant id is required", ErrInvalidInput)
	}
	if input.WeekID == "" {
		return nil, fmt.Errorf("%w: week id is required", ErrInvalidInput)
	}
	if len(input.Picks) == 0 {
		return nil, fmt.Errorf("%w: submission must contain at least one pick", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(input.Picks))
	for i := range input.Picks {
		input.Picks[i].GameID = strings.TrimSpace(input.Picks[i].GameID)
		if input.Picks[i].GameID == "" {
			return nil, fmt.Errorf("%w: pick %d has no game id", ErrInvalidInput, i)
		}
		if !pick.ValidSide(input.Picks[i].Side) {
			return nil, fmt.Errorf("%w: pick for game %s has invalid side", ErrInvalidInput, input.Picks[i].GameID)
		}
		if _, dup := seen[input.Picks[i].GameID]; dup {
			return nil, fmt.Errorf("%w: game %s appears twice in the submission", ErrInvalidInput, input.Picks[i].GameID)
		}
		seen[input.Picks[i].GameID] = struct{}{}
	}

	var created []pick.Pick
	err := s.pickRepo.SubmitExclusive(ctx, identity.ParticipantID, input.WeekID, func(ctx context.Context) error {
		var err error
		created, err = s.submitBatch(ctx, identity, input)
		return err
	})
	return created, err
}

func (s *SubmissionService) submitBatch(ctx context.Context, identity Identity, input SubmitBatchInput) ([]pick.Pick, error) {
	wk, exists, err := s.weekRepo.GetByID(ctx, input.WeekID)
	if err != nil {
		return nil, fmt.Errorf("get week by id: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: week=%s", ErrNotFound, input.WeekID)
	}

	now := s.now().UTC()
	locked, err := s.pickService.weekLocked(ctx, identity, wk.ID, now)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, fmt.Errorf("%w: picks for week %s are already submitted", ErrInvalidInput, wk.Name)
	}

	// Every game must belong to the declared week; a stray game would count
	// against the wrong week's quotas.
	batchGames := make(map[string]game.Game, len(input.Picks))
	for _, bp := range input.Picks {
		g, exists, err := s.gameRepo.GetByID(ctx, bp.GameID)
		if err != nil {
			return nil, fmt.Errorf("get game by id: %w", err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: game=%s", ErrNotFound, bp.GameID)
		}
		if g.WeekID != wk.ID {
			return nil, fmt.Errorf("%w: game %s belongs to week %s, not %s", ErrInvalidInput, g.ID, g.WeekID, wk.ID)
		}
		batchGames[g.ID] = g
	}

	incomingChoice := 0
	incomingTriple := 0
	for _, bp := range input.Picks {
		if !batchGames[bp.GameID].MustPick {
			incomingChoice++
		}
		if bp.TriplePlay {
			incomingTriple++
		}
	}

	if incomingChoice > 0 && wk.PickerChoiceCap != nil {
		existing, err := s.pickRepo.ListByParticipantAndWeek(ctx, identity.ParticipantID, wk.ID)
		if err != nil {
			return nil, fmt.Errorf("list existing picks: %w", err)
		}
		weekGames, err := s.gameRepo.ListByWeek(ctx, wk.ID)
		if err != nil {
			return nil, fmt.Errorf("list week games: %w", err)
		}
		mustPickByID := make(map[string]bool, len(weekGames))
		for _, g := range weekGames {
			mustPickByID[g.ID] = g.MustPick
		}

		// Games resubmitted in this batch are excluded from the existing
		// count; they are already counted on the incoming side.
		existingChoice := 0
		for _, p := range existing {
			if _, resubmitted := batchGames[p.GameID]; resubmitted {
				continue
			}
			if !mustPickByID[p.GameID] {
				existingChoice++
			}
		}
		if existingChoice+incomingChoice > *wk.PickerChoiceCap {
			return nil, fmt.Errorf(
				"%w: submission would hold %d picker's-choice picks, week %s allows %d",
				ErrInvalidInput, existingChoice+incomingChoice, wk.Name, *wk.PickerChoiceCap,
			)
		}
	}

	if incomingTriple > 0 && wk.TriplePlayCap != nil {
		existing, err := s.pickRepo.ListByParticipantAndWeek(ctx, identity.ParticipantID, wk.ID)
		if err != nil {
			return nil, fmt.Errorf("list existing picks: %w", err)
		}
		existingTriple := 0
		for _, p := range existing {
			if p.Submitted && p.TriplePlay {
				existingTriple++
			}
		}
		if existingTriple+incomingTriple > *wk.TriplePlayCap {
			return nil, fmt.Errorf(
				"%w: submission would hold %d triple plays, week %s allows %d",
				ErrInvalidInput, existingTriple+incomingTriple, wk.Name, *wk.TriplePlayCap,
			)
		}
	}

	mustGames, err := s.gameRepo.ListMustPickByWeek(ctx, wk.ID)
	if err != nil {
		return nil, fmt.Errorf("list must-pick games: %w", err)
	}
	var missing []string
	for _, g := range mustGames {
		if _, ok := batchGames[g.ID]; !ok {
			missing = append(missing, g.ID)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: must-pick games missing from submission: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	// The week-level lock check above replaces the per-pick one here; once
	// the first pick of the batch lands submitted, the per-pick check would
	// wrongly lock out the rest of the same batch.
	created := make([]pick.Pick, 0, len(input.Picks))
	for _, bp := range input.Picks {
		item, err := s.pickService.save(ctx, identity, SavePickInput(bp), true, true)
		if err != nil {
			return created, fmt.Errorf("persist pick for game %s: %w", bp.GameID, err)
		}
		created = append(created, item)
	}
	return created, nil
}
