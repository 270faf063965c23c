package memory

import (
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/game"
	"github.com/pickemhq/pickem-pool/internal/domain/participant"
	"github.com/pickemhq/pickem-pool/internal/domain/week"
)

const (
	WeekIDOpening = "2026-wk-01"
	SeedSeason    = 2026
)

// SeedWeeks returns the demo pool used when the service runs without a
// database.
func SeedWeeks() []week.Week {
	cutoff := time.Date(2026, 9, 13, 17, 0, 0, 0, time.UTC)
	choiceCap := 5
	tripleCap := 1
	return []week.Week{
		{
			ID:               WeekIDOpening,
			Name:             "Week 1",
			Season:           SeedSeason,
			StartsAt:         time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			EndsAt:           time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC),
			SubmissionCutoff: &cutoff,
			PickerChoiceCap:  &choiceCap,
			TriplePlayCap:    &tripleCap,
		},
	}
}

func SeedGames() []game.Game {
	return []game.Game{
		{
			ID:        "gm-2026-001",
			WeekID:    WeekIDOpening,
			HomeTeam:  "Ironhorses",
			AwayTeam:  "Sentinels",
			KickoffAt: time.Date(2026, 9, 13, 17, 0, 0, 0, time.UTC),
			MustPick:  true,
			Status:    game.StatusScheduled,
			Quote:     seedQuote(-6.5, 44.5, -280, 230, time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)),
		},
		{
			ID:        "gm-2026-002",
			WeekID:    WeekIDOpening,
			HomeTeam:  "Mariners",
			AwayTeam:  "Blizzard",
			KickoffAt: time.Date(2026, 9, 13, 20, 25, 0, 0, time.UTC),
			MustPick:  true,
			Status:    game.StatusScheduled,
			Quote:     seedQuote(3, 41, 135, -155, time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)),
		},
		{
			ID:        "gm-2026-003",
			WeekID:    WeekIDOpening,
			HomeTeam:  "Comets",
			AwayTeam:  "Wardens",
			KickoffAt: time.Date(2026, 9, 14, 0, 20, 0, 0, time.UTC),
			Status:    game.StatusScheduled,
			Quote:     seedQuote(-1.5, 51.5, -120, 100, time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)),
		},
		{
			ID:        "gm-2026-004",
			WeekID:    WeekIDOpening,
			HomeTeam:  "Redhawks",
			AwayTeam:  "Outlaws",
			KickoffAt: time.Date(2026, 9, 14, 0, 20, 0, 0, time.UTC),
			Status:    game.StatusScheduled,
			// No published line yet; picks on this game stay ungraded
			// until a quote lands.
		},
	}
}

func SeedParticipants() []participant.Participant {
	return []participant.Participant{
		{ID: "demo-alice", DisplayName: "Alice", JoinedAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "demo-bob", DisplayName: "Bob", JoinedAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func seedQuote(spread, total float64, mlHome, mlAway int, quotedAt time.Time) *game.Quote {
	return &game.Quote{
		Spread:        &spread,
		Total:         &total,
		MoneylineHome: &mlHome,
		MoneylineAway: &mlAway,
		Source:        "seed",
		QuotedAt:      quotedAt,
	}
}
