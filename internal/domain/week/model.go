package week

import (
	"errors"
	"time"
)

var (
	ErrInvalidWindow = errors.New("week start must be before end")
	ErrNegativeCap   = errors.New("week cap cannot be negative")
)

// Week is one round of the pool. Caps are nil when the week does not limit
// that kind of pick.
type Week struct {
	ID               string
	Name             string
	Season           int
	StartsAt         time.Time
	EndsAt           time.Time
	SubmissionCutoff *time.Time
	PickerChoiceCap  *int
	TriplePlayCap    *int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func Validate(w Week) error {
	if !w.StartsAt.Before(w.EndsAt) {
		return ErrInvalidWindow
	}
	if (w.PickerChoiceCap != nil && *w.PickerChoiceCap < 0) ||
		(w.TriplePlayCap != nil && *w.TriplePlayCap < 0) {
		return ErrNegativeCap
	}
	return nil
}

// CutoffPassed reports whether the submission cutoff, when set, is behind now.
func CutoffPassed(w Week, now time.Time) bool {
	return w.SubmissionCutoff != nil && now.After(*w.SubmissionCutoff)
}
