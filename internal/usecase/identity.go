package usecase

import "strings"

// Identity is the verified caller identity, resolved by the HTTP layer and
// passed explicitly into every entry point. There is no ambient identity
// lookup anywhere below this line.
type Identity struct {
	ParticipantID string
}

func (i Identity) Normalize() Identity {
	i.ParticipantID = strings.TrimSpace(i.ParticipantID)
	return i
}

func (i Identity) Valid() bool {
	return i.ParticipantID != ""
}
