package participant

import "time"

// Participant is one pool member. Identity verification happens upstream;
// this record only anchors picks and display names.
type Participant struct {
	ID          string
	DisplayName string
	JoinedAt    time.Time
}
