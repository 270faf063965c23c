package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/pickemhq/pickem-pool/internal/infrastructure/repository/memory"
)

func newParticipantService(t *testing.T) *ParticipantService {
	t.Helper()

	svc := NewParticipantService(memory.NewParticipantRepository())
	svc.now = func() time.Time { return poolNow }
	return svc
}

func TestParticipantService_Register(t *testing.T) {
	svc := newParticipantService(t)

	created, err := svc.Register(t.Context(), "  demo-alice  ", "  Alice  ")
	if err != nil {
		t.Fatalf("register participant: %v", err)
	}
	if created.ID != "demo-alice" || created.DisplayName != "Alice" {
		t.Fatalf("expected trimmed fields, got %+v", created)
	}
	if created.JoinedAt != poolNow {
		t.Fatalf("expected joined_at %v, got %v", poolNow, created.JoinedAt)
	}

	identity, err := svc.Resolve(t.Context(), "demo-alice")
	if err != nil {
		t.Fatalf("resolve registered participant: %v", err)
	}
	if identity.ParticipantID != "demo-alice" {
		t.Fatalf("unexpected identity %+v", identity)
	}
}

func TestParticipantService_Register_Invalid(t *testing.T) {
	svc := newParticipantService(t)

	if _, err := svc.Register(t.Context(), "  ", "Alice"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank id, got %v", err)
	}
	if _, err := svc.Register(t.Context(), "demo-alice", "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank display name, got %v", err)
	}
}

func TestParticipantService_Resolve_Unauthorized(t *testing.T) {
	svc := newParticipantService(t)

	if _, err := svc.Resolve(t.Context(), ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for blank id, got %v", err)
	}
	if _, err := svc.Resolve(t.Context(), "ghost"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown id, got %v", err)
	}
}
