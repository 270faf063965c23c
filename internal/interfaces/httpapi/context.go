package httpapi

import (
	"context"

	"github.com/pickemhq/pickem-pool/internal/usecase"
)

type contextKey string

const identityContextKey contextKey = "participant_identity"

func withIdentity(ctx context.Context, identity usecase.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

func identityFromContext(ctx context.Context) (usecase.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(usecase.Identity)
	return identity, ok
}
