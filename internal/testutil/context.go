package testutil

import (
	"context"

	"github.com/flexprice/orderlimit/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetRequestID(ctx, types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST))
	return ctx
}
