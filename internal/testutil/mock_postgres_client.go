package testutil

import (
	"context"
	"sync/atomic"

	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

// MockPostgresClient runs snapshot callbacks inline and counts them
type MockPostgresClient struct {
	logger    *logger.Logger
	snapshots atomic.Int64
}

func NewMockPostgresClient(logger *logger.Logger) *MockPostgresClient {
	return &MockPostgresClient{
		logger: logger,
	}
}

type snapshotKey struct{}

// WithSnapshot executes fn without a real transaction. Nested calls reuse the outer one.
func (c *MockPostgresClient) WithSnapshot(ctx context.Context, fn func(context.Context) error) error {
	if ctx.Value(snapshotKey{}) != nil {
		return fn(ctx)
	}
	c.snapshots.Add(1)
	return fn(context.WithValue(ctx, snapshotKey{}, true))
}

// Snapshots returns how many top level snapshots were opened
func (c *MockPostgresClient) Snapshots() int64 {
	return c.snapshots.Load()
}
