package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/postgres"
	"github.com/flexprice/orderlimit/internal/testutil"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSnapshot_ConcurrentReadsShareConnection(t *testing.T) {
	drv := &testutil.WireDriver{Value: 7, Latency: 2 * time.Millisecond}
	db := postgres.NewDBFromConn(testutil.OpenWireDB(drv), logger.NewNoopLogger())
	defer db.Close()

	const readers = 8
	totals := make([]int64, readers)
	errs := make([]error, readers)

	err := db.WithSnapshot(context.Background(), func(ctx context.Context) error {
		var wg conc.WaitGroup
		for i := 0; i < readers; i++ {
			wg.Go(func() {
				errs[i] = db.GetQuerier(ctx).GetContext(ctx, &totals[i], "SELECT 7")
			})
		}
		wg.Wait()
		return nil
	})
	require.NoError(t, err)

	for i := 0; i < readers; i++ {
		assert.NoError(t, errs[i], "reader %d", i)
		assert.Equal(t, int64(7), totals[i], "reader %d", i)
	}
	assert.Equal(t, int64(readers), drv.Queries())
	assert.Zero(t, drv.Collisions())
}

func TestWithSnapshot_NestedReusesTransaction(t *testing.T) {
	drv := &testutil.WireDriver{Value: 1}
	db := postgres.NewDBFromConn(testutil.OpenWireDB(drv), logger.NewNoopLogger())
	defer db.Close()

	err := db.WithSnapshot(context.Background(), func(outer context.Context) error {
		outerTx, ok := postgres.GetTx(outer)
		require.True(t, ok)

		return db.WithSnapshot(outer, func(inner context.Context) error {
			innerTx, ok := postgres.GetTx(inner)
			require.True(t, ok)
			assert.Same(t, outerTx, innerTx)
			return nil
		})
	})
	require.NoError(t, err)
}
