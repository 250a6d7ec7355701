package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/flexprice/orderlimit/internal/domain/order"
	"github.com/flexprice/orderlimit/internal/types"
)

// InMemoryOrderStore keeps past orders and implements order.PurchaseHistoryRepository
// with the same matching rules as the sql backends
type InMemoryOrderStore struct {
	mu      sync.RWMutex
	orders  map[string]*order.Order
	catalog *InMemoryCatalogStore

	failures int
	failErr  error
	calls    int
	queries  []types.PurchaseHistoryQuery
}

func NewInMemoryOrderStore(catalog *InMemoryCatalogStore) *InMemoryOrderStore {
	return &InMemoryOrderStore{
		orders:  make(map[string]*order.Order),
		catalog: catalog,
	}
}

func (s *InMemoryOrderStore) Create(_ context.Context, o *order.Order) error {
	if o == nil {
		return fmt.Errorf("order cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	return nil
}

// FailNext makes the next n aggregations fail with err
func (s *InMemoryOrderStore) FailNext(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
	s.failErr = err
}

// Calls returns how many aggregations were attempted
func (s *InMemoryOrderStore) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

// Queries returns the queries received so far
func (s *InMemoryOrderStore) Queries() []types.PurchaseHistoryQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]types.PurchaseHistoryQuery(nil), s.queries...)
}

func (s *InMemoryOrderStore) SumPurchasedQuantity(ctx context.Context, query *types.PurchaseHistoryQuery) (int64, error) {
	if err := query.Validate(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.calls++
	s.queries = append(s.queries, *query)
	if s.failures > 0 {
		s.failures--
		err := s.failErr
		s.mu.Unlock()
		return 0, err
	}
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, o := range s.orders {
		if o.UserID != query.UserID || !o.State.CountsTowardsLimits() {
			continue
		}
		if query.ExcludeOrderID != "" && o.ID == query.ExcludeOrderID {
			continue
		}
		if query.Window != nil && !query.Window.Contains(o.CreatedAt) {
			continue
		}
		for _, item := range o.LineItems {
			if s.matches(item, query.Target) {
				total += item.Quantity
			}
		}
	}
	return total, nil
}

func (s *InMemoryOrderStore) matches(item *order.LineItem, target types.LimitTarget) bool {
	switch target.Granularity {
	case types.LimitGranularitySKU:
		return item.SKUID == target.ID
	case types.LimitGranularitySPU:
		return s.catalog.spuOf(item.SKUID, item.SPUID) == target.ID
	case types.LimitGranularityCategory:
		return s.catalog.inCategory(s.catalog.spuOf(item.SKUID, item.SPUID), target.ID)
	}
	return false
}

func (s *InMemoryOrderStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = make(map[string]*order.Order)
	s.failures = 0
	s.failErr = nil
	s.calls = 0
	s.queries = nil
}
