package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/flexprice/orderlimit/internal/domain/catalog"
	ierr "github.com/flexprice/orderlimit/internal/errors"
)

// InMemoryCatalogStore implements catalog.Repository
type InMemoryCatalogStore struct {
	mu            sync.RWMutex
	skus          map[string]*catalog.SKU
	spus          map[string]*catalog.SPU
	categories    map[string]*catalog.Category
	spuCategories map[string][]string
	err           error
}

func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	s := &InMemoryCatalogStore{}
	s.Clear()
	return s
}

func (s *InMemoryCatalogStore) AddSKU(sku *catalog.SKU) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skus[sku.ID] = sku
}

func (s *InMemoryCatalogStore) AddSPU(spu *catalog.SPU) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spus[spu.ID] = spu
}

// AddCategory stores the category and links it to the given spus
func (s *InMemoryCatalogStore) AddCategory(category *catalog.Category, spuIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[category.ID] = category
	for _, spuID := range spuIDs {
		s.spuCategories[spuID] = append(s.spuCategories[spuID], category.ID)
	}
}

// SetError makes every following lookup fail with err
func (s *InMemoryCatalogStore) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *InMemoryCatalogStore) GetSKU(_ context.Context, id string) (*catalog.SKU, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	if sku, ok := s.skus[id]; ok {
		return sku, nil
	}
	return nil, notFound("sku", id)
}

func (s *InMemoryCatalogStore) GetSPU(_ context.Context, id string) (*catalog.SPU, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	if spu, ok := s.spus[id]; ok {
		return spu, nil
	}
	return nil, notFound("spu", id)
}

func (s *InMemoryCatalogStore) ListCategoriesBySPU(_ context.Context, spuID string) ([]*catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}

	var categories []*catalog.Category
	for _, id := range s.spuCategories[spuID] {
		if category, ok := s.categories[id]; ok {
			categories = append(categories, category)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (s *InMemoryCatalogStore) FindSKUByIDOrCode(ctx context.Context, value string) (*catalog.SKU, error) {
	if sku, err := s.GetSKU(ctx, value); err == nil || !ierr.IsNotFound(err) {
		return sku, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sku := range s.skus {
		if sku.Code == value {
			return sku, nil
		}
	}
	return nil, notFound("sku", value)
}

func (s *InMemoryCatalogStore) FindSPUByIDOrCode(ctx context.Context, value string) (*catalog.SPU, error) {
	if spu, err := s.GetSPU(ctx, value); err == nil || !ierr.IsNotFound(err) {
		return spu, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, spu := range s.spus {
		if spu.Code == value {
			return spu, nil
		}
	}
	return nil, notFound("spu", value)
}

// spuOf mirrors the sql fallback from the line item to its sku's parent
func (s *InMemoryCatalogStore) spuOf(skuID, spuID string) string {
	if spuID != "" {
		return spuID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sku, ok := s.skus[skuID]; ok {
		return sku.SPUID
	}
	return ""
}

func (s *InMemoryCatalogStore) inCategory(spuID, categoryID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.spuCategories[spuID] {
		if id == categoryID {
			return true
		}
	}
	return false
}

func (s *InMemoryCatalogStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skus = make(map[string]*catalog.SKU)
	s.spus = make(map[string]*catalog.SPU)
	s.categories = make(map[string]*catalog.Category)
	s.spuCategories = make(map[string][]string)
	s.err = nil
}

func notFound(entity, value string) error {
	return ierr.NewErrorf("%s %s not found", entity, value).
		WithHintf("%s not found", entity).
		Mark(ierr.ErrNotFound)
}
