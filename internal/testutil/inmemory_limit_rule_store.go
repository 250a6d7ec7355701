package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/flexprice/orderlimit/internal/domain/limitrule"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/types"
)

// InMemoryLimitRuleStore implements limitrule.Repository
type InMemoryLimitRuleStore struct {
	mu    sync.RWMutex
	rules map[string]*limitrule.Rule
	err   error
}

func NewInMemoryLimitRuleStore() *InMemoryLimitRuleStore {
	return &InMemoryLimitRuleStore{
		rules: make(map[string]*limitrule.Rule),
	}
}

func (s *InMemoryLimitRuleStore) Create(_ context.Context, rule *limitrule.Rule) error {
	if rule == nil {
		return fmt.Errorf("rule cannot be nil")
	}
	if rule.ID == "" {
		rule.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LIMIT_RULE)
	}
	if rule.Status == "" {
		rule.BaseModel = types.GetDefaultBaseModel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rules[rule.ID]; exists {
		return ierr.NewError("limit rule already exists").
			Mark(ierr.ErrInvalidOperation)
	}
	s.rules[rule.ID] = rule
	return nil
}

// SetError makes every following lookup fail with err
func (s *InMemoryLimitRuleStore) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *InMemoryLimitRuleStore) ListByTarget(_ context.Context, granularity types.LimitGranularity, targetID string) ([]*limitrule.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return nil, ierr.WithError(s.err).
			WithHint("Failed to list limit rules").
			Mark(ierr.ErrDatabase)
	}

	var rules []*limitrule.Rule
	for _, rule := range s.rules {
		if rule.Granularity == granularity && rule.TargetID == targetID && rule.IsActive() {
			rules = append(rules, rule)
		}
	}
	limitrule.SortRules(rules)
	return rules, nil
}

func (s *InMemoryLimitRuleStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = make(map[string]*limitrule.Rule)
	s.err = nil
}
