package service

import (
	"context"
	"time"

	"github.com/flexprice/orderlimit/internal/domain/limitrule"
	"github.com/flexprice/orderlimit/internal/domain/order"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/sourcegraph/conc/iter"
)

// LimitService decides whether order line items are allowed under the
// configured purchase limit rules. Every method returns nil when the item
// may be bought, an error marked ierr.ErrLimitExceeded wrapping a
// *LimitViolation when a rule rejects it, and any other error when the
// check itself failed.
type LimitService interface {
	// CheckSKU evaluates the rules attached to the line item's sku
	CheckSKU(ctx context.Context, o *order.Order, item *order.LineItem) error

	// CheckSPU evaluates the rules attached to the line item's product
	CheckSPU(ctx context.Context, o *order.Order, item *order.LineItem) error

	// CheckCategory evaluates the rules attached to every category of the line item's product
	CheckCategory(ctx context.Context, o *order.Order, item *order.LineItem) error

	// CheckLineItem runs the spu, sku and category checks in that order
	CheckLineItem(ctx context.Context, o *order.Order, item *order.LineItem) error

	// CheckOrder checks every line item and stops at the first violation
	CheckOrder(ctx context.Context, o *order.Order) error
}

type limitService struct {
	ServiceParams
	location *time.Location

	sku      *limitChecker
	spu      *limitChecker
	category *limitChecker
}

func NewLimitService(params ServiceParams) LimitService {
	location, err := params.Config.Limit.Location()
	if err != nil {
		params.Logger.Warnw("invalid limit timezone, falling back to UTC",
			"timezone", params.Config.Limit.Timezone,
			"error", err,
		)
		location = time.UTC
	}

	s := &limitService{
		ServiceParams: params,
		location:      location,
	}

	deps := checkerDeps{
		logger:   params.Logger,
		catalog:  params.CatalogRepo,
		history:  newPurchaseHistory(params.PurchaseHistoryRepo, params.Logger, params.Config.Limit.HistoryRetries),
		messages: newLimitMessages(params.Config.Limit.Messages),
		now:      s.now,
	}
	s.sku = newSKULimitChecker(deps)
	s.spu = newSPULimitChecker(deps)
	s.category = newCategoryLimitChecker(deps)
	return s
}

// now is the evaluation instant in the configured timezone, which calendar
// periods are aligned to
func (s *limitService) now() time.Time {
	clock := s.Clock
	if clock == nil {
		clock = time.Now
	}
	return clock().In(s.location)
}

func (s *limitService) CheckSKU(ctx context.Context, o *order.Order, item *order.LineItem) error {
	return s.checkSKU(ctx, o, item)
}

func (s *limitService) CheckSPU(ctx context.Context, o *order.Order, item *order.LineItem) error {
	return s.checkSPU(ctx, s.newOrderCatalog(o), o, item)
}

func (s *limitService) CheckCategory(ctx context.Context, o *order.Order, item *order.LineItem) error {
	return s.checkCategory(ctx, s.newOrderCatalog(o), o, item)
}

func (s *limitService) CheckLineItem(ctx context.Context, o *order.Order, item *order.LineItem) error {
	return s.checkLineItem(ctx, s.newOrderCatalog(o), o, item)
}

func (s *limitService) CheckOrder(ctx context.Context, o *order.Order) error {
	if o == nil {
		return ierr.NewError("order is required").
			WithHint("An order is required to check purchase limits").
			Mark(ierr.ErrValidation)
	}

	s.Logger.Infow("checking purchase limits for order",
		"order_id", o.ID,
		"user_id", o.UserID,
		"line_items", len(o.LineItems),
	)

	check := func(ctx context.Context) error {
		oc := s.newOrderCatalog(o)
		for _, item := range o.LineItems {
			if err := s.checkLineItem(ctx, oc, o, item); err != nil {
				return err
			}
		}
		return nil
	}

	var err error
	if s.DB != nil {
		err = s.DB.WithSnapshot(ctx, check)
	} else {
		err = check(ctx)
	}

	if v, ok := AsLimitViolation(err); ok {
		s.Logger.Infow("order rejected by purchase limit",
			"order_id", o.ID,
			"user_id", o.UserID,
			"rule_id", v.RuleID,
			"code", v.Code,
		)
		return err
	}
	if err != nil {
		s.Logger.Errorw("failed to check purchase limits",
			"order_id", o.ID,
			"error", err,
		)
		return err
	}

	s.Logger.Debugw("order passed purchase limits", "order_id", o.ID)
	return nil
}

func (s *limitService) newOrderCatalog(o *order.Order) *orderCatalog {
	return newOrderCatalog(s.CatalogRepo, s.Logger, o)
}

func (s *limitService) checkLineItem(ctx context.Context, oc *orderCatalog, o *order.Order, item *order.LineItem) error {
	if err := s.checkSPU(ctx, oc, o, item); err != nil {
		return err
	}
	if err := s.checkSKU(ctx, o, item); err != nil {
		return err
	}
	return s.checkCategory(ctx, oc, o, item)
}

func (s *limitService) checkSKU(ctx context.Context, o *order.Order, item *order.LineItem) error {
	evalCtx := baseContext(s.Logger, o, item)
	if evalCtx == nil {
		return nil
	}
	return s.runRules(ctx, s.sku, evalCtx.SKUID, evalCtx)
}

func (s *limitService) checkSPU(ctx context.Context, oc *orderCatalog, o *order.Order, item *order.LineItem) error {
	evalCtx := baseContext(s.Logger, o, item)
	if evalCtx == nil {
		return nil
	}

	spuID, err := oc.spuOf(ctx, item)
	if err != nil {
		return s.cancelled(err)
	}
	if spuID == "" {
		s.Logger.Debugw("sku has no spu, skipping spu limit checks", "sku_id", item.SKUID)
		return nil
	}

	quantity, err := oc.spuQuantity(ctx, spuID)
	if err != nil {
		return s.cancelled(err)
	}
	evalCtx.SPUID = spuID
	evalCtx.SPUQuantityInOrder = quantity

	return s.runRules(ctx, s.spu, spuID, evalCtx)
}

func (s *limitService) checkCategory(ctx context.Context, oc *orderCatalog, o *order.Order, item *order.LineItem) error {
	base := baseContext(s.Logger, o, item)
	if base == nil {
		return nil
	}

	spuID, err := oc.spuOf(ctx, item)
	if err != nil {
		return s.cancelled(err)
	}
	if spuID == "" {
		s.Logger.Debugw("sku has no spu, skipping category limit checks", "sku_id", item.SKUID)
		return nil
	}

	categoryIDs, err := oc.categoriesOf(ctx, spuID)
	if err != nil {
		return s.cancelled(err)
	}

	for _, categoryID := range categoryIDs {
		quantity, err := oc.categoryQuantity(ctx, categoryID)
		if err != nil {
			return s.cancelled(err)
		}

		evalCtx := *base
		evalCtx.SPUID = spuID
		evalCtx.CategoryID = categoryID
		evalCtx.CategoryQuantityInOrder = quantity

		if err := s.runRules(ctx, s.category, categoryID, &evalCtx); err != nil {
			return err
		}
	}
	return nil
}

// ruleOutcome is the result of one rule in parallel mode
type ruleOutcome struct {
	violation *LimitViolation
	err       error
}

// runRules evaluates the target's rules in display order. In parallel mode
// every rule runs concurrently and the first failure in display order is
// reported, so results match sequential evaluation.
func (s *limitService) runRules(ctx context.Context, checker *limitChecker, targetID string, evalCtx *EvaluationContext) error {
	stored, err := s.LimitRuleRepo.ListByTarget(ctx, checker.granularity, targetID)
	if err != nil {
		s.Logger.Errorw("failed to load limit rules",
			"granularity", checker.granularity,
			"target_id", targetID,
			"error", err,
		)
		if ctx.Err() != nil {
			return s.cancelled(ctx.Err())
		}
		return ierr.WithError(err).
			WithHint("Failed to load purchase limit rules").
			Mark(ierr.ErrDatabase)
	}
	if len(stored) == 0 {
		return nil
	}

	// repositories may share their slices
	rules := append([]*limitrule.Rule(nil), stored...)
	limitrule.SortRules(rules)

	if !s.Config.Limit.ParallelRules || len(rules) == 1 {
		for _, rule := range rules {
			violation, err := checker.check(ctx, rule, evalCtx)
			if err != nil {
				return err
			}
			if violation != nil {
				return violation.toError()
			}
		}
		return nil
	}

	outcomes := iter.Map(rules, func(rule **limitrule.Rule) ruleOutcome {
		violation, err := checker.check(ctx, *rule, evalCtx)
		return ruleOutcome{violation: violation, err: err}
	})
	for _, outcome := range outcomes {
		if outcome.err != nil {
			return outcome.err
		}
		if outcome.violation != nil {
			return outcome.violation.toError()
		}
	}
	return nil
}

// cancelled reports a context failure met while building evaluation contexts
func (s *limitService) cancelled(err error) error {
	return ierr.WithError(err).
		WithHint("Purchase limit check was cancelled").
		Mark(ierr.ErrSystem)
}
