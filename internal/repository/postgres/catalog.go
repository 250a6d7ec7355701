package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/flexprice/orderlimit/internal/domain/catalog"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/postgres"
	"github.com/flexprice/orderlimit/internal/types"
)

type catalogRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCatalogRepository(db *postgres.DB, logger *logger.Logger) catalog.Repository {
	return &catalogRepository{db: db, logger: logger}
}

func (r *catalogRepository) GetSKU(ctx context.Context, id string) (*catalog.SKU, error) {
	var sku catalog.SKU
	err := r.get(ctx, &sku, `
		SELECT id, code, COALESCE(spu_id, '') AS spu_id
		FROM skus
		WHERE id = :value AND status = :status`, "sku", id)
	if err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *catalogRepository) GetSPU(ctx context.Context, id string) (*catalog.SPU, error) {
	var spu catalog.SPU
	err := r.get(ctx, &spu, `
		SELECT id, code
		FROM spus
		WHERE id = :value AND status = :status`, "spu", id)
	if err != nil {
		return nil, err
	}
	return &spu, nil
}

// FindSKUByIDOrCode prefers an id match over a code match
func (r *catalogRepository) FindSKUByIDOrCode(ctx context.Context, value string) (*catalog.SKU, error) {
	var sku catalog.SKU
	err := r.get(ctx, &sku, `
		SELECT id, code, COALESCE(spu_id, '') AS spu_id
		FROM skus
		WHERE (id = :value OR code = :value) AND status = :status
		ORDER BY (id = :value) DESC
		LIMIT 1`, "sku", value)
	if err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *catalogRepository) FindSPUByIDOrCode(ctx context.Context, value string) (*catalog.SPU, error) {
	var spu catalog.SPU
	err := r.get(ctx, &spu, `
		SELECT id, code
		FROM spus
		WHERE (id = :value OR code = :value) AND status = :status
		ORDER BY (id = :value) DESC
		LIMIT 1`, "spu", value)
	if err != nil {
		return nil, err
	}
	return &spu, nil
}

func (r *catalogRepository) ListCategoriesBySPU(ctx context.Context, spuID string) ([]*catalog.Category, error) {
	query := `
		SELECT c.id, c.name
		FROM categories c
		JOIN spu_categories sc ON sc.category_id = c.id
		WHERE sc.spu_id = :spu_id
		ORDER BY c.id`

	q := r.db.GetQuerier(ctx)
	bound, args, err := bindNamed(q, query, map[string]interface{}{"spu_id": spuID})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to build category query").
			Mark(ierr.ErrSystem)
	}

	var categories []*catalog.Category
	if err := q.SelectContext(ctx, &categories, bound, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list categories of spu").
			WithReportableDetails(map[string]any{
				"spu_id": spuID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return categories, nil
}

func (r *catalogRepository) get(ctx context.Context, dest interface{}, query, entity, value string) error {
	q := r.db.GetQuerier(ctx)
	bound, args, err := bindNamed(q, query, map[string]interface{}{
		"value":  value,
		"status": string(types.StatusActive),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to build %s query", entity).
			Mark(ierr.ErrSystem)
	}

	if err := q.GetContext(ctx, dest, bound, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ierr.WithError(err).
				WithHintf("%s not found", entity).
				WithReportableDetails(map[string]any{
					entity: value,
				}).
				Mark(ierr.ErrNotFound)
		}
		return ierr.WithError(err).
			WithHintf("Failed to get %s", entity).
			WithReportableDetails(map[string]any{
				entity: value,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}
