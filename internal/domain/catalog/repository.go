package catalog

import (
	"context"
)

// Repository is the read only catalog lookup used by limit evaluation.
// Lookups of missing rows return an error marked ierr.ErrNotFound.
type Repository interface {
	GetSKU(ctx context.Context, id string) (*SKU, error)
	GetSPU(ctx context.Context, id string) (*SPU, error)
	// ListCategoriesBySPU returns every category the spu belongs to
	ListCategoriesBySPU(ctx context.Context, spuID string) ([]*Category, error)
	// FindSKUByIDOrCode resolves a rule value that may hold either an id or an external code
	FindSKUByIDOrCode(ctx context.Context, value string) (*SKU, error)
	FindSPUByIDOrCode(ctx context.Context, value string) (*SPU, error)
}
