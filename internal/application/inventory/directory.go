package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ProductDirectory is the slice of the catalog the stock engine depends on
type ProductDirectory interface {
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// WarehouseDirectory is the slice of the warehouse directory the stock
// engine depends on
type WarehouseDirectory interface {
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}
