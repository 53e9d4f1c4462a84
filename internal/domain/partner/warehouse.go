package partner

import (
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Warehouse is a physical stock location
type Warehouse struct {
	shared.BaseAggregateRoot
	Code     string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	Name     string          `gorm:"type:varchar(255);not null"`
	Location string          `gorm:"type:varchar(255)"`
	Capacity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active   bool            `gorm:"not null;default:true"`
}

// TableName specifies the database table name
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates an active warehouse
func NewWarehouse(code, name string) (*Warehouse, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Warehouse code is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Warehouse name is required")
	}

	return &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Active:            true,
	}, nil
}

// WithLocation sets the physical location
func (w *Warehouse) WithLocation(location string) *Warehouse {
	w.Location = location
	return w
}

// SetCapacity updates the storage capacity
func (w *Warehouse) SetCapacity(capacity decimal.Decimal) error {
	if capacity.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Capacity cannot be negative")
	}
	w.Capacity = capacity
	return nil
}

// Deactivate takes the warehouse out of service; existing stock history
// remains intact
func (w *Warehouse) Deactivate() {
	w.Active = false
}

// Activate returns the warehouse to service
func (w *Warehouse) Activate() {
	w.Active = true
}
