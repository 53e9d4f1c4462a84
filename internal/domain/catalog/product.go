package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Product is a catalog entry referenced by ledger entries and orders
type Product struct {
	shared.BaseAggregateRoot
	SKU       string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name      string          `gorm:"type:varchar(255);not null"`
	Unit      string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	UnitCost  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active    bool            `gorm:"not null;default:true"`
}

// TableName specifies the database table name
func (Product) TableName() string {
	return "products"
}

// NewProduct creates an active catalog product
func NewProduct(sku, name string) (*Product, error) {
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "SKU is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product name is required")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               sku,
		Name:              name,
		Unit:              "pcs",
		Active:            true,
	}, nil
}

// SetPricing updates unit cost and price
func (p *Product) SetPricing(unitCost, unitPrice decimal.Decimal) error {
	if unitCost.IsNegative() || unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Pricing cannot be negative")
	}
	p.UnitCost = unitCost
	p.UnitPrice = unitPrice
	return nil
}

// Deactivate removes the product from active use without deleting history
func (p *Product) Deactivate() {
	p.Active = false
}

// Activate returns the product to active use
func (p *Product) Activate() {
	p.Active = true
}
