package partner

import (
	"github.com/stockledger/backend/internal/domain/shared"
)

// Supplier is a vendor that purchase orders are placed with
type Supplier struct {
	shared.BaseAggregateRoot
	Code    string `gorm:"type:varchar(32);not null;uniqueIndex"`
	Name    string `gorm:"type:varchar(255);not null"`
	Contact string `gorm:"type:varchar(255)"`
	Active  bool   `gorm:"not null;default:true"`
}

// TableName specifies the database table name
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates an active supplier
func NewSupplier(code, name string) (*Supplier, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier code is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier name is required")
	}

	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Active:            true,
	}, nil
}

// WithContact sets the contact information
func (s *Supplier) WithContact(contact string) *Supplier {
	s.Contact = contact
	return s
}

// Deactivate stops new orders to this supplier
func (s *Supplier) Deactivate() {
	s.Active = false
}

// Activate allows orders to this supplier again
func (s *Supplier) Activate() {
	s.Active = true
}
