package partner

import (
	"context"
	"strings"

	"github.com/duka/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultCountryCode is prefixed to local numbers that start with 0
const DefaultCountryCode = "255"

// Customer is a buyer that can carry debts. A sale without a customer is a walk-in sale.
type Customer struct {
	shared.ShopAggregateRoot
	Name     string `gorm:"type:varchar(200);not null"`
	Phone    string `gorm:"type:varchar(20);index"`
	Email    string `gorm:"type:varchar(200)"`
	Address  string `gorm:"type:text"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(shopID uuid.UUID, name, phone string) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return &Customer{
		ShopAggregateRoot: shared.NewShopAggregateRoot(shopID),
		Name:              name,
		Phone:             NormalizePhone(phone),
		IsActive:          true,
	}, nil
}

// Rename changes the customer's name
func (c *Customer) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	c.Name = name
	c.Touch()
	return nil
}

// UpdateContact replaces the contact details
func (c *Customer) UpdateContact(phone, email, address string) {
	c.Phone = NormalizePhone(phone)
	c.Email = strings.TrimSpace(email)
	c.Address = strings.TrimSpace(address)
	c.Touch()
}

// HasPhone reports whether the customer can receive reminders
func (c *Customer) HasPhone() bool {
	return c.Phone != ""
}

// NormalizePhone converts a phone number to international form.
// Spaces, dashes and brackets are dropped, a leading 0 becomes +255 and any
// other number without a leading + gets one.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		if r == ' ' || r == '-' || r == '(' || r == ')' {
			continue
		}
		b.WriteRune(r)
	}
	p := b.String()
	switch {
	case p == "":
		return ""
	case strings.HasPrefix(p, "+"):
		return p
	case strings.HasPrefix(p, "0"):
		return "+" + DefaultCountryCode + p[1:]
	default:
		return "+" + p
	}
}

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	// FindByIDForShop finds a customer within a shop
	FindByIDForShop(ctx context.Context, shopID, id uuid.UUID) (*Customer, error)

	// FindByIDs loads several customers at once (missing IDs are skipped)
	FindByIDs(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]Customer, error)

	// FindAll lists customers with search on name and phone
	FindAll(ctx context.Context, shopID uuid.UUID, filter shared.Filter) ([]Customer, int64, error)

	// IsReferenced reports whether sales or debts point at the customer
	IsReferenced(ctx context.Context, id uuid.UUID) (bool, error)

	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, shopID, id uuid.UUID) error
}
