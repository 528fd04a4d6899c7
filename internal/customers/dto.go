package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/karatworks/aurumpos-backend/pkg/db/models"
)

// CustomerDTO is the customer payload returned to clients.
type CustomerDTO struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        *string   `json:"email,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	BalanceCents int64     `json:"balanceCents"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CustomerList is a cursor page of customers.
type CustomerList struct {
	Customers  []CustomerDTO `json:"customers"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

// NewCustomerDTO builds a DTO from the persisted model.
func NewCustomerDTO(customer *models.Customer) *CustomerDTO {
	dto := &CustomerDTO{
		ID:           customer.ID,
		FirstName:    customer.FirstName,
		LastName:     customer.LastName,
		BalanceCents: customer.BalanceCents,
		CreatedAt:    customer.CreatedAt,
		UpdatedAt:    customer.UpdatedAt,
	}
	if customer.Email != nil {
		email := *customer.Email
		dto.Email = &email
	}
	if customer.Phone != nil {
		phone := *customer.Phone
		dto.Phone = &phone
	}
	if customer.Notes != nil {
		notes := *customer.Notes
		dto.Notes = &notes
	}
	return dto
}
