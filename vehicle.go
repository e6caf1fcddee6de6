package shopwrench

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Customer represents a vehicle owner.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	ShopID    uuid.UUID `json:"shopId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Vehicle represents a customer's vehicle.
type Vehicle struct {
	ID         uuid.UUID `json:"id"`
	ShopID     uuid.UUID `json:"shopId"`
	CustomerID uuid.UUID `json:"customerId"`
	VIN        string    `json:"vin,omitempty"`
	Year       int       `json:"year,omitempty"`
	Make       string    `json:"make,omitempty"`
	Model      string    `json:"model,omitempty"`
	Mileage    int       `json:"mileage,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Joined fields (populated by some queries)
	Customer *Customer `json:"customer,omitempty"`
}

// CustomerService defines operations for managing customers.
type CustomerService interface {
	// FindCustomerByID retrieves a customer by their ID.
	// Returns ENOTFOUND if the customer does not exist.
	FindCustomerByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// CreateCustomer creates a new customer.
	CreateCustomer(ctx context.Context, customer *Customer) error
}

// VehicleService defines operations for managing vehicles.
type VehicleService interface {
	// FindVehicleByID retrieves a vehicle by its ID.
	// Returns ENOTFOUND if the vehicle does not exist.
	FindVehicleByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	// FindVehiclesByCustomer retrieves all vehicles for a customer.
	FindVehiclesByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Vehicle, error)

	// CreateVehicle creates a new vehicle.
	// Returns ENOTFOUND if the customer does not exist.
	CreateVehicle(ctx context.Context, vehicle *Vehicle) error
}
