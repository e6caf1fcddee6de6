package mock

import (
	"context"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
)

// Compile-time interface checks
var (
	_ shopwrench.CustomerService = (*CustomerService)(nil)
	_ shopwrench.VehicleService  = (*VehicleService)(nil)
)

// CustomerService is a mock implementation of shopwrench.CustomerService.
type CustomerService struct {
	FindCustomerByIDFn func(ctx context.Context, id uuid.UUID) (*shopwrench.Customer, error)
	CreateCustomerFn   func(ctx context.Context, customer *shopwrench.Customer) error
}

func (s *CustomerService) FindCustomerByID(ctx context.Context, id uuid.UUID) (*shopwrench.Customer, error) {
	if s.FindCustomerByIDFn != nil {
		return s.FindCustomerByIDFn(ctx, id)
	}
	return nil, shopwrench.NotFound("Customer not found")
}

func (s *CustomerService) CreateCustomer(ctx context.Context, customer *shopwrench.Customer) error {
	if s.CreateCustomerFn != nil {
		return s.CreateCustomerFn(ctx, customer)
	}
	customer.ID = uuid.New()
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = time.Now()
	return nil
}

// VehicleService is a mock implementation of shopwrench.VehicleService.
type VehicleService struct {
	FindVehicleByIDFn       func(ctx context.Context, id uuid.UUID) (*shopwrench.Vehicle, error)
	FindVehiclesByCustomerFn func(ctx context.Context, customerID uuid.UUID) ([]*shopwrench.Vehicle, error)
	CreateVehicleFn         func(ctx context.Context, vehicle *shopwrench.Vehicle) error
}

func (s *VehicleService) FindVehicleByID(ctx context.Context, id uuid.UUID) (*shopwrench.Vehicle, error) {
	if s.FindVehicleByIDFn != nil {
		return s.FindVehicleByIDFn(ctx, id)
	}
	return nil, shopwrench.NotFound("Vehicle not found")
}

func (s *VehicleService) FindVehiclesByCustomer(ctx context.Context, customerID uuid.UUID) ([]*shopwrench.Vehicle, error) {
	if s.FindVehiclesByCustomerFn != nil {
		return s.FindVehiclesByCustomerFn(ctx, customerID)
	}
	return []*shopwrench.Vehicle{}, nil
}

func (s *VehicleService) CreateVehicle(ctx context.Context, vehicle *shopwrench.Vehicle) error {
	if s.CreateVehicleFn != nil {
		return s.CreateVehicleFn(ctx, vehicle)
	}
	vehicle.ID = uuid.New()
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()
	return nil
}
