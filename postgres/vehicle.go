package postgres

import (
	"context"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Compile-time interface checks
var (
	_ shopwrench.CustomerService = (*CustomerService)(nil)
	_ shopwrench.VehicleService  = (*VehicleService)(nil)
)

// CustomerService implements shopwrench.CustomerService using PostgreSQL.
type CustomerService struct {
	db *DB
}

func (s *CustomerService) FindCustomerByID(ctx context.Context, id uuid.UUID) (*shopwrench.Customer, error) {
	var c shopwrench.Customer
	err := s.db.pool.QueryRow(ctx, `
		SELECT id, shop_id, first_name, last_name, phone, email, created_at, updated_at
		FROM customers
		WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.ShopID, &c.FirstName, &c.LastName, &c.Phone, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shopwrench.NotFound("Customer not found")
		}
		return nil, shopwrench.Internal("Failed to fetch customer", err)
	}
	return &c, nil
}

func (s *CustomerService) CreateCustomer(ctx context.Context, customer *shopwrench.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	now := time.Now()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO customers (id, shop_id, first_name, last_name, phone, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		customer.ID, customer.ShopID, customer.FirstName, customer.LastName,
		customer.Phone, customer.Email, customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shopwrench.NotFound("Shop not found")
		}
		return shopwrench.Internal("Failed to create customer", err)
	}
	return nil
}

// VehicleService implements shopwrench.VehicleService using PostgreSQL.
type VehicleService struct {
	db *DB
}

func (s *VehicleService) FindVehicleByID(ctx context.Context, id uuid.UUID) (*shopwrench.Vehicle, error) {
	var v shopwrench.Vehicle
	err := s.db.pool.QueryRow(ctx, `
		SELECT id, shop_id, customer_id, vin, year, make, model, mileage, created_at, updated_at
		FROM vehicles
		WHERE id = $1`,
		id,
	).Scan(&v.ID, &v.ShopID, &v.CustomerID, &v.VIN, &v.Year, &v.Make, &v.Model,
		&v.Mileage, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, shopwrench.NotFound("Vehicle not found")
		}
		return nil, shopwrench.Internal("Failed to fetch vehicle", err)
	}
	return &v, nil
}

func (s *VehicleService) FindVehiclesByCustomer(ctx context.Context, customerID uuid.UUID) ([]*shopwrench.Vehicle, error) {
	rows, err := s.db.pool.Query(ctx, `
		SELECT id, shop_id, customer_id, vin, year, make, model, mileage, created_at, updated_at
		FROM vehicles
		WHERE customer_id = $1
		ORDER BY created_at`,
		customerID,
	)
	if err != nil {
		return nil, shopwrench.Internal("Failed to fetch vehicles", err)
	}
	defer rows.Close()

	var vehicles []*shopwrench.Vehicle
	for rows.Next() {
		var v shopwrench.Vehicle
		if err := rows.Scan(&v.ID, &v.ShopID, &v.CustomerID, &v.VIN, &v.Year, &v.Make,
			&v.Model, &v.Mileage, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, shopwrench.Internal("Failed to scan vehicle", err)
		}
		vehicles = append(vehicles, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, shopwrench.Internal("Failed to iterate vehicles", err)
	}
	return vehicles, nil
}

func (s *VehicleService) CreateVehicle(ctx context.Context, vehicle *shopwrench.Vehicle) error {
	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	now := time.Now()
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	_, err := s.db.pool.Exec(ctx, `
		INSERT INTO vehicles (id, shop_id, customer_id, vin, year, make, model, mileage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		vehicle.ID, vehicle.ShopID, vehicle.CustomerID, vehicle.VIN, vehicle.Year,
		vehicle.Make, vehicle.Model, vehicle.Mileage, vehicle.CreatedAt, vehicle.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shopwrench.NotFound("Customer not found")
		}
		return shopwrench.Internal("Failed to create vehicle", err)
	}
	return nil
}
