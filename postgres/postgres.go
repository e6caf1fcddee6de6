// Package postgres provides PostgreSQL implementations of domain service interfaces.
package postgres

import (
	"github.com/dukerupert/shopwrench"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps the database connection pool and exposes domain services.
type DB struct {
	pool *pgxpool.Pool

	// Domain services (initialized in NewDB)
	ShopService             shopwrench.ShopService
	UserService             shopwrench.UserService
	CustomerService         shopwrench.CustomerService
	VehicleService          shopwrench.VehicleService
	InspectionService       shopwrench.InspectionService
	ItemService             shopwrench.ItemService
	RuleService             shopwrench.RuleService
	PermissionService       shopwrench.PermissionService
	TransitionRecordService shopwrench.TransitionRecordService
	SessionService          shopwrench.SessionService
}

// NewDB creates a new database wrapper with all services initialized.
func NewDB(pool *pgxpool.Pool) *DB {
	db := &DB{pool: pool}

	db.ShopService = &ShopService{db: db}
	db.UserService = &UserService{db: db}
	db.CustomerService = &CustomerService{db: db}
	db.VehicleService = &VehicleService{db: db}
	db.InspectionService = &InspectionService{db: db}
	db.ItemService = &ItemService{db: db}
	db.RuleService = &RuleService{db: db}
	db.PermissionService = &PermissionService{db: db}
	db.TransitionRecordService = &TransitionRecordService{db: db}
	db.SessionService = &SessionService{db: db}

	return db
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer using service methods.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}
