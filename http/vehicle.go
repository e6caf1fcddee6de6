package http

import (
	"github.com/labstack/echo/v4"

	"github.com/dukerupert/shopwrench"
)

// CreateCustomerRequest is the request payload for creating a customer.
type CreateCustomerRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Email     string `json:"email" validate:"omitempty,email,max=255"`
}

func (s *Server) handleCreateCustomer(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req CreateCustomerRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	customer := &shopwrench.Customer{
		ShopID:    actor.ShopID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
	}

	if err := s.customerService.CreateCustomer(ctx, customer); err != nil {
		return err
	}

	return RespondCreated(c, customer)
}

func (s *Server) handleGetCustomer(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	customerID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	customer, err := s.customerService.FindCustomerByID(ctx, customerID)
	if err != nil {
		return err
	}

	return RespondOK(c, customer)
}

// CreateVehicleRequest is the request payload for creating a vehicle.
type CreateVehicleRequest struct {
	CustomerID string `json:"customerId" validate:"required,uuid"`
	VIN        string `json:"vin" validate:"omitempty,max=17"`
	Year       int    `json:"year" validate:"omitempty,min=1900,max=2100"`
	Make       string `json:"make" validate:"omitempty,max=50"`
	Model      string `json:"model" validate:"omitempty,max=50"`
	Mileage    int    `json:"mileage" validate:"omitempty,min=0"`
}

func (s *Server) handleCreateVehicle(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req CreateVehicleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	customerID, err := parseUUID(req.CustomerID)
	if err != nil {
		return err
	}

	vehicle := &shopwrench.Vehicle{
		ShopID:     actor.ShopID,
		CustomerID: customerID,
		VIN:        req.VIN,
		Year:       req.Year,
		Make:       req.Make,
		Model:      req.Model,
		Mileage:    req.Mileage,
	}

	if err := s.vehicleService.CreateVehicle(ctx, vehicle); err != nil {
		return err
	}

	return RespondCreated(c, vehicle)
}

func (s *Server) handleGetVehicle(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	vehicleID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	vehicle, err := s.vehicleService.FindVehicleByID(ctx, vehicleID)
	if err != nil {
		return err
	}

	return RespondOK(c, vehicle)
}

func (s *Server) handleListCustomerVehicles(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	customerID, err := requireUUIDParam(c, "customerId")
	if err != nil {
		return err
	}

	vehicles, err := s.vehicleService.FindVehiclesByCustomer(ctx, customerID)
	if err != nil {
		return err
	}

	return RespondOK(c, map[string]any{
		"customerId": customerID,
		"vehicles":   vehicles,
	})
}
