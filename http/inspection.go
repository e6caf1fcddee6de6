package http

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/shopwrench"
)

// CreateInspectionRequest is the request payload for creating an inspection.
type CreateInspectionRequest struct {
	VehicleID    string `json:"vehicleId" validate:"required,uuid"`
	CustomerID   string `json:"customerId" validate:"required,uuid"`
	TechnicianID string `json:"technicianId" validate:"omitempty,uuid"`

	// SeedChecklist seeds the inspection with the standard checklist items.
	SeedChecklist bool `json:"seedChecklist"`
}

func (s *Server) handleCreateInspection(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	var req CreateInspectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	vehicleID, err := parseUUID(req.VehicleID)
	if err != nil {
		return err
	}
	customerID, err := parseUUID(req.CustomerID)
	if err != nil {
		return err
	}

	// Default the technician to the acting user
	technicianID := actor.UserID
	if req.TechnicianID != "" {
		if technicianID, err = parseUUID(req.TechnicianID); err != nil {
			return err
		}
	}

	inspection := &shopwrench.Inspection{
		ShopID:       actor.ShopID,
		VehicleID:    vehicleID,
		CustomerID:   customerID,
		TechnicianID: technicianID,
	}

	if err := s.inspectionService.CreateInspection(ctx, inspection); err != nil {
		return err
	}

	if req.SeedChecklist {
		items, err := s.itemService.CreateItemsFromTemplate(ctx, inspection.ID)
		if err != nil {
			s.log(c).Error("failed to seed checklist",
				slog.String("inspection_id", inspection.ID.String()),
				slog.String("error", err.Error()),
			)
		} else {
			inspection.Items = items
		}
	}

	s.log(c).Info("inspection created",
		slog.String("inspection_id", inspection.ID.String()),
		slog.String("vehicle_id", vehicleID.String()),
	)

	return RespondCreated(c, inspection)
}

func (s *Server) handleGetInspection(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	inspectionID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	inspection, err := s.inspectionService.FindInspectionByID(ctx, inspectionID)
	if err != nil {
		return err
	}

	return RespondOK(c, inspection)
}

// handleListInspections serves queue-style listings. Results come back
// critical-urgency first, so ?state=pending_review is the review queue.
func (s *Server) handleListInspections(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	offset, limit := pagination(c, 50)
	filter := shopwrench.InspectionFilter{
		ShopID: &actor.ShopID,
		Offset: offset,
		Limit:  limit,
	}

	if v := c.QueryParam("state"); v != "" {
		state := shopwrench.WorkflowState(v)
		if !state.Valid() {
			return shopwrench.Invalid("Unknown workflow state %q", v)
		}
		filter.State = &state
	}
	if v := c.QueryParam("urgency"); v != "" {
		urgency := shopwrench.UrgencyLevel(v)
		if !urgency.Valid() {
			return shopwrench.Invalid("Unknown urgency level %q", v)
		}
		filter.Urgency = &urgency
	}
	if v := c.QueryParam("technician_id"); v != "" {
		technicianID, err := parseUUID(v)
		if err != nil {
			return err
		}
		filter.TechnicianID = &technicianID
	}
	if v := c.QueryParam("vehicle_id"); v != "" {
		vehicleID, err := parseUUID(v)
		if err != nil {
			return err
		}
		filter.VehicleID = &vehicleID
	}

	inspections, total, err := s.inspectionService.FindInspections(ctx, filter)
	if err != nil {
		return err
	}

	return RespondList(c, inspections, total, offset, limit)
}

func (s *Server) handleRetireInspection(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	inspectionID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.inspectionService.RetireInspection(ctx, inspectionID); err != nil {
		return err
	}

	s.log(c).Info("inspection retired", slog.String("inspection_id", inspectionID.String()))

	return RespondNoContent(c)
}
