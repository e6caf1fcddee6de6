package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/shopwrench"
	"github.com/dukerupert/shopwrench/internal/audit"
)

// TransitionRequest is the request payload for a workflow transition.
type TransitionRequest struct {
	Target string `json:"target" validate:"required,workflow_state"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// handleRequestTransition runs a transition through the workflow engine.
// Refusals come back as 422 with the full validation detail in the body so
// clients can show every failed check, not just the first.
func (s *Server) handleRequestTransition(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	inspectionID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req TransitionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	target := shopwrench.WorkflowState(req.Target)

	result, err := s.workflowService.RequestTransition(ctx, inspectionID, target, actor, req.Reason)
	if err != nil {
		return err
	}

	if !result.Validation.Allowed {
		s.log(c).Info("transition refused",
			slog.String("inspection_id", inspectionID.String()),
			slog.String("target", string(target)),
			slog.Any("reasons", result.Validation.Messages()),
		)
		return Respond(c, http.StatusUnprocessableEntity, result)
	}

	s.log(c).Info("transition applied",
		slog.String("inspection_id", inspectionID.String()),
		slog.String("from", string(result.FromState)),
		slog.String("to", string(result.NewState)),
	)

	return RespondOK(c, result)
}

func (s *Server) handleListTransitions(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	inspectionID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	// 404 for unknown inspections rather than an empty history
	if _, err := s.inspectionService.FindInspectionByID(ctx, inspectionID); err != nil {
		return err
	}

	records, err := s.transitionService.FindTransitionsByInspection(ctx, inspectionID)
	if err != nil {
		return err
	}

	return RespondOK(c, map[string]any{
		"inspectionId": inspectionID,
		"transitions":  records,
	})
}

func (s *Server) handleListDenials(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	inspectionID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	offset, limit := pagination(c, 50)

	denials, err := s.denials.FindDenialsByInspection(ctx, inspectionID, limit, offset)
	if err != nil {
		return err
	}
	if denials == nil {
		denials = []audit.DenialEntry{}
	}

	return RespondList(c, denials, len(denials), offset, limit)
}

func (s *Server) handleRecomputeUrgency(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	inspectionID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	report, err := s.workflowService.RecomputeUrgency(ctx, inspectionID)
	if err != nil {
		return err
	}

	s.log(c).Info("urgency recomputed",
		slog.String("inspection_id", inspectionID.String()),
		slog.String("level", string(report.Level)),
		slog.Int("score", report.Score),
	)

	return RespondOK(c, report)
}
