package http

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/dukerupert/shopwrench"
)

// CreateRuleRequest is the request payload for creating a business rule.
type CreateRuleRequest struct {
	Name       string                     `json:"name" validate:"required,max=100"`
	Type       string                     `json:"type" validate:"required,oneof=validation state_transition calculation"`
	Priority   int                        `json:"priority" validate:"omitempty,min=0,max=1000"`
	Active     bool                       `json:"active"`
	Conditions []shopwrench.RuleCondition `json:"conditions"`
	Action     shopwrench.RuleAction      `json:"action" validate:"required"`

	// Global applies the rule to every shop. Requires manage permission
	// regardless; shop-scoped rules bind to the actor's shop.
	Global bool `json:"global"`
}

func (s *Server) handleCreateRule(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	if err := s.authz.Check(ctx, actor, shopwrench.PermPermissionsManage); err != nil {
		return err
	}

	var req CreateRuleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rule := &shopwrench.BusinessRule{
		Name:       req.Name,
		Type:       shopwrench.RuleType(req.Type),
		Priority:   req.Priority,
		Active:     req.Active,
		Conditions: req.Conditions,
		Action:     req.Action,
	}
	if !req.Global {
		shopID := actor.ShopID
		rule.ShopID = &shopID
	}

	if err := s.ruleService.CreateRule(ctx, rule); err != nil {
		return err
	}

	s.log(c).Info("business rule created",
		slog.String("rule_id", rule.ID.String()),
		slog.String("type", string(rule.Type)),
	)

	return RespondCreated(c, rule)
}

func (s *Server) handleListShopRules(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	shopID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	rules, err := s.ruleService.FindActiveRules(ctx, shopID)
	if err != nil {
		return err
	}

	return RespondOK(c, map[string]any{
		"shopId": shopID,
		"rules":  rules,
	})
}

// UpdateRuleRequest is the request payload for updating a business rule.
type UpdateRuleRequest struct {
	Name       *string                     `json:"name" validate:"omitempty,max=100"`
	Priority   *int                        `json:"priority" validate:"omitempty,min=0,max=1000"`
	Active     *bool                       `json:"active"`
	Conditions *[]shopwrench.RuleCondition `json:"conditions"`
	Action     *shopwrench.RuleAction      `json:"action"`
}

func (s *Server) handleUpdateRule(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	if err := s.authz.Check(ctx, actor, shopwrench.PermPermissionsManage); err != nil {
		return err
	}

	ruleID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	var req UpdateRuleRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	rule, err := s.ruleService.UpdateRule(ctx, ruleID, shopwrench.RuleUpdate{
		Name:       req.Name,
		Priority:   req.Priority,
		Active:     req.Active,
		Conditions: req.Conditions,
		Action:     req.Action,
	})
	if err != nil {
		return err
	}

	return RespondOK(c, rule)
}

func (s *Server) handleDeleteRule(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	actor, err := requireActor(c)
	if err != nil {
		return err
	}

	if err := s.authz.Check(ctx, actor, shopwrench.PermPermissionsManage); err != nil {
		return err
	}

	ruleID, err := requireUUIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := s.ruleService.DeleteRule(ctx, ruleID); err != nil {
		return err
	}

	return RespondNoContent(c)
}
