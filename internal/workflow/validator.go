// Package workflow contains the inspection lifecycle engine: the transition
// validator, the business rule evaluator, and the orchestrating engine. It is
// the single authority for transition legality; the store contributes only
// atomicity and the version check.
package workflow

import (
	"fmt"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
)

// ValidateInput carries everything the validator needs to judge a transition.
type ValidateInput struct {
	Current shopwrench.WorkflowState
	Target  shopwrench.WorkflowState

	Actor       shopwrench.Actor
	Permissions shopwrench.PermissionSet

	// TechnicianID is the inspection's assigned technician, for the
	// update_own permission path.
	TechnicianID uuid.UUID

	Items []*shopwrench.InspectionItem

	// RuleErrors are blocking errors contributed by validation-type business
	// rules, evaluated by the rule evaluator.
	RuleErrors []shopwrench.ValidationError
}

// Validate applies the transition rules in order: graph, permission, safety,
// business rules. Each category is evaluated independently so the caller
// receives the complete error list in one pass.
func Validate(in ValidateInput) shopwrench.ValidationResult {
	var errs []shopwrench.ValidationError

	if !in.Current.CanTransitionTo(in.Target) {
		errs = append(errs, shopwrench.ValidationError{
			Code:    shopwrench.ValidationIllegalTransition,
			Message: fmt.Sprintf("illegal transition from %s to %s", in.Current, in.Target),
		})
	}

	if missing, ok := requiredPermission(in); !ok {
		errs = append(errs, shopwrench.ValidationError{
			Code:       shopwrench.ValidationPermissionDenied,
			Message:    fmt.Sprintf("missing permission %s", missing.Name()),
			Permission: missing.Name(),
		})
	}

	if in.Target == shopwrench.StateApproved && !in.Permissions.Has(shopwrench.PermInspectionsSafetyOverride) {
		for _, item := range in.Items {
			if item.Condition == shopwrench.ConditionNeedsImmediate {
				errs = append(errs, shopwrench.ValidationError{
					Code:    shopwrench.ValidationSafetyBlocked,
					Message: fmt.Sprintf("critical safety item blocks approval: %s", item.Component),
				})
				break
			}
		}
	}

	errs = append(errs, in.RuleErrors...)

	return shopwrench.ValidationResult{
		Allowed: len(errs) == 0,
		Errors:  errs,
	}
}

// requiredPermission returns the permission the target state demands and
// whether the actor holds it. Approval states require inspections.approve,
// customer delivery requires inspections.send, everything else requires
// inspections.update - or inspections.update_own when the actor is the
// assigned technician.
func requiredPermission(in ValidateInput) (shopwrench.Permission, bool) {
	switch in.Target {
	case shopwrench.StateApproved, shopwrench.StateRejected:
		return shopwrench.PermInspectionsApprove, in.Permissions.Has(shopwrench.PermInspectionsApprove)
	case shopwrench.StateSentToCustomer:
		return shopwrench.PermInspectionsSend, in.Permissions.Has(shopwrench.PermInspectionsSend)
	default:
		if in.Permissions.Has(shopwrench.PermInspectionsUpdate) {
			return shopwrench.PermInspectionsUpdate, true
		}
		if in.Actor.UserID == in.TechnicianID && in.Permissions.Has(shopwrench.PermInspectionsUpdateOwn) {
			return shopwrench.PermInspectionsUpdateOwn, true
		}
		return shopwrench.PermInspectionsUpdate, false
	}
}
