package workflow

import (
	"testing"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func permSet(perms ...shopwrench.Permission) shopwrench.PermissionSet {
	set := make(shopwrench.PermissionSet, len(perms))
	for _, p := range perms {
		set.Add(p)
	}
	return set
}

func TestValidateGraph(t *testing.T) {
	allPerms := permSet(
		shopwrench.PermInspectionsUpdate,
		shopwrench.PermInspectionsApprove,
		shopwrench.PermInspectionsSend,
	)

	allStates := []shopwrench.WorkflowState{
		shopwrench.StateDraft,
		shopwrench.StateInProgress,
		shopwrench.StatePendingReview,
		shopwrench.StateApproved,
		shopwrench.StateRejected,
		shopwrench.StateSentToCustomer,
		shopwrench.StateCompleted,
	}

	t.Run("every pair outside the edge set is refused", func(t *testing.T) {
		for _, from := range allStates {
			for _, to := range allStates {
				if from.CanTransitionTo(to) {
					continue
				}
				res := Validate(ValidateInput{
					Current:     from,
					Target:      to,
					Permissions: allPerms,
				})
				assert.False(t, res.Allowed, "%s -> %s should be refused", from, to)
				assert.True(t, res.HasCode(shopwrench.ValidationIllegalTransition))
			}
		}
	})

	t.Run("every legal edge passes with full permissions", func(t *testing.T) {
		for _, from := range allStates {
			for _, to := range from.AllowedTransitions() {
				res := Validate(ValidateInput{
					Current:     from,
					Target:      to,
					Permissions: allPerms,
				})
				assert.True(t, res.Allowed, "%s -> %s should pass: %v", from, to, res.Messages())
			}
		}
	})

	t.Run("completed is terminal", func(t *testing.T) {
		assert.Empty(t, shopwrench.StateCompleted.AllowedTransitions())
	})
}

func TestValidatePermissions(t *testing.T) {
	t.Run("approval requires inspections.approve", func(t *testing.T) {
		res := Validate(ValidateInput{
			Current:     shopwrench.StatePendingReview,
			Target:      shopwrench.StateApproved,
			Permissions: permSet(shopwrench.PermInspectionsUpdate),
		})

		assert.False(t, res.Allowed)
		assert.True(t, res.HasCode(shopwrench.ValidationPermissionDenied))
		assert.Equal(t, "inspections.approve", res.Errors[0].Permission)
	})

	t.Run("rejection requires inspections.approve", func(t *testing.T) {
		res := Validate(ValidateInput{
			Current:     shopwrench.StatePendingReview,
			Target:      shopwrench.StateRejected,
			Permissions: permSet(shopwrench.PermInspectionsUpdate),
		})
		assert.True(t, res.HasCode(shopwrench.ValidationPermissionDenied))
	})

	t.Run("sending requires inspections.send", func(t *testing.T) {
		res := Validate(ValidateInput{
			Current:     shopwrench.StateApproved,
			Target:      shopwrench.StateSentToCustomer,
			Permissions: permSet(shopwrench.PermInspectionsApprove),
		})
		assert.True(t, res.HasCode(shopwrench.ValidationPermissionDenied))
		assert.Equal(t, "inspections.send", res.Errors[0].Permission)
	})

	t.Run("update_own works only for the assigned technician", func(t *testing.T) {
		tech := uuid.New()
		in := ValidateInput{
			Current:      shopwrench.StateDraft,
			Target:       shopwrench.StateInProgress,
			Actor:        shopwrench.Actor{UserID: tech, Role: shopwrench.RoleTechnician},
			Permissions:  permSet(shopwrench.PermInspectionsUpdateOwn),
			TechnicianID: tech,
		}
		assert.True(t, Validate(in).Allowed)

		in.TechnicianID = uuid.New()
		res := Validate(in)
		assert.False(t, res.Allowed)
		assert.Equal(t, "inspections.update", res.Errors[0].Permission)
	})
}

func TestValidateSafety(t *testing.T) {
	critical := []*shopwrench.InspectionItem{
		{Component: "front brake pads", Condition: shopwrench.ConditionNeedsImmediate},
	}

	t.Run("needs_immediate item blocks approval", func(t *testing.T) {
		res := Validate(ValidateInput{
			Current:     shopwrench.StatePendingReview,
			Target:      shopwrench.StateApproved,
			Permissions: permSet(shopwrench.PermInspectionsApprove),
			Items:       critical,
		})

		assert.False(t, res.Allowed)
		assert.True(t, res.HasCode(shopwrench.ValidationSafetyBlocked))
	})

	t.Run("safety override permission lifts the block", func(t *testing.T) {
		res := Validate(ValidateInput{
			Current:     shopwrench.StatePendingReview,
			Target:      shopwrench.StateApproved,
			Permissions: permSet(shopwrench.PermInspectionsApprove, shopwrench.PermInspectionsSafetyOverride),
			Items:       critical,
		})
		assert.True(t, res.Allowed)
	})

	t.Run("safety rule does not block rejection", func(t *testing.T) {
		res := Validate(ValidateInput{
			Current:     shopwrench.StatePendingReview,
			Target:      shopwrench.StateRejected,
			Permissions: permSet(shopwrench.PermInspectionsApprove),
			Items:       critical,
		})
		assert.True(t, res.Allowed)
	})
}

func TestValidateCollectsAllCategories(t *testing.T) {
	// Illegal edge, missing permission, safety block, and a rule error all
	// at once: the caller gets the complete list.
	res := Validate(ValidateInput{
		Current:     shopwrench.StateDraft,
		Target:      shopwrench.StateApproved,
		Permissions: permSet(),
		Items: []*shopwrench.InspectionItem{
			{Component: "battery", Condition: shopwrench.ConditionNeedsImmediate},
		},
		RuleErrors: []shopwrench.ValidationError{
			{Code: shopwrench.ValidationRuleViolation, Message: "photo required"},
		},
	})

	assert.False(t, res.Allowed)
	assert.Len(t, res.Errors, 4)
	assert.True(t, res.HasCode(shopwrench.ValidationIllegalTransition))
	assert.True(t, res.HasCode(shopwrench.ValidationPermissionDenied))
	assert.True(t, res.HasCode(shopwrench.ValidationSafetyBlocked))
	assert.True(t, res.HasCode(shopwrench.ValidationRuleViolation))
}
