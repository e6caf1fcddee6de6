// Package validation wires go-playground/validator into Echo's Validator
// interface so handlers can call c.Validate on bound request structs.
package validation

import (
	"fmt"
	"strings"

	"github.com/dukerupert/shopwrench"
	"github.com/go-playground/validator/v10"
)

// Validator implements echo.Validator using struct validation tags.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the domain's custom checks
// registered.
func NewValidator() *Validator {
	v := validator.New()

	// workflow_state: one of the recognized lifecycle states
	_ = v.RegisterValidation("workflow_state", func(fl validator.FieldLevel) bool {
		return shopwrench.WorkflowState(fl.Field().String()).Valid()
	})

	// item_condition: one of the recognized condition ratings
	_ = v.RegisterValidation("item_condition", func(fl validator.FieldLevel) bool {
		return shopwrench.ItemCondition(fl.Field().String()).Valid()
	})

	// role: one of the recognized user roles
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return shopwrench.Role(fl.Field().String()).Valid()
	})

	return &Validator{validate: v}
}

// Validate validates a struct using its validation tags and returns an
// EINVALID error listing every failed field.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fieldName(fe), message(fe)))
	}
	return shopwrench.Invalid("%s", strings.Join(msgs, "; "))
}

func fieldName(fe validator.FieldError) string {
	return strings.ToLower(fe.Field())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "workflow_state":
		return "is not a recognized workflow state"
	case "item_condition":
		return "is not a recognized item condition"
	case "role":
		return "is not a recognized role"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
