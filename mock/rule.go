package mock

import (
	"context"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ shopwrench.RuleService = (*RuleService)(nil)

// RuleService is a mock implementation of shopwrench.RuleService.
type RuleService struct {
	FindActiveRulesFn func(ctx context.Context, shopID uuid.UUID) ([]*shopwrench.BusinessRule, error)
	CreateRuleFn      func(ctx context.Context, rule *shopwrench.BusinessRule) error
	UpdateRuleFn      func(ctx context.Context, id uuid.UUID, upd shopwrench.RuleUpdate) (*shopwrench.BusinessRule, error)
	DeleteRuleFn      func(ctx context.Context, id uuid.UUID) error
}

func (s *RuleService) FindActiveRules(ctx context.Context, shopID uuid.UUID) ([]*shopwrench.BusinessRule, error) {
	if s.FindActiveRulesFn != nil {
		return s.FindActiveRulesFn(ctx, shopID)
	}
	return []*shopwrench.BusinessRule{}, nil
}

func (s *RuleService) CreateRule(ctx context.Context, rule *shopwrench.BusinessRule) error {
	if s.CreateRuleFn != nil {
		return s.CreateRuleFn(ctx, rule)
	}
	rule.ID = uuid.New()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = time.Now()
	return nil
}

func (s *RuleService) UpdateRule(ctx context.Context, id uuid.UUID, upd shopwrench.RuleUpdate) (*shopwrench.BusinessRule, error) {
	if s.UpdateRuleFn != nil {
		return s.UpdateRuleFn(ctx, id, upd)
	}
	return nil, shopwrench.NotFound("Rule not found")
}

func (s *RuleService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if s.DeleteRuleFn != nil {
		return s.DeleteRuleFn(ctx, id)
	}
	return nil
}
