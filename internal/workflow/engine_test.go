package workflow

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store with controllable version conflicts.
type fakeStore struct {
	mu      sync.Mutex
	insp    *shopwrench.Inspection
	items   []*shopwrench.InspectionItem
	records []*shopwrench.StateTransitionRecord

	// conflicts makes the next n CommitTransition/SaveUrgency calls lose the
	// version race, as if another writer got there first.
	conflicts int
}

func (s *fakeStore) LoadInspection(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insp == nil || s.insp.ID != id {
		return nil, shopwrench.NotFound("Inspection not found")
	}
	cp := *s.insp
	return &Snapshot{Inspection: &cp, Items: s.items}, nil
}

func (s *fakeStore) CommitTransition(ctx context.Context, c Commit) (*shopwrench.Inspection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflicts > 0 {
		s.conflicts--
		s.insp.Version++ // the competing writer's bump
		return nil, shopwrench.Conflict("inspection was modified concurrently")
	}
	if c.ExpectedVersion != s.insp.Version {
		return nil, shopwrench.Conflict("inspection was modified concurrently")
	}
	s.insp.PreviousState = s.insp.WorkflowState
	s.insp.WorkflowState = c.Target
	s.insp.StateChangedBy = c.ChangedBy
	s.insp.StateChangedAt = time.Now()
	s.insp.UrgencyLevel = c.Urgency
	s.insp.Version++
	s.records = append(s.records, c.Record)
	cp := *s.insp
	return &cp, nil
}

func (s *fakeStore) SaveUrgency(ctx context.Context, id uuid.UUID, level shopwrench.UrgencyLevel, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflicts > 0 {
		s.conflicts--
		s.insp.Version++
		return shopwrench.Conflict("inspection was modified concurrently")
	}
	if expectedVersion != s.insp.Version {
		return shopwrench.Conflict("inspection was modified concurrently")
	}
	s.insp.UrgencyLevel = level
	s.insp.Version++
	return nil
}

type fakeRules struct {
	rules []*shopwrench.BusinessRule

	// scope, when set, serves the rules only for that shop.
	scope uuid.UUID
}

func (f *fakeRules) FindActiveRules(ctx context.Context, shopID uuid.UUID) ([]*shopwrench.BusinessRule, error) {
	if f.scope != uuid.Nil && shopID != f.scope {
		return nil, nil
	}
	return f.rules, nil
}
func (f *fakeRules) CreateRule(ctx context.Context, rule *shopwrench.BusinessRule) error { return nil }
func (f *fakeRules) UpdateRule(ctx context.Context, id uuid.UUID, upd shopwrench.RuleUpdate) (*shopwrench.BusinessRule, error) {
	return nil, shopwrench.NotFound("Rule not found")
}
func (f *fakeRules) DeleteRule(ctx context.Context, id uuid.UUID) error { return nil }

type fakePerms struct{ set shopwrench.PermissionSet }

func (f *fakePerms) Effective(ctx context.Context, actor shopwrench.Actor) (shopwrench.PermissionSet, error) {
	return f.set, nil
}

type fakeDenials struct {
	mu      sync.Mutex
	denials []Denial
}

func (f *fakeDenials) RecordDenial(ctx context.Context, d Denial) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.denials = append(f.denials, d)
}

type engineFixture struct {
	engine  *Engine
	store   *fakeStore
	rules   *fakeRules
	perms   *fakePerms
	denials *fakeDenials
	actor   shopwrench.Actor
	insp    *shopwrench.Inspection
}

func newFixture(t *testing.T, state shopwrench.WorkflowState, perms ...shopwrench.Permission) *engineFixture {
	t.Helper()
	actor := shopwrench.Actor{UserID: uuid.New(), Role: shopwrench.RoleManager, ShopID: uuid.New()}
	insp := &shopwrench.Inspection{
		ID:            uuid.New(),
		ShopID:        actor.ShopID,
		TechnicianID:  uuid.New(),
		WorkflowState: state,
		UrgencyLevel:  shopwrench.UrgencyLow,
		Version:       1,
	}

	f := &engineFixture{
		store:   &fakeStore{insp: insp},
		rules:   &fakeRules{},
		perms:   &fakePerms{set: permSet(perms...)},
		denials: &fakeDenials{},
		actor:   actor,
		insp:    insp,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.engine = NewEngine(f.store, f.rules, f.perms, f.denials, logger, Config{
		MaxAutoHops:   3,
		RetryAttempts: 2,
		RetryBackoff:  time.Millisecond,
	})
	return f
}

func TestEngineRequestTransition(t *testing.T) {
	ctx := context.Background()

	t.Run("successful transition commits state, urgency, and one audit record", func(t *testing.T) {
		f := newFixture(t, shopwrench.StateDraft, shopwrench.PermInspectionsUpdate)
		f.store.items = []*shopwrench.InspectionItem{
			{Component: "battery", Category: shopwrench.CategoryBattery, Condition: shopwrench.ConditionNeedsImmediate, Priority: 1},
		}

		res, err := f.engine.RequestTransition(ctx, f.insp.ID, shopwrench.StateInProgress, f.actor, "starting work")
		require.NoError(t, err)
		require.True(t, res.Validation.Allowed)

		assert.Equal(t, shopwrench.StateInProgress, f.store.insp.WorkflowState)
		assert.Equal(t, shopwrench.StateDraft, f.store.insp.PreviousState)
		assert.Equal(t, shopwrench.UrgencyCritical, f.store.insp.UrgencyLevel)
		assert.Equal(t, int64(2), f.store.insp.Version)
		assert.Equal(t, f.actor.UserID, f.store.insp.StateChangedBy)

		require.Len(t, f.store.records, 1)
		rec := f.store.records[0]
		assert.Equal(t, shopwrench.StateDraft, rec.FromState)
		assert.Equal(t, shopwrench.StateInProgress, rec.ToState)
		assert.True(t, rec.ValidationPassed)
		assert.Equal(t, "starting work", rec.Reason)
	})

	t.Run("illegal transition is refused with no audit record", func(t *testing.T) {
		f := newFixture(t, shopwrench.StateDraft, shopwrench.PermInspectionsUpdate, shopwrench.PermInspectionsApprove)

		res, err := f.engine.RequestTransition(ctx, f.insp.ID, shopwrench.StateApproved, f.actor, "")
		require.NoError(t, err)

		assert.False(t, res.Validation.Allowed)
		assert.True(t, res.Validation.HasCode(shopwrench.ValidationIllegalTransition))
		assert.Empty(t, f.store.records)
		assert.Equal(t, int64(1), f.store.insp.Version, "refusal must not touch the row")
		assert.Equal(t, shopwrench.StateDraft, f.store.insp.WorkflowState)
	})

	t.Run("permission denial records a denial entry, not a transition", func(t *testing.T) {
		f := newFixture(t, shopwrench.StatePendingReview, shopwrench.PermInspectionsUpdate)

		res, err := f.engine.RequestTransition(ctx, f.insp.ID, shopwrench.StateApproved, f.actor, "")
		require.NoError(t, err)

		assert.False(t, res.Validation.Allowed)
		assert.Empty(t, f.store.records)
		require.Len(t, f.denials.denials, 1)
		assert.Equal(t, "inspections.approve", f.denials.denials[0].MissingPermission)
	})

	t.Run("safety block refuses approval without override", func(t *testing.T) {
		f := newFixture(t, shopwrench.StatePendingReview, shopwrench.PermInspectionsApprove)
		f.store.items = []*shopwrench.InspectionItem{
			{Component: "front brakes", Condition: shopwrench.ConditionNeedsImmediate},
		}

		res, err := f.engine.RequestTransition(ctx, f.insp.ID, shopwrench.StateApproved, f.actor, "")
		require.NoError(t, err)
		assert.True(t, res.Validation.HasCode(shopwrench.ValidationSafetyBlocked))
		assert.Empty(t, f.store.records)
	})

	t.Run("version conflict retries from a fresh read and succeeds", func(t *testing.T) {
		f := newFixture(t, shopwrench.StateDraft, shopwrench.PermInspectionsUpdate)
		f.store.conflicts = 1

		res, err := f.engine.RequestTransition(ctx, f.insp.ID, shopwrench.StateInProgress, f.actor, "")
		require.NoError(t, err)
		assert.True(t, res.Validation.Allowed)
		assert.Len(t, f.store.records, 1, "exactly one transition must commit")
	})

	t.Run("persistent conflicts surface ECONFLICT", func(t *testing.T) {
		f := newFixture(t, shopwrench.StateDraft, shopwrench.PermInspectionsUpdate)
		f.store.conflicts = 100

		_, err := f.engine.RequestTransition(ctx, f.insp.ID, shopwrench.StateInProgress, f.actor, "")
		require.Error(t, err)
		assert.Equal(t, shopwrench.ECONFLICT, shopwrench.ErrorCode(err))
		assert.Empty(t, f.store.records)
	})

	t.Run("state_transition rule auto-advances after commit", func(t *testing.T) {
		f := newFixture(t, shopwrench.StateDraft, shopwrench.PermInspectionsUpdate)
		f.store.items = checkedItems(2)
		f.rules.rules = []*shopwrench.BusinessRule{{
			Name: "auto submit",
			Type: shopwrench.RuleTypeStateTransition,
			Conditions: []shopwrench.RuleCondition{
				{Kind: shopwrench.CondStateIs, State: shopwrench.StateInProgress},
				{Kind: shopwrench.CondAllItemsChecked},
			},
			Action: shopwrench.RuleAction{Kind: shopwrench.ActionAdvanceTo, State: shopwrench.StatePendingReview},
		}}

		res, err := f.engine.RequestTransition(ctx, f.insp.ID, shopwrench.StateInProgress, f.actor, "")
		require.NoError(t, err)

		assert.Equal(t, []shopwrench.WorkflowState{shopwrench.StatePendingReview}, res.AutoAdvanced)
		assert.Equal(t, shopwrench.StatePendingReview, f.store.insp.WorkflowState)
		assert.Len(t, f.store.records, 2, "each hop gets its own audit record")
	})

	t.Run("auto-advance uses the inspection's shop's rules, not the actor's", func(t *testing.T) {
		f := newFixture(t, shopwrench.StateDraft, shopwrench.PermInspectionsUpdate)
		f.store.items = checkedItems(2)
		f.actor.ShopID = uuid.New() // admin acting across shops
		f.rules.scope = f.insp.ShopID
		f.rules.rules = []*shopwrench.BusinessRule{{
			Name: "auto submit",
			Type: shopwrench.RuleTypeStateTransition,
			Conditions: []shopwrench.RuleCondition{
				{Kind: shopwrench.CondStateIs, State: shopwrench.StateInProgress},
				{Kind: shopwrench.CondAllItemsChecked},
			},
			Action: shopwrench.RuleAction{Kind: shopwrench.ActionAdvanceTo, State: shopwrench.StatePendingReview},
		}}

		res, err := f.engine.RequestTransition(ctx, f.insp.ID, shopwrench.StateInProgress, f.actor, "")
		require.NoError(t, err)
		assert.Equal(t, []shopwrench.WorkflowState{shopwrench.StatePendingReview}, res.AutoAdvanced)
		assert.Equal(t, shopwrench.StatePendingReview, f.store.insp.WorkflowState)
	})

	t.Run("auto-advance hops are bounded", func(t *testing.T) {
		f := newFixture(t, shopwrench.StateDraft,
			shopwrench.PermInspectionsUpdate, shopwrench.PermInspectionsApprove)
		f.store.items = checkedItems(1)
		f.rules.rules = []*shopwrench.BusinessRule{
			{
				Name:       "submit",
				Type:       shopwrench.RuleTypeStateTransition,
				Conditions: []shopwrench.RuleCondition{{Kind: shopwrench.CondStateIs, State: shopwrench.StateInProgress}},
				Action:     shopwrench.RuleAction{Kind: shopwrench.ActionAdvanceTo, State: shopwrench.StatePendingReview},
			},
			{
				Name:       "approve",
				Type:       shopwrench.RuleTypeStateTransition,
				Conditions: []shopwrench.RuleCondition{{Kind: shopwrench.CondStateIs, State: shopwrench.StatePendingReview}},
				Action:     shopwrench.RuleAction{Kind: shopwrench.ActionAdvanceTo, State: shopwrench.StateApproved},
			},
		}
		f.engine.cfg.MaxAutoHops = 1

		res, err := f.engine.RequestTransition(ctx, f.insp.ID, shopwrench.StateInProgress, f.actor, "")
		require.NoError(t, err)
		assert.Equal(t, []shopwrench.WorkflowState{shopwrench.StatePendingReview}, res.AutoAdvanced)
		assert.Equal(t, shopwrench.StatePendingReview, f.store.insp.WorkflowState)
	})

	t.Run("re-send to customer is idempotent", func(t *testing.T) {
		f := newFixture(t, shopwrench.StateSentToCustomer, shopwrench.PermInspectionsSend)

		res, err := f.engine.RequestTransition(ctx, f.insp.ID, shopwrench.StateSentToCustomer, f.actor, "")
		require.NoError(t, err)
		assert.True(t, res.Validation.Allowed)
		assert.Equal(t, shopwrench.StateSentToCustomer, res.NewState)
		assert.Empty(t, f.store.records)
		assert.Equal(t, int64(1), f.store.insp.Version)
	})

	t.Run("retired inspection refuses transitions", func(t *testing.T) {
		f := newFixture(t, shopwrench.StateDraft, shopwrench.PermInspectionsUpdate)
		now := time.Now()
		f.store.insp.RetiredAt = &now

		_, err := f.engine.RequestTransition(ctx, f.insp.ID, shopwrench.StateInProgress, f.actor, "")
		require.Error(t, err)
		assert.Equal(t, shopwrench.EINVALID, shopwrench.ErrorCode(err))
	})

	t.Run("unknown inspection returns not found", func(t *testing.T) {
		f := newFixture(t, shopwrench.StateDraft, shopwrench.PermInspectionsUpdate)

		_, err := f.engine.RequestTransition(ctx, uuid.New(), shopwrench.StateInProgress, f.actor, "")
		require.Error(t, err)
		assert.Equal(t, shopwrench.ENOTFOUND, shopwrench.ErrorCode(err))
	})
}

func TestEngineRecomputeUrgency(t *testing.T) {
	ctx := context.Background()

	t.Run("persists a changed level and bumps the version", func(t *testing.T) {
		f := newFixture(t, shopwrench.StateInProgress)
		f.store.items = []*shopwrench.InspectionItem{
			{Component: "battery", Condition: shopwrench.ConditionNeedsImmediate, Priority: 1},
		}

		report, err := f.engine.RecomputeUrgency(ctx, f.insp.ID)
		require.NoError(t, err)
		assert.Equal(t, shopwrench.UrgencyCritical, report.Level)
		assert.Equal(t, 95, report.Score)
		assert.Equal(t, shopwrench.UrgencyCritical, f.store.insp.UrgencyLevel)
		assert.Equal(t, int64(2), f.store.insp.Version)
	})

	t.Run("unchanged level writes nothing", func(t *testing.T) {
		f := newFixture(t, shopwrench.StateInProgress)
		f.store.items = checkedItems(1)

		report, err := f.engine.RecomputeUrgency(ctx, f.insp.ID)
		require.NoError(t, err)
		assert.Equal(t, shopwrench.UrgencyLow, report.Level)
		assert.Equal(t, int64(1), f.store.insp.Version)
	})

	t.Run("calculation rule shifts the computed level", func(t *testing.T) {
		f := newFixture(t, shopwrench.StateInProgress)
		f.store.items = []*shopwrench.InspectionItem{
			{Component: "serpentine belt", Category: shopwrench.CategoryBeltsHoses, Condition: shopwrench.ConditionFair, Priority: 1},
		}
		f.rules.rules = []*shopwrench.BusinessRule{{
			Name:   "paranoid shop",
			Type:   shopwrench.RuleTypeCalculation,
			Action: shopwrench.RuleAction{Kind: shopwrench.ActionSetThresholds, HighAt: 40},
		}}

		report, err := f.engine.RecomputeUrgency(ctx, f.insp.ID)
		require.NoError(t, err)
		// a single fair belt scores 40: low under the defaults, but the
		// lowered cutoff rates it high, which lifts the whole inspection.
		assert.Equal(t, shopwrench.UrgencyNormal, report.Level)
		assert.Equal(t, shopwrench.UrgencyNormal, f.store.insp.UrgencyLevel)
	})
}
