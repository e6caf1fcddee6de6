package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/shopwrench"
	"github.com/dukerupert/shopwrench/internal/urgency"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sethvargo/go-retry"
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_transitions_total",
			Help: "Committed inspection state transitions",
		},
		[]string{"from", "to"},
	)
	denialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_transition_denials_total",
			Help: "Refused transition requests by first error code",
		},
		[]string{"code"},
	)
	conflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workflow_version_conflicts_total",
			Help: "Optimistic concurrency conflicts during transition commits",
		},
	)
)

// Compile-time interface check
var _ shopwrench.WorkflowService = (*Engine)(nil)

// Config holds the engine's operational knobs.
type Config struct {
	// MaxAutoHops bounds automatic follow-on transitions per request so rule
	// cycles cannot spin.
	MaxAutoHops int

	// RetryAttempts is the number of fresh read-validate-write cycles tried
	// after a version conflict before ECONFLICT surfaces to the caller.
	RetryAttempts int

	// RetryBackoff is the pause between conflict retries.
	RetryBackoff time.Duration
}

// DefaultConfig returns the stock engine settings.
func DefaultConfig() Config {
	return Config{
		MaxAutoHops:   3,
		RetryAttempts: 2,
		RetryBackoff:  25 * time.Millisecond,
	}
}

// Engine orchestrates inspection state transitions: load, recompute urgency,
// validate, commit atomically, then apply any rule-driven follow-on
// transitions.
type Engine struct {
	store   Store
	rules   shopwrench.RuleService
	perms   PermissionChecker
	denials DenialRecorder
	eval    *Evaluator
	logger  *slog.Logger
	cfg     Config
}

// NewEngine creates a workflow engine.
func NewEngine(store Store, rules shopwrench.RuleService, perms PermissionChecker, denials DenialRecorder, logger *slog.Logger, cfg Config) *Engine {
	if cfg.MaxAutoHops <= 0 {
		cfg.MaxAutoHops = DefaultConfig().MaxAutoHops
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultConfig().RetryBackoff
	}
	return &Engine{
		store:   store,
		rules:   rules,
		perms:   perms,
		denials: denials,
		eval:    NewEvaluator(logger),
		logger:  logger,
		cfg:     cfg,
	}
}

// RequestTransition validates and applies one transition, then consults
// state_transition rules for automatic follow-on hops. A refused transition
// returns a result with Allowed=false and no error; nothing is written.
func (e *Engine) RequestTransition(ctx context.Context, inspectionID uuid.UUID, target shopwrench.WorkflowState, actor shopwrench.Actor, reason string) (*shopwrench.TransitionResult, error) {
	result, err := e.transitionWithRetry(ctx, inspectionID, target, actor, reason)
	if err != nil || !result.Validation.Allowed {
		return result, err
	}

	// Rule-driven follow-on transitions, bounded to prevent cycles. A hop
	// that fails validation stops the chain; the committed state stands.
	for hop := 0; hop < e.cfg.MaxAutoHops; hop++ {
		next, ok, err := e.followOnTarget(ctx, inspectionID)
		if err != nil {
			e.logger.Warn("auto-advance lookup failed",
				slog.String("inspection_id", inspectionID.String()),
				slog.String("error", err.Error()))
			break
		}
		if !ok {
			break
		}

		autoReason := fmt.Sprintf("automatic advance to %s", next)
		hopResult, err := e.transitionWithRetry(ctx, inspectionID, next, actor, autoReason)
		if err != nil || !hopResult.Validation.Allowed {
			if err != nil {
				e.logger.Warn("auto-advance failed",
					slog.String("inspection_id", inspectionID.String()),
					slog.String("target", string(next)),
					slog.String("error", err.Error()))
			}
			break
		}

		result.AutoAdvanced = append(result.AutoAdvanced, next)
		result.Inspection = hopResult.Inspection
		result.NewState = hopResult.NewState
		result.Urgency = hopResult.Urgency
	}

	return result, nil
}

// RecomputeUrgency refreshes the cached urgency level from current items.
func (e *Engine) RecomputeUrgency(ctx context.Context, inspectionID uuid.UUID) (*shopwrench.UrgencyReport, error) {
	var report *shopwrench.UrgencyReport
	err := retry.Do(ctx, e.backoff(), func(ctx context.Context) error {
		snap, err := e.store.LoadInspection(ctx, inspectionID)
		if err != nil {
			return err
		}

		cfg, err := e.urgencyConfig(ctx, snap.Inspection.ShopID)
		if err != nil {
			return err
		}

		r := urgency.ScoreInspection(snap.Items, cfg)
		report = &r

		if r.Level == snap.Inspection.UrgencyLevel {
			return nil
		}
		if err := e.store.SaveUrgency(ctx, inspectionID, r.Level, snap.Inspection.Version); err != nil {
			return e.retryableConflict(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// transitionWithRetry runs one full read-validate-write cycle, retrying from
// a fresh read when the commit loses a version race.
func (e *Engine) transitionWithRetry(ctx context.Context, inspectionID uuid.UUID, target shopwrench.WorkflowState, actor shopwrench.Actor, reason string) (*shopwrench.TransitionResult, error) {
	var result *shopwrench.TransitionResult
	err := retry.Do(ctx, e.backoff(), func(ctx context.Context) error {
		r, err := e.attempt(ctx, inspectionID, target, actor, reason)
		if err != nil {
			return e.retryableConflict(err)
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// attempt is a single read-validate-write cycle.
func (e *Engine) attempt(ctx context.Context, inspectionID uuid.UUID, target shopwrench.WorkflowState, actor shopwrench.Actor, reason string) (*shopwrench.TransitionResult, error) {
	snap, err := e.store.LoadInspection(ctx, inspectionID)
	if err != nil {
		return nil, err
	}
	insp := snap.Inspection

	if insp.IsRetired() {
		return nil, shopwrench.Invalid("inspection has been retired")
	}

	rules, err := e.rules.FindActiveRules(ctx, insp.ShopID)
	if err != nil {
		return nil, err
	}

	cfg := e.eval.CalculationConfig(rules, urgency.DefaultConfig())
	report := urgency.ScoreInspection(snap.Items, cfg)

	perms, err := e.perms.Effective(ctx, actor)
	if err != nil {
		return nil, err
	}

	rctx := RuleContext{
		Inspection: insp,
		Items:      snap.Items,
		Target:     target,
		Urgency:    report,
	}

	validation := Validate(ValidateInput{
		Current:      insp.WorkflowState,
		Target:       target,
		Actor:        actor,
		Permissions:  perms,
		TechnicianID: insp.TechnicianID,
		Items:        snap.Items,
		RuleErrors:   e.eval.ValidationErrors(rules, rctx),
	})

	if !validation.Allowed {
		e.recordRefusal(ctx, insp, target, actor, validation)
		return &shopwrench.TransitionResult{
			Validation: validation,
			FromState:  insp.WorkflowState,
		}, nil
	}

	// Re-sending an already-sent report is idempotent: no state change, no
	// version bump, no audit record.
	if insp.WorkflowState == shopwrench.StateSentToCustomer && target == shopwrench.StateSentToCustomer {
		return &shopwrench.TransitionResult{
			Validation: validation,
			Inspection: insp,
			FromState:  insp.WorkflowState,
			NewState:   insp.WorkflowState,
			Urgency:    &report,
		}, nil
	}

	updated, err := e.store.CommitTransition(ctx, Commit{
		InspectionID:    insp.ID,
		ExpectedVersion: insp.Version,
		Target:          target,
		ChangedBy:       actor.UserID,
		Urgency:         report.Level,
		Record: &shopwrench.StateTransitionRecord{
			ID:               uuid.New(),
			InspectionID:     insp.ID,
			FromState:        insp.WorkflowState,
			ToState:          target,
			UserID:           actor.UserID,
			Reason:           reason,
			ValidationPassed: true,
		},
	})
	if err != nil {
		return nil, err
	}

	transitionsTotal.WithLabelValues(string(insp.WorkflowState), string(target)).Inc()
	e.logger.Info("inspection transitioned",
		slog.String("inspection_id", insp.ID.String()),
		slog.String("from", string(insp.WorkflowState)),
		slog.String("to", string(target)),
		slog.String("urgency", string(report.Level)),
		slog.String("user_id", actor.UserID.String()))

	return &shopwrench.TransitionResult{
		Validation: validation,
		Inspection: updated,
		FromState:  insp.WorkflowState,
		NewState:   target,
		Urgency:    &report,
	}, nil
}

// recordRefusal counts the refusal and, for permission denials, writes a
// denial audit entry outside the (already abandoned) transaction.
func (e *Engine) recordRefusal(ctx context.Context, insp *shopwrench.Inspection, target shopwrench.WorkflowState, actor shopwrench.Actor, v shopwrench.ValidationResult) {
	if len(v.Errors) > 0 {
		denialsTotal.WithLabelValues(v.Errors[0].Code).Inc()
	}
	e.logger.Info("transition refused",
		slog.String("inspection_id", insp.ID.String()),
		slog.String("from", string(insp.WorkflowState)),
		slog.String("to", string(target)),
		slog.Any("reasons", v.Messages()))

	if !v.HasCode(shopwrench.ValidationPermissionDenied) || e.denials == nil {
		return
	}
	missing := ""
	for _, ve := range v.Errors {
		if ve.Code == shopwrench.ValidationPermissionDenied {
			missing = ve.Permission
			break
		}
	}
	e.denials.RecordDenial(ctx, Denial{
		InspectionID:      insp.ID,
		ShopID:            insp.ShopID,
		UserID:            actor.UserID,
		FromState:         insp.WorkflowState,
		ToState:           target,
		MissingPermission: missing,
		Reasons:           v.Messages(),
	})
}

func (e *Engine) urgencyConfig(ctx context.Context, shopID uuid.UUID) (urgency.Config, error) {
	rules, err := e.rules.FindActiveRules(ctx, shopID)
	if err != nil {
		return urgency.Config{}, err
	}
	return e.eval.CalculationConfig(rules, urgency.DefaultConfig()), nil
}

// followOnTarget consults the inspection's shop's rules for an automatic next
// state, never the acting user's shop (admins can act across shops).
func (e *Engine) followOnTarget(ctx context.Context, inspectionID uuid.UUID) (shopwrench.WorkflowState, bool, error) {
	snap, err := e.store.LoadInspection(ctx, inspectionID)
	if err != nil {
		return "", false, err
	}
	rules, err := e.rules.FindActiveRules(ctx, snap.Inspection.ShopID)
	if err != nil {
		return "", false, err
	}
	cfg := e.eval.CalculationConfig(rules, urgency.DefaultConfig())
	next, ok := e.eval.FollowOn(rules, RuleContext{
		Inspection: snap.Inspection,
		Items:      snap.Items,
		Urgency:    urgency.ScoreInspection(snap.Items, cfg),
	})
	if ok && next == snap.Inspection.WorkflowState {
		// A rule advancing to the state it matched on would loop forever.
		return "", false, nil
	}
	return next, ok, nil
}

func (e *Engine) backoff() retry.Backoff {
	return retry.WithMaxRetries(uint64(e.cfg.RetryAttempts), retry.NewConstant(e.cfg.RetryBackoff))
}

// retryableConflict marks ECONFLICT errors retryable so the cycle restarts
// from a fresh read; anything else aborts immediately.
func (e *Engine) retryableConflict(err error) error {
	if shopwrench.IsErrorCode(err, shopwrench.ECONFLICT) {
		conflictsTotal.Inc()
		return retry.RetryableError(err)
	}
	return err
}
