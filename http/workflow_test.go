package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shopwrench"
	"github.com/dukerupert/shopwrench/internal/audit"
	"github.com/dukerupert/shopwrench/internal/authz"
	"github.com/dukerupert/shopwrench/mock"
)

const testToken = "test-session-token"

// fakeDenialReader serves canned denial log entries.
type fakeDenialReader struct {
	entries []audit.DenialEntry
}

func (f *fakeDenialReader) FindDenialsByInspection(ctx context.Context, inspectionID uuid.UUID, limit, offset int) ([]audit.DenialEntry, error) {
	return f.entries, nil
}

func (f *fakeDenialReader) FindDenialsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]audit.DenialEntry, error) {
	return f.entries, nil
}

type testServer struct {
	server     *Server
	user       *shopwrench.User
	workflow   *mock.WorkflowService
	transition *mock.TransitionRecordService
	inspection *mock.InspectionService
	items      *mock.ItemService
	perms      *mock.PermissionService
	denials    *fakeDenialReader
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	user := &shopwrench.User{
		ID:     uuid.New(),
		ShopID: uuid.New(),
		Email:  "tech@example.com",
		Role:   shopwrench.RoleManager,
		Status: shopwrench.UserStatusActive,
	}

	sessions := &mock.SessionService{
		FindSessionByTokenFn: func(ctx context.Context, token string) (*shopwrench.Session, error) {
			if token != testToken {
				return nil, shopwrench.Unauthorized("Session not found or expired")
			}
			return &shopwrench.Session{
				ID:        uuid.New(),
				UserID:    user.ID,
				Token:     token,
				ExpiresAt: time.Now().Add(time.Hour),
				User:      user,
			}, nil
		},
	}

	ts := &testServer{
		user:       user,
		workflow:   &mock.WorkflowService{},
		transition: &mock.TransitionRecordService{},
		inspection: &mock.InspectionService{},
		items:      &mock.ItemService{},
		perms:      &mock.PermissionService{},
		denials:    &fakeDenialReader{},
	}

	ts.server = NewServer(Config{
		Addr:              "127.0.0.1:0",
		Logger:            logger,
		ShopService:       &mock.ShopService{},
		UserService:       &mock.UserService{},
		CustomerService:   &mock.CustomerService{},
		VehicleService:    &mock.VehicleService{},
		InspectionService: ts.inspection,
		ItemService:       ts.items,
		RuleService:       &mock.RuleService{},
		PermissionService: ts.perms,
		TransitionService: ts.transition,
		SessionService:    sessions,
		WorkflowService:   ts.workflow,
		Authz:             authz.NewChecker(ts.perms, logger, time.Minute),
		Denials:           ts.denials,
	})

	return ts
}

func (ts *testServer) do(method, path string, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	ts.server.Echo().ServeHTTP(rec, req)
	return rec
}

func TestRequestTransition(t *testing.T) {
	t.Run("applied", func(t *testing.T) {
		ts := newTestServer(t)
		inspectionID := uuid.New()

		ts.workflow.RequestTransitionFn = func(ctx context.Context, id uuid.UUID, target shopwrench.WorkflowState, actor shopwrench.Actor, reason string) (*shopwrench.TransitionResult, error) {
			assert.Equal(t, inspectionID, id)
			assert.Equal(t, shopwrench.StateInProgress, target)
			assert.Equal(t, ts.user.ID, actor.UserID)
			assert.Equal(t, "starting work", reason)
			return &shopwrench.TransitionResult{
				Validation: shopwrench.ValidationResult{Allowed: true},
				FromState:  shopwrench.StateDraft,
				NewState:   shopwrench.StateInProgress,
			}, nil
		}

		rec := ts.do(http.MethodPost, "/api/inspections/"+inspectionID.String()+"/transitions",
			`{"target":"in_progress","reason":"starting work"}`, true)

		require.Equal(t, http.StatusOK, rec.Code)

		var result shopwrench.TransitionResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.True(t, result.Validation.Allowed)
		assert.Equal(t, shopwrench.StateInProgress, result.NewState)
	})

	t.Run("refused", func(t *testing.T) {
		ts := newTestServer(t)
		inspectionID := uuid.New()

		ts.workflow.RequestTransitionFn = func(ctx context.Context, id uuid.UUID, target shopwrench.WorkflowState, actor shopwrench.Actor, reason string) (*shopwrench.TransitionResult, error) {
			return &shopwrench.TransitionResult{
				Validation: shopwrench.ValidationResult{
					Allowed: false,
					Errors: []shopwrench.ValidationError{
						{Code: shopwrench.ValidationIllegalTransition, Message: "cannot transition from draft to approved"},
					},
				},
			}, nil
		}

		rec := ts.do(http.MethodPost, "/api/inspections/"+inspectionID.String()+"/transitions",
			`{"target":"approved"}`, true)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var result shopwrench.TransitionResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.False(t, result.Validation.Allowed)
		require.Len(t, result.Validation.Errors, 1)
		assert.Equal(t, shopwrench.ValidationIllegalTransition, result.Validation.Errors[0].Code)
	})

	t.Run("conflict surfaces as 409", func(t *testing.T) {
		ts := newTestServer(t)
		inspectionID := uuid.New()

		ts.workflow.RequestTransitionFn = func(ctx context.Context, id uuid.UUID, target shopwrench.WorkflowState, actor shopwrench.Actor, reason string) (*shopwrench.TransitionResult, error) {
			return nil, shopwrench.Conflict("inspection was modified concurrently")
		}

		rec := ts.do(http.MethodPost, "/api/inspections/"+inspectionID.String()+"/transitions",
			`{"target":"in_progress"}`, true)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid target state rejected before the engine", func(t *testing.T) {
		ts := newTestServer(t)
		called := false
		ts.workflow.RequestTransitionFn = func(ctx context.Context, id uuid.UUID, target shopwrench.WorkflowState, actor shopwrench.Actor, reason string) (*shopwrench.TransitionResult, error) {
			called = true
			return nil, nil
		}

		rec := ts.do(http.MethodPost, "/api/inspections/"+uuid.NewString()+"/transitions",
			`{"target":"warp_drive"}`, true)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, called)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(http.MethodPost, "/api/inspections/"+uuid.NewString()+"/transitions",
			`{"target":"in_progress"}`, false)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestListTransitions(t *testing.T) {
	ts := newTestServer(t)
	inspectionID := uuid.New()

	ts.inspection.FindInspectionByIDFn = func(ctx context.Context, id uuid.UUID) (*shopwrench.Inspection, error) {
		return &shopwrench.Inspection{ID: id, WorkflowState: shopwrench.StateInProgress}, nil
	}
	ts.transition.FindTransitionsByInspectionFn = func(ctx context.Context, id uuid.UUID) ([]*shopwrench.StateTransitionRecord, error) {
		return []*shopwrench.StateTransitionRecord{
			{
				ID:               uuid.New(),
				InspectionID:     id,
				FromState:        shopwrench.StateDraft,
				ToState:          shopwrench.StateInProgress,
				ValidationPassed: true,
				CreatedAt:        time.Now(),
			},
		}, nil
	}

	rec := ts.do(http.MethodGet, "/api/inspections/"+inspectionID.String()+"/transitions", "", true)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Transitions []*shopwrench.StateTransitionRecord `json:"transitions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Transitions, 1)
	assert.Equal(t, shopwrench.StateDraft, resp.Transitions[0].FromState)
}

func TestListTransitionsUnknownInspection(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/inspections/"+uuid.NewString()+"/transitions", "", true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecomputeUrgency(t *testing.T) {
	ts := newTestServer(t)
	inspectionID := uuid.New()

	ts.workflow.RecomputeUrgencyFn = func(ctx context.Context, id uuid.UUID) (*shopwrench.UrgencyReport, error) {
		return &shopwrench.UrgencyReport{
			Score:   95,
			Level:   shopwrench.UrgencyCritical,
			Factors: []string{"1 item(s) requiring immediate attention"},
		}, nil
	}

	rec := ts.do(http.MethodPost, "/api/inspections/"+inspectionID.String()+"/urgency", "", true)

	require.Equal(t, http.StatusOK, rec.Code)

	var report shopwrench.UrgencyReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, shopwrench.UrgencyCritical, report.Level)
	assert.Equal(t, 95, report.Score)
}

func TestCreateUserPermissionRequiresManage(t *testing.T) {
	ts := newTestServer(t)
	targetID := uuid.New()

	// Default mock resolves an empty permission set, so manage is missing
	rec := ts.do(http.MethodPost, "/api/users/"+targetID.String()+"/permissions",
		`{"permission":"inspections.approve","effect":"grant"}`, true)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Grant manage and try again
	ts2 := newTestServer(t)
	ts2.perms.ResolvePermissionsFn = func(ctx context.Context, userID uuid.UUID, role shopwrench.Role) (shopwrench.PermissionSet, error) {
		set := shopwrench.PermissionSet{}
		set.Add(shopwrench.PermPermissionsManage)
		return set, nil
	}

	rec = ts2.do(http.MethodPost, "/api/users/"+targetID.String()+"/permissions",
		`{"permission":"inspections.approve","effect":"grant"}`, true)

	require.Equal(t, http.StatusCreated, rec.Code)

	var override shopwrench.UserPermission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &override))
	assert.Equal(t, targetID, override.UserID)
	assert.Equal(t, shopwrench.OverrideGrant, override.Effect)
}

func TestClearPermissionCache(t *testing.T) {
	t.Run("requires manage", func(t *testing.T) {
		ts := newTestServer(t)

		rec := ts.do(http.MethodPost, "/api/permissions/cache/clear", "", true)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("flushes cached sets", func(t *testing.T) {
		ts := newTestServer(t)
		ts.perms.ResolvePermissionsFn = func(ctx context.Context, userID uuid.UUID, role shopwrench.Role) (shopwrench.PermissionSet, error) {
			set := shopwrench.PermissionSet{}
			set.Add(shopwrench.PermPermissionsManage)
			return set, nil
		}

		rec := ts.do(http.MethodPost, "/api/permissions/cache/clear", "", true)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Cleared int `json:"cleared"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		// The gate check itself cached the caller's set
		assert.GreaterOrEqual(t, resp.Cleared, 1)
	})
}
