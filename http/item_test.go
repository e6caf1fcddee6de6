package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shopwrench"
)

func TestCreateItem(t *testing.T) {
	t.Run("recomputes urgency for the inspection", func(t *testing.T) {
		ts := newTestServer(t)
		inspectionID := uuid.New()

		var recomputed []uuid.UUID
		ts.workflow.RecomputeUrgencyFn = func(ctx context.Context, id uuid.UUID) (*shopwrench.UrgencyReport, error) {
			recomputed = append(recomputed, id)
			return &shopwrench.UrgencyReport{Level: shopwrench.UrgencyCritical, Score: 95}, nil
		}

		rec := ts.do(http.MethodPost, "/api/inspections/"+inspectionID.String()+"/items",
			`{"category":"brakes","component":"front pads","condition":"needs_immediate","priority":9}`, true)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, []uuid.UUID{inspectionID}, recomputed, "creating an item must refresh the cached urgency")
	})

	t.Run("priority above ten is rejected", func(t *testing.T) {
		ts := newTestServer(t)
		created := false
		ts.items.CreateItemFn = func(ctx context.Context, item *shopwrench.InspectionItem) error {
			created = true
			return nil
		}

		rec := ts.do(http.MethodPost, "/api/inspections/"+uuid.NewString()+"/items",
			`{"category":"brakes","component":"front pads","priority":11}`, true)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, created)
	})
}

func TestUpdateItem(t *testing.T) {
	newUpdateFixture := func(ts *testServer, inspectionID uuid.UUID) *[]uuid.UUID {
		ts.items.UpdateItemFn = func(ctx context.Context, id uuid.UUID, upd shopwrench.ItemUpdate) (*shopwrench.InspectionItem, error) {
			return &shopwrench.InspectionItem{ID: id, InspectionID: inspectionID}, nil
		}
		recomputed := &[]uuid.UUID{}
		ts.workflow.RecomputeUrgencyFn = func(ctx context.Context, id uuid.UUID) (*shopwrench.UrgencyReport, error) {
			*recomputed = append(*recomputed, id)
			return &shopwrench.UrgencyReport{Level: shopwrench.UrgencyNormal, Score: 30}, nil
		}
		return recomputed
	}

	t.Run("priority-only edit recomputes urgency", func(t *testing.T) {
		ts := newTestServer(t)
		inspectionID := uuid.New()
		recomputed := newUpdateFixture(ts, inspectionID)

		rec := ts.do(http.MethodPut, "/api/items/"+uuid.NewString(), `{"priority":8}`, true)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []uuid.UUID{inspectionID}, *recomputed)
	})

	t.Run("cost-only edit recomputes urgency", func(t *testing.T) {
		ts := newTestServer(t)
		inspectionID := uuid.New()
		recomputed := newUpdateFixture(ts, inspectionID)

		rec := ts.do(http.MethodPut, "/api/items/"+uuid.NewString(), `{"estimatedCost":1450.50}`, true)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []uuid.UUID{inspectionID}, *recomputed)
	})
}
