package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/manufacturing/internal/domain/inventory"
	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/interfaces/http/dto"
	"github.com/erp/manufacturing/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newHandlerContext(method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_HandleDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.NewNotFoundError("ManufacturingOrder", "MO-0001"), http.StatusNotFound, shared.CodeNotFound},
		{"invalid transition", shared.NewInvalidTransitionError("WorkOrder", "Pending", "Completed"), http.StatusConflict, shared.CodeInvalidTransition},
		{"already done", shared.ErrAlreadyDone, http.StatusConflict, shared.CodeAlreadyDone},
		{"optimistic lock", shared.ErrOptimisticLock, http.StatusConflict, shared.CodeOptimisticLockFailed},
		{"bom in use", shared.NewDomainError(inventory.CodeBOMInUse, "BOM is used by orders"), http.StatusConflict, inventory.CodeBOMInUse},
		{"component in use", shared.NewDomainError(inventory.CodeComponentInUse, "Component is used by BOMs"), http.StatusConflict, inventory.CodeComponentInUse},
		{"invalid status value", shared.NewInvalidStatusValueError("ManufacturingOrder", "Shipped"), http.StatusBadRequest, shared.CodeInvalidStatusValue},
		{"invalid input", shared.ErrInvalidInput, http.StatusBadRequest, shared.CodeInvalidInput},
		{"wrapped domain error", fmt.Errorf("load order: %w", shared.NewNotFoundError("ManufacturingOrder", "MO-0002")), http.StatusNotFound, shared.CodeNotFound},
		{"unknown domain code", shared.NewDomainError("SOMETHING_ODD", "odd"), http.StatusInternalServerError, "SOMETHING_ODD"},
		{"plain error", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newHandlerContext(http.MethodGet, "/")
			c.Set(middleware.RequestIDKey, "req-1")

			h := &BaseHandler{}
			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleDomainError_InsufficientStock(t *testing.T) {
	c, w := newHandlerContext(http.MethodPost, "/")
	componentID := uuid.New()

	h := &BaseHandler{}
	h.HandleDomainError(c, fmt.Errorf("complete order: %w", &shared.InsufficientStockError{
		ComponentID:   componentID.String(),
		ComponentName: "legs",
		Required:      40,
		Available:     12,
	}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, shared.CodeInsufficientStock, resp.Error.Code)
	assert.Equal(t, componentID.String(), resp.Error.Details["component_id"])
	assert.Equal(t, "legs", resp.Error.Details["component_name"])
	assert.EqualValues(t, 40, resp.Error.Details["required"])
	assert.EqualValues(t, 12, resp.Error.Details["available"])
}

func TestBaseHandler_HandleDomainError_Nil(t *testing.T) {
	c, w := newHandlerContext(http.MethodGet, "/")

	h := &BaseHandler{}
	h.HandleDomainError(c, nil)

	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandler_SuccessWithMeta(t *testing.T) {
	t.Run("defaults unset paging", func(t *testing.T) {
		c, w := newHandlerContext(http.MethodGet, "/")

		h := &BaseHandler{}
		h.SuccessWithMeta(c, []string{"a"}, 45, 0, 0)

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 1, resp.Meta.Page)
		assert.Equal(t, 20, resp.Meta.PageSize)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("keeps explicit paging", func(t *testing.T) {
		c, w := newHandlerContext(http.MethodGet, "/")

		h := &BaseHandler{}
		h.SuccessWithMeta(c, []string{}, 10, 2, 5)

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 5, resp.Meta.PageSize)
		assert.Equal(t, 2, resp.Meta.TotalPages)
	})
}

func TestBaseHandler_ParseUUIDParam(t *testing.T) {
	h := &BaseHandler{}

	t.Run("valid", func(t *testing.T) {
		id := uuid.New()
		c, w := newHandlerContext(http.MethodGet, "/")
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		got, ok := h.parseUUIDParam(c, "id")
		assert.True(t, ok)
		assert.Equal(t, id, got)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("malformed", func(t *testing.T) {
		c, w := newHandlerContext(http.MethodGet, "/")
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

		_, ok := h.parseUUIDParam(c, "id")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeBadRequest, decodeResponse(t, w).Error.Code)
	})
}

func TestQueryInt(t *testing.T) {
	c, _ := newHandlerContext(http.MethodGet, "/?page=3&size=abc")

	page, err := queryInt(c, "page", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, page)

	missing, err := queryInt(c, "page_size", 20)
	require.NoError(t, err)
	assert.Equal(t, 20, missing)

	_, err = queryInt(c, "size", 20)
	assert.Error(t, err)
}
