package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flexprice/orderlimit/internal/domain/order"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/rest/middleware"
	"github.com/flexprice/orderlimit/internal/service"
	"github.com/flexprice/orderlimit/internal/types"
	"github.com/flexprice/orderlimit/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLimitService returns err from CheckOrder and records the order it got
type fakeLimitService struct {
	service.LimitService
	err   error
	order *order.Order
}

func (f *fakeLimitService) CheckOrder(_ context.Context, o *order.Order) error {
	f.order = o
	return f.err
}

func newTestRouter(svc service.LimitService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validator.NewValidator()

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware, middleware.ErrorHandler())
	r.POST("/v1/limits/check", NewLimitHandler(svc, logger.NewNoopLogger()).CheckOrder)
	return r
}

func doCheck(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/limits/check", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

const validBody = `{
	"order": {
		"id": "order_1",
		"user_id": "user_1",
		"line_items": [
			{"id": "li_1", "sku_id": "sku_1", "quantity": 3},
			{"id": "li_2", "sku_id": "sku_2", "spu_id": "spu_a", "quantity": 1}
		]
	}
}`

func TestLimitHandler_Allowed(t *testing.T) {
	svc := &fakeLimitService{}
	w, resp := doCheck(t, newTestRouter(svc), validBody)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["allowed"])
	assert.NotEmpty(t, w.Header().Get(types.HeaderRequestID))

	require.NotNil(t, svc.order)
	assert.Equal(t, "order_1", svc.order.ID)
	assert.Equal(t, types.OrderStateCreated, svc.order.State)
	require.Len(t, svc.order.LineItems, 2)
	assert.Equal(t, "order_1", svc.order.LineItems[0].OrderID)
	assert.Equal(t, int64(3), svc.order.LineItems[0].Quantity)
	assert.Equal(t, "spu_a", svc.order.LineItems[1].SPUID)
}

func TestLimitHandler_Violation(t *testing.T) {
	svc := &fakeLimitService{
		err: ierr.WithError(&service.LimitViolation{
			Code:    types.LimitViolationCodeSKURestLimit,
			Message: "只能继续购买2件",
		}).
			WithHint("只能继续购买2件").
			WithReportableDetails(map[string]any{
				"code":    types.LimitViolationCodeSKURestLimit,
				"rule_id": "rule_1",
				"rest":    2,
			}).
			Mark(ierr.ErrLimitExceeded),
	}
	w, resp := doCheck(t, newTestRouter(svc), validBody)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, false, resp["success"])

	errBody, ok := resp["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "limit_exceeded", errBody["code"])
	assert.Equal(t, "只能继续购买2件", errBody["message"])

	details, ok := errBody["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "SKU_REST_LIMIT", details["code"])
	assert.Equal(t, "rule_1", details["rule_id"])
	assert.Equal(t, float64(2), details["rest"])
}

func TestLimitHandler_InvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"order":`},
		{name: "missing user", body: `{"order":{"id":"order_1","line_items":[{"id":"li_1","sku_id":"sku_1","quantity":1}]}}`},
		{name: "no line items", body: `{"order":{"id":"order_1","user_id":"user_1","line_items":[]}}`},
		{name: "line item without sku", body: `{"order":{"id":"order_1","user_id":"user_1","line_items":[{"id":"li_1","quantity":1}]}}`},
		{name: "unknown state", body: `{"order":{"id":"order_1","user_id":"user_1","state":"LOST","line_items":[{"id":"li_1","sku_id":"sku_1","quantity":1}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeLimitService{}
			w, resp := doCheck(t, newTestRouter(svc), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, resp["success"])
			assert.Nil(t, svc.order)
		})
	}
}

func TestLimitHandler_SystemError(t *testing.T) {
	svc := &fakeLimitService{
		err: ierr.NewError("connection refused").
			WithHint("Failed to load purchase limit rules").
			Mark(ierr.ErrDatabase),
	}
	w, resp := doCheck(t, newTestRouter(svc), validBody)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	errBody := resp["error"].(map[string]any)
	assert.Equal(t, "Failed to load purchase limit rules", errBody["message"])
}
