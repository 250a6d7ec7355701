package errors

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusFromErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        NewError("sku missing").Mark(ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   ErrCodeNotFound,
		},
		{
			name:       "validation",
			err:        NewError("bad request").WithHint("user_id is required").Mark(ErrValidation),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrCodeValidation,
		},
		{
			name:       "limit exceeded",
			err:        WithError(errors.New("SKU_LIMIT: 最多只能购买10件")).WithHint("最多只能购买10件").Mark(ErrLimitExceeded),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   ErrCodeLimitExceeded,
		},
		{
			name:       "database",
			err:        WithError(errors.New("connection refused")).Mark(ErrDatabase),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrCodeDatabase,
		},
		{
			name:       "unmarked",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrCodeSystemError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, HTTPStatusFromErr(tt.err))
			assert.Equal(t, tt.wantCode, CodeFromErr(tt.err))
		})
	}
}

func TestMark_KeepsCause(t *testing.T) {
	err := WithError(context.Canceled).
		WithHint("Purchase limit check was cancelled").
		Mark(ErrSystem)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, errors.Is(err, ErrSystem))
	assert.False(t, IsLimitExceeded(err))
	assert.Contains(t, errors.GetAllHints(err), "Purchase limit check was cancelled")
}

func TestWithReportableDetails(t *testing.T) {
	err := NewError("limit exceeded").
		WithReportableDetails(map[string]any{"rule_id": "rule_1"}).
		Mark(ErrLimitExceeded)

	var found bool
	for _, sd := range errors.GetAllSafeDetails(err) {
		for _, payload := range sd.SafeDetails {
			if strings.HasPrefix(payload, "__json__:") && strings.Contains(payload, `"rule_id":"rule_1"`) {
				found = true
			}
		}
	}
	assert.True(t, found)
}
