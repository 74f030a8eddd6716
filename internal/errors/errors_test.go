package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "invalid input",
			err:        NewInvalidInputError("Address is required"),
			wantCode:   CodeInvalidInput,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "limit reached",
			err:        NewLimitReachedError(1),
			wantCode:   CodeLimitReached,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrapped store error",
			err:        fmt.Errorf("check-in: %w", NewStoreError("read streak", stderrors.New("dial tcp"))),
			wantCode:   CodeStoreUnavailable,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "wrapped eligibility error",
			err:        fmt.Errorf("send: %w", NewSenderNotEligibleError("0xa")),
			wantCode:   CodeSenderNotEligible,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "plain error",
			err:        stderrors.New("unexpected"),
			wantCode:   CodeInternalError,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Categorize(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, GetHTTPStatusCode(tt.err))
		})
	}

	assert.Nil(t, Categorize(nil))
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewRecipientNotEligibleError("0xb"), CodeRecipientNotEligible))
	assert.False(t, HasCode(NewRecipientNotEligibleError("0xb"), CodeSenderNotEligible))
	assert.False(t, HasCode(nil, CodeInvalidInput))
}

func TestUserAndSystemErrors(t *testing.T) {
	assert.True(t, IsUserError(NewSenderNotEligibleError("0xa")))
	assert.False(t, IsSystemError(NewSenderNotEligibleError("0xa")))
	assert.True(t, IsSystemError(NewStoreError("write", stderrors.New("timeout"))))
}

func TestStoreErrorUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewStoreError("read", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "STORE_UNAVAILABLE")
}
