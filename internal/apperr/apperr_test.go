package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		wantMsg    string
	}{
		{"validation with message", Validation("email is required"), "validation_error", http.StatusBadRequest, "email is required"},
		{"conflict", ErrConflict, "conflict", http.StatusConflict, "user already exists"},
		{"wrapped conflict", fmt.Errorf("insert: %w", ErrConflict), "conflict", http.StatusConflict, "user already exists"},
		{"invalid credentials", ErrInvalidCredentials, "invalid_credentials", http.StatusUnauthorized, "invalid email or password"},
		{"unauthenticated", ErrUnauthenticated, "unauthenticated", http.StatusUnauthorized, "authentication required"},
		{"forbidden", ErrForbidden, "forbidden", http.StatusForbidden, "insufficient permissions"},
		{"rate limited", ErrRateLimited, "rate_limited", http.StatusTooManyRequests, "too many login attempts, try again later"},
		{
			"oops wrapped store failure",
			oops.Code("store_unavailable").With("op", "insert").Wrapf(ErrStoreUnavailable, "connection refused"),
			"store_unavailable", http.StatusServiceUnavailable, "credential store unavailable",
		},
		{"unknown", errors.New("boom"), "internal", http.StatusInternalServerError, "something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, status, msg := Classify(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := Validation("password is required")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: password is required", err.Error())
}
