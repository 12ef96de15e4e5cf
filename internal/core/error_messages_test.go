package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "required field maps correctly",
			err:         requiredField("name"),
			wantCode:    "VAL001",
			wantMessage: "A required field is empty",
		},
		{
			name:        "invalid reference maps correctly",
			err:         invalidReference("vehicleId", "vehicle", "v-1"),
			wantCode:    "VAL002",
			wantMessage: "The selected customer or vehicle does not exist",
		},
		{
			name:        "confirmation maps correctly",
			err:         &ValidationError{Field: "confirm", Message: "confirmation required", Err: ErrConfirmationRequired},
			wantCode:    "VAL003",
			wantMessage: "This action needs confirmation",
		},
		{
			name:        "not found maps correctly",
			err:         NotFound("customer", "42"),
			wantCode:    "NF001",
			wantMessage: "The record no longer exists",
		},
		{
			name:        "duplicate key maps before already exists",
			err:         errors.New("ERROR: duplicate key value violates unique constraint (already exists)"),
			wantCode:    "DB001",
			wantMessage: "A record with this ID already exists",
		},
		{
			name:        "transport connection refused",
			err:         &TransportError{Op: "list customers", Err: errors.New("dial tcp: connection refused")},
			wantCode:    "DB004",
			wantMessage: "Unable to connect to storage",
		},
		{
			name:        "transport generic",
			err:         &TransportError{Op: "create order", Err: errors.New("disk full")},
			wantCode:    "DB010",
			wantMessage: "Saving or loading data failed",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("INVALID CREDENTIALS"),
			wantCode:    "AUTH001",
			wantMessage: "Wrong username or password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMessage, got.Message)
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(requiredField("phone"))

	assert.Equal(t, "A required field is empty (Code: VAL001). Fill in every required field and save again", result)
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", errors.New("duplicate key"), true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUserFacing(tt.err))
		})
	}
}

func TestStorageErrorClassification(t *testing.T) {
	nf := NotFound("order", "7")
	assert.ErrorIs(t, storageError("update order", fmt.Errorf("wrapped: %w", nf)), ErrNotFound)
	assert.False(t, IsTransport(storageError("update order", nf)))

	assert.True(t, IsTransport(storageError("list orders", errors.New("boom"))))
	assert.NoError(t, storageError("noop", nil))
}
