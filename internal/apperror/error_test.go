package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidation("name is required"), http.StatusBadRequest},
		{"not found", NewNotFound("Invoice", 7), http.StatusNotFound},
		{"stock", NewInsufficientStock("Paracetamol", 1, 5, 2), http.StatusBadRequest},
		{"conflict", NewConflict("category in use"), http.StatusBadRequest},
		{"duplicate", NewDuplicate("User", "username"), http.StatusBadRequest},
		{"unauthorized", NewUnauthorized("Invalid credentials"), http.StatusUnauthorized},
		{"forbidden", NewForbidden("admins only"), http.StatusForbidden},
		{"database", NewDatabase(errors.New("conn refused")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("failed to create invoice: %w", NewNotFound("Customer", 3)), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.err))
		})
	}
}

func TestAppError_UnwrapAndDetails(t *testing.T) {
	cause := errors.New("duplicate key")
	err := NewDuplicate("Inventory item", "sku").WithCause(cause).WithDetail("value", "SKU-1")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "SKU-1", err.Details["value"])
	assert.Contains(t, err.Error(), "caused by")
	assert.True(t, HasCode(fmt.Errorf("wrap: %w", err), CodeDuplicate))
	assert.False(t, IsNotFound(err))
}
