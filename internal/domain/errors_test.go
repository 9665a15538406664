package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		msg  string
	}{
		{"NotFound", NotFound("Booking with id %d not found", 5), CodeNotFound, "Booking with id 5 not found"},
		{"Validation", Validation("Item is not available"), CodeValidation, "Item is not available"},
		{"Forbidden", Forbidden("only owner"), CodeForbidden, "only owner"},
		{"Conflict", Conflict("email taken"), CodeConflict, "email taken"},
		{"Wrapped", fmt.Errorf("ctx: %w", Validation("bad")), CodeValidation, "bad"},
		{"Plain", errors.New("db down"), CodeInternal, "internal error"},
		{"Internal", Internal(errors.New("db down"), "failed"), CodeInternal, "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, CodeOf(tt.err))
			assert.Equal(t, tt.msg, MessageOf(tt.err))
		})
	}

	assert.True(t, IsNotFound(NotFound("x")))
	assert.True(t, IsValidation(Validation("x")))
	assert.True(t, IsForbidden(Forbidden("x")))
	assert.True(t, IsConflict(Conflict("x")))
	assert.False(t, IsNotFound(errors.New("x")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Internal(cause, "wrapped")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by: cause")
	assert.Equal(t, "NOT_FOUND: missing", NotFound("missing").Error())
}
