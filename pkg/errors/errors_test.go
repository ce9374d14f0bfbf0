package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cause := stderrors.New("pq: duplicate key value violates unique constraint")

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: http.StatusOK},
		{name: "validation", err: NewValidationError("Name", "is required"), expected: http.StatusBadRequest},
		{name: "already exists", err: NewAlreadyExistsError("account", "email already registered"), expected: http.StatusConflict},
		{name: "internal", err: NewInternalError("failed to register", cause), expected: http.StatusInternalServerError},
		{name: "not implemented", err: NewNotImplementedError("login"), expected: http.StatusNotImplemented},
		{name: "wrapped validation", err: fmt.Errorf("register: %w", NewValidationError("", "bad")), expected: http.StatusBadRequest},
		{name: "plain error", err: cause, expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "validation failed: Email - is required", NewValidationError("Email", "is required").Error())
	assert.Equal(t, "validation failed: bad input", NewValidationError("", "bad input").Error())
	assert.Equal(t, "account already exists", (&AlreadyExistsError{Resource: "account"}).Error())
	assert.Equal(t, "login is not implemented", NewNotImplementedError("login").Error())
	assert.Equal(t, "boom", NewInternalError("boom", nil).Error())
	assert.Equal(t, "boom: db down", NewInternalError("boom", stderrors.New("db down")).Error())
}

func TestUnwrap(t *testing.T) {
	sentinel := stderrors.New("duplicate email")

	ae := &AlreadyExistsError{Resource: "account", Message: "email already registered", Err: sentinel}
	assert.ErrorIs(t, ae, sentinel)

	ie := NewInternalError("failed", sentinel)
	assert.ErrorIs(t, ie, sentinel)
}

func TestDetail(t *testing.T) {
	cause := stderrors.New("UNIQUE constraint failed: utilisateur.email")

	assert.Equal(t, "", Detail(nil))
	assert.Equal(t, cause.Error(), Detail(NewInternalError("failed to register", cause)))
	assert.Equal(t, cause.Error(), Detail(&AlreadyExistsError{Message: "exists", Err: cause}))
	assert.Equal(t, "validation failed: Name - is required", Detail(NewValidationError("Name", "is required")))
}
