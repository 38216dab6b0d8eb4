package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Behavior(t *testing.T) {
	err := NewValidationError("invalid input").WithCode("VAL001").WithDetail("field", "name").WithComponent("auth")
	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "VAL001", err.Code)
	assert.Equal(t, "auth", err.Component)
	assert.Equal(t, "name", err.Details["field"])
	assert.Equal(t, http.StatusBadRequest, err.HTTPCode)
	assert.Equal(t, "invalid input", err.Error())
}

func TestAppError_WithCause_Unwrap(t *testing.T) {
	cause := ErrNotFound
	err := NewNotFoundError("knowledge base").WithCause(cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.Equal(t, "knowledge base not found: resource not found", err.Error())
}

func TestWrapError(t *testing.T) {
	appErr := NewConflictError("taken")
	assert.Same(t, appErr, WrapError(appErr, "ignored"))

	wrapped := WrapError(fmt.Errorf("socket closed"), "mongo write failed")
	assert.Equal(t, ErrorTypeInternal, wrapped.Type)
	assert.ErrorContains(t, wrapped, "socket closed")
}

func TestErrorClassifiers(t *testing.T) {
	nf := NewNotFoundError("doc")
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsValidation(nf))
	assert.False(t, IsAuthentication(nf))

	assert.True(t, IsNotFound(ErrKnowledgeBaseNotFound))
	assert.True(t, IsNotFound(ErrUserNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", ErrDocumentNotFound)))

	assert.True(t, IsValidation(NewValidationError("bad")))
	assert.True(t, IsAuthentication(NewAuthenticationError("bad")))
	assert.True(t, IsAuthentication(ErrInvalidCredentials))
	assert.True(t, IsConflict(NewConflictError("dup")))
	assert.True(t, IsConflict(ErrConflict))
	assert.False(t, IsConflict(nf))
}
