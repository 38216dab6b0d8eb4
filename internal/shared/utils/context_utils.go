package utils

import (
	"context"
	"errors"

	"kbadmin/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrUserIDNotFound    = errors.New("userID not found in context")
	ErrUserIDNotString   = errors.New("userID in context is not a string")
	ErrUsernameNotFound  = errors.New("username not found in context")
	ErrUsernameNotString = errors.New("username in context is not a string")
)

// GetUserIDFromContext retrieves the authenticated user's ID from the context.
// It returns an error if the value is absent or is not a string.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.UserIDKey)
	if val == nil {
		return "", ErrUserIDNotFound
	}
	userID, ok := val.(string)
	if !ok {
		return "", ErrUserIDNotString
	}
	return userID, nil
}

// GetUsernameFromContext retrieves the authenticated user's username from the context.
func GetUsernameFromContext(ctx context.Context) (string, error) {
	val := ctx.Value(contextkeys.UsernameKey)
	if val == nil {
		return "", ErrUsernameNotFound
	}
	username, ok := val.(string)
	if !ok {
		return "", ErrUsernameNotString
	}
	return username, nil
}

// WithUserID adds the authenticated user's ID to context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextkeys.UserIDKey, userID)
}

// WithUsername adds the authenticated user's username to context
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, contextkeys.UsernameKey, username)
}
