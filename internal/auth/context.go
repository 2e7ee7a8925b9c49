package auth

import (
	"context"
	"errors"
	"strings"
)

// ErrUnauthenticated is returned when an operation needs a user and none is attached.
var ErrUnauthenticated = errors.New("login required")

type userKey struct{}

// WithUser attaches the authenticated user id to ctx.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserID resolves the current user. Every checklist read and write goes through it.
func UserID(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(userKey{}).(string)
	if strings.TrimSpace(userID) == "" {
		return "", ErrUnauthenticated
	}
	return userID, nil
}
