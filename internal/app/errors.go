package app

import (
	"errors"
	"fmt"
	"net/http"

	"mapletrack/internal/auth"
	"mapletrack/internal/checklist"
	"mapletrack/internal/store"
)

type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, auth.ErrUnauthenticated) || errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	if errors.Is(err, checklist.ErrInvalidPeriodKey) {
		return http.StatusBadRequest, "INVALID_PERIOD_KEY", "Period key must be YYYY-MM-DD", nil
	}
	var validationErr *checklist.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Invalid " + validationErr.Entity, map[string]any{"fields": validationErr.Fields}
	}
	var persistErr *checklist.PersistError
	if errors.As(err, &persistErr) {
		return http.StatusInternalServerError, "PERSIST_ERROR", persistMessage(persistErr), nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}

// persistMessage is the user-facing text for a failed storage call.
func persistMessage(err *checklist.PersistError) string {
	var subject string
	switch err.Category {
	case store.CategoryWeeklyBoss:
		subject = "weekly boss progress"
	case store.CategoryMonthlyBoss:
		subject = "monthly boss progress"
	case store.CategoryMemo:
		subject = "memos"
	case store.CategoryCalendar:
		subject = "calendar events"
	default:
		subject = "data"
	}
	switch err.Op {
	case "load", "load history", "load expired":
		return "Failed to load " + subject
	case "cleanup":
		return "Failed to clean up " + subject
	default:
		return "Failed to save " + subject
	}
}
