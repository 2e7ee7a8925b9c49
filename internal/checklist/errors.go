package checklist

import (
	"errors"
	"fmt"

	"mapletrack/internal/store"
)

// ErrInvalidPeriodKey is returned before any storage call when a key is not YYYY-MM-DD.
var ErrInvalidPeriodKey = errors.New("invalid period key")

// PersistError reports a failed storage operation. It is never retried.
type PersistError struct {
	Op        string
	Category  store.Category
	PeriodKey string
	Err       error
}

func (e *PersistError) Error() string {
	if e.PeriodKey == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Category, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Category, e.PeriodKey, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

func persistErr(op string, category store.Category, periodKey string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistError{Op: op, Category: category, PeriodKey: periodKey, Err: err}
}
