package checklist

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"mapletrack/internal/period"
	"mapletrack/internal/util"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
		return period.IsDateKey(fl.Field().String())
	})
	return v
}

// NewMemo builds a fresh, not-completed memo. An empty dueDate means none.
func NewMemo(text, dueDate string, now time.Time) (Memo, error) {
	memo := Memo{
		ID:        util.NewID(""),
		Text:      strings.TrimSpace(text),
		CreatedAt: Timestamp(now),
		DueDate:   optionalString(strings.TrimSpace(dueDate)),
	}
	if err := validate.Struct(memo); err != nil {
		return Memo{}, validationError("memo", err)
	}
	return memo, nil
}

// NewEvent builds a calendar event. Blank friend names are dropped.
func NewEvent(dateKey, title string, friends []string, memo string, now time.Time) (CalendarEvent, error) {
	names := make([]string, 0, len(friends))
	for _, f := range friends {
		if f = strings.TrimSpace(f); f != "" {
			names = append(names, f)
		}
	}
	event := CalendarEvent{
		ID:        util.NewID(""),
		DateKey:   strings.TrimSpace(dateKey),
		Title:     strings.TrimSpace(title),
		Friends:   names,
		Memo:      optionalString(strings.TrimSpace(memo)),
		CreatedAt: Timestamp(now),
	}
	if err := validate.Struct(event); err != nil {
		return CalendarEvent{}, validationError("event", err)
	}
	return event, nil
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Entity string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(e.Fields, ", "))
}

func validationError(entity string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %s: %w", entity, err)
	}
	out := &ValidationError{Entity: entity}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, strings.ToLower(fe.Field()[:1])+fe.Field()[1:])
	}
	return out
}
