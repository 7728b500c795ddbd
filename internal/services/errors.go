package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"smartjournal/internal/models"
)

// ValidationError rejects input before any storage is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ParseEntryDate parses YYYY-MM-DD, reporting failures as a ValidationError.
func ParseEntryDate(field, s string) (models.Date, error) {
	if strings.TrimSpace(s) == "" {
		return models.Date{}, &ValidationError{Field: field, Reason: "is required"}
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, &ValidationError{Field: field, Reason: "expected YYYY-MM-DD"}
	}
	return d, nil
}

// Clock lets tests pin "now".
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock reads the system time.
func RealClock() Clock { return realClock{} }
