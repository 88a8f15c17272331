// Package storage provides the data persistence layer for the application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oakmere/auditflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidEntry  = errors.New("invalid reference entry")
	ErrInvalidRecord = errors.New("invalid assessment record")
	ErrInvalidLimit  = errors.New("limit cannot be negative")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateReferenceEntry validates an entry before it is persisted.
func validateReferenceEntry(entry *model.ReferenceEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry", ErrNilParameter)
	}
	if _, err := model.ParseReferenceKind(string(entry.Kind)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	if strings.TrimSpace(entry.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidEntry)
	}
	if entry.FetchedAt.IsZero() {
		return fmt.Errorf("%w: missing fetch time", ErrInvalidEntry)
	}
	return nil
}

// validateAssessmentRecord validates a history record before insert.
func validateAssessmentRecord(record *model.AssessmentRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	if record.AssessedAt.IsZero() {
		return fmt.Errorf("%w: missing assessment time", ErrInvalidRecord)
	}
	if _, err := model.ParseRiskLevel(string(record.Result.Level)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}
