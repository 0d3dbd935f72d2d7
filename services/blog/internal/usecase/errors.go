package usecase

import (
	"errors"
	"sort"
	"strings"

	"advanced-blog/services/blog/internal/policy"

	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("invalid input")
)

// PermissionError carries the warning shown to a refused actor. It matches
// ErrPermissionDenied.
type PermissionError struct {
	Action  policy.Action
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

func denied(action policy.Action) error {
	return &PermissionError{Action: action, Message: policy.Warning(action)}
}

// ValidationError maps input field names to messages. Nothing is written when
// it is returned. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// notFound turns a missing row into ErrNotFound and leaves other errors alone.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}
