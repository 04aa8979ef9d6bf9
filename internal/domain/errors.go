package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrCertificationMismatch = errors.New("certification code does not match")
	ErrDuplicateEmail        = errors.New("email already registered")
)

// NotFoundError reports a lookup with no match. Key is the id or email that was used.
type NotFoundError struct {
	Resource string
	Key      any
}

func NewNotFound(resource string, key any) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %v", e.Resource, e.Key)
}

// ValidationError carries per-field messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// DeliveryError is returned when a notification could not be handed to its channel.
type DeliveryError struct {
	To  string
	Err error
}

func (e *DeliveryError) Error() string {
	if e.Err == nil {
		return "delivery to " + e.To + " failed"
	}
	return "delivery to " + e.To + " failed: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// AsDeliveryError returns err unchanged when it already is a DeliveryError.
func AsDeliveryError(to string, err error) error {
	if err == nil {
		return nil
	}
	var de *DeliveryError
	if errors.As(err, &de) {
		return err
	}
	return &DeliveryError{To: to, Err: err}
}
