package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"movietracker/internal/microservices/http-api/repository"
)

var (
	// ErrNotFound is the repository sentinel, re-exported so callers need only this package.
	ErrNotFound = repository.ErrNotFound

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginDisabled      = errors.New("local login is disabled")
)

// ValidationError lists every rejected field with a human-readable reason.
// Nothing has been written when it is returned.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

// orNil keeps a typed nil *ValidationError from turning into a non-nil error.
func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
