package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")

	// ErrForbidden covers a caller lacking the required relationship to the
	// task. ErrCollaboratorsForbidden is kept separate because clients
	// surface the two cases differently.
	ErrForbidden              = errors.New("forbidden")
	ErrCollaboratorsForbidden = errors.New("only the owner can modify collaborators")
)

// FieldViolation names one invalid field in a request payload.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field of a payload, not just the
// first one.
type ValidationError struct {
	Violations []FieldViolation `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UnknownEmailsError reports every collaborator email that did not resolve
// to an existing user.
type UnknownEmailsError struct {
	Emails []string
}

func (e *UnknownEmailsError) Error() string {
	return fmt.Sprintf("no user found for emails: %s", strings.Join(e.Emails, ", "))
}
