package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CollaboratorInput is one collaborator entry in a create/update payload.
// Either a user id or an email may be given; emails are resolved to users
// before the task is constructed.
type CollaboratorInput struct {
	User    string `json:"user,omitempty"`
	Email   string `json:"email,omitempty"`
	CanEdit bool   `json:"canEdit"`
}

// TaskPayload is the request body for task create and update. A nil
// Collaborators pointer means the field was absent from the request, which
// is tolerated for non-owner callers; an empty list means "remove everyone".
type TaskPayload struct {
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	Priority      TaskPriority         `json:"priority"`
	Status        TaskStatus           `json:"status"`
	DueDate       string               `json:"dueDate,omitempty"`
	Collaborators *[]CollaboratorInput `json:"collaborators,omitempty"`
}

// Validate checks every rule and returns a ValidationError listing all
// violations, or nil when the payload is clean. The title is trimmed in
// place.
func (p *TaskPayload) Validate() error {
	var violations []FieldViolation

	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		violations = append(violations, FieldViolation{Field: "title", Message: "Title is required"})
	} else if n := utf8.RuneCountInString(p.Title); n < 2 || n > 100 {
		violations = append(violations, FieldViolation{Field: "title", Message: "Title must be 2-100 characters"})
	}

	if utf8.RuneCountInString(p.Description) > 1000 {
		violations = append(violations, FieldViolation{Field: "description", Message: "Description too long"})
	}

	switch p.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		violations = append(violations, FieldViolation{Field: "priority", Message: "Invalid priority"})
	}

	switch p.Status {
	case StatusInProgress, StatusCompleted, StatusTimedOut:
	default:
		violations = append(violations, FieldViolation{Field: "status", Message: "Invalid status"})
	}

	if p.DueDate != "" {
		if _, err := time.Parse(time.RFC3339, p.DueDate); err != nil {
			violations = append(violations, FieldViolation{Field: "dueDate", Message: "Invalid date"})
		}
	}

	if p.Collaborators != nil {
		for _, c := range *p.Collaborators {
			if c.User == "" && c.Email == "" {
				violations = append(violations, FieldViolation{Field: "collaborators", Message: "Collaborator entry needs a user id or an email"})
				continue
			}
			if c.User != "" {
				if _, err := primitive.ObjectIDFromHex(c.User); err != nil {
					violations = append(violations, FieldViolation{Field: "collaborators", Message: "Collaborator user must be a valid user ID"})
				}
			}
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// Due returns the parsed due date, or nil when none was given. Call only
// after Validate has accepted the payload.
func (p *TaskPayload) Due() *time.Time {
	if p.DueDate == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, p.DueDate)
	if err != nil {
		return nil
	}
	return &t
}
