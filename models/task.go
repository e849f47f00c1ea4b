package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
	StatusTimedOut   TaskStatus = "Timed Out"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "Low"
	PriorityMedium TaskPriority = "Medium"
	PriorityHigh   TaskPriority = "High"
)

// Collaborator is a user granted access to a task. canEdit=false means
// read-only.
type Collaborator struct {
	User    primitive.ObjectID `bson:"user" json:"user"`
	CanEdit bool               `bson:"canEdit" json:"canEdit"`
}

type Task struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description" json:"description"`
	Priority      TaskPriority       `bson:"priority" json:"priority"`
	Status        TaskStatus         `bson:"status" json:"status"`
	DueDate       *time.Time         `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Owner         primitive.ObjectID `bson:"owner" json:"owner"`
	Collaborators []Collaborator     `bson:"collaborators" json:"collaborators"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Effective is the display status and is never stored; the service
	// layer stamps it on every task it returns.
	Effective TaskStatus `bson:"-" json:"effectiveStatus"`
}

// IsOwner reports whether userID is the task owner.
func (t *Task) IsOwner(userID primitive.ObjectID) bool {
	return t.Owner == userID
}

// CanRead is true for the owner and for every collaborator, regardless of
// canEdit.
func (t *Task) CanRead(userID primitive.ObjectID) bool {
	if t.IsOwner(userID) {
		return true
	}
	for _, c := range t.Collaborators {
		if c.User == userID {
			return true
		}
	}
	return false
}

// CanWrite is true for the owner and for collaborators whose entry carries
// canEdit.
func (t *Task) CanWrite(userID primitive.ObjectID) bool {
	if t.IsOwner(userID) {
		return true
	}
	for _, c := range t.Collaborators {
		if c.User == userID {
			return c.CanEdit
		}
	}
	return false
}

// CollaboratorIDs returns the collaborator user ids in list order.
func (t *Task) CollaboratorIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(t.Collaborators))
	for _, c := range t.Collaborators {
		ids = append(ids, c.User)
	}
	return ids
}

// InvolvedIDs returns the owner followed by every collaborator. The owner is
// never listed as a collaborator, so the result holds no duplicates.
func (t *Task) InvolvedIDs() []primitive.ObjectID {
	return append([]primitive.ObjectID{t.Owner}, t.CollaboratorIDs()...)
}

// EffectiveStatus computes the display status: a task past its due date
// always reads as Timed Out, whatever is stored.
func (t *Task) EffectiveStatus(now time.Time) TaskStatus {
	if t.DueDate != nil && t.DueDate.Before(now) {
		return StatusTimedOut
	}
	return t.Status
}

// DeriveStatus stamps the display status onto the task. Every read path must
// pass tasks through here before returning them.
func (t *Task) DeriveStatus(now time.Time) {
	t.Effective = t.EffectiveStatus(now)
}
