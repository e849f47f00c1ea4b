package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Mathu0718/online-todo-mathu/logging"
	"github.com/Mathu0718/online-todo-mathu/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskService is the mutation engine: it enforces access control, applies
// create/update/delete, computes collaborator-set deltas and drives the
// dispatcher as its last step.
type TaskService struct {
	tasks      TaskStore
	users      UserStore
	dispatcher Dispatcher
}

func NewTaskService(tasks TaskStore, users UserStore, dispatcher Dispatcher) *TaskService {
	return &TaskService{tasks: tasks, users: users, dispatcher: dispatcher}
}

// ListTasks returns every task the user owns or collaborates on, display
// status derived.
func (s *TaskService) ListTasks(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	tasks, err := s.tasks.FindForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range tasks {
		tasks[i].DeriveStatus(now)
	}
	return tasks, nil
}

// GetTask loads one task for a caller allowed to read it. Tasks the caller
// has no relationship to read as not found, so their existence leaks
// nothing.
func (s *TaskService) GetTask(ctx context.Context, callerID primitive.ObjectID, taskID string) (*models.Task, error) {
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, models.ErrTaskNotFound
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.CanRead(callerID) {
		return nil, models.ErrTaskNotFound
	}
	task.DeriveStatus(time.Now())
	return task, nil
}

// CreateTask validates the payload, resolves collaborators in one pass,
// persists the task with the caller as owner and notifies: "assignment" to
// each collaborator, then an "info" created-broadcast to owner and
// collaborators alike.
func (s *TaskService) CreateTask(ctx context.Context, ownerID primitive.ObjectID, payload *models.TaskPayload) (*models.Task, error) {
	if payload.Priority == "" {
		payload.Priority = models.PriorityLow
	}
	if payload.Status == "" {
		payload.Status = models.StatusInProgress
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	collaborators := []models.Collaborator{}
	if payload.Collaborators != nil {
		resolved, err := s.resolveCollaborators(ctx, ownerID, *payload.Collaborators)
		if err != nil {
			return nil, err
		}
		collaborators = resolved
	}

	now := time.Now()
	task := &models.Task{
		Title:         payload.Title,
		Description:   payload.Description,
		Priority:      payload.Priority,
		Status:        payload.Status,
		DueDate:       payload.Due(),
		Owner:         ownerID,
		Collaborators: collaborators,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, err
	}

	taskID := task.ID.Hex()
	if len(task.Collaborators) > 0 {
		assignees := s.lookupUsers(ctx, task.CollaboratorIDs())
		message := fmt.Sprintf("You have been assigned to the task: %s by %s.", task.Title, s.displayName(ctx, ownerID))
		s.dispatcher.Notify(ctx, assignees, models.NotificationAssignment, message, taskID)
	}
	s.dispatcher.Notify(ctx, s.involvedUsers(ctx, task), models.NotificationInfo,
		fmt.Sprintf("Task '%s' was created.", task.Title), taskID)

	task.DeriveStatus(now)
	return task, nil
}

// UpdateTask applies the full field set last-write-wins. Before applying it
// computes three deltas: status change, added collaborators and removed
// collaborators; afterwards it dispatches, in order, the "status"
// notification, "assignment" to the added, the removal notice to the
// removed, and the generic edit broadcast. A single update may notify the
// same user several times; no deduplication is performed.
func (s *TaskService) UpdateTask(ctx context.Context, callerID primitive.ObjectID, taskID string, payload *models.TaskPayload) (*models.Task, error) {
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, models.ErrTaskNotFound
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.CanWrite(callerID) {
		return nil, models.ErrForbidden
	}
	if payload.Collaborators != nil && !task.IsOwner(callerID) {
		return nil, models.ErrCollaboratorsForbidden
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	newCollaborators := task.Collaborators
	if payload.Collaborators != nil {
		newCollaborators, err = s.resolveCollaborators(ctx, task.Owner, *payload.Collaborators)
		if err != nil {
			return nil, err
		}
	}

	prevStatus := task.Status
	prev := make(map[primitive.ObjectID]bool, len(task.Collaborators))
	for _, c := range task.Collaborators {
		prev[c.User] = true
	}
	next := make(map[primitive.ObjectID]bool, len(newCollaborators))
	var added []primitive.ObjectID
	for _, c := range newCollaborators {
		next[c.User] = true
		if !prev[c.User] {
			added = append(added, c.User)
		}
	}
	var removed []primitive.ObjectID
	for _, c := range task.Collaborators {
		if !next[c.User] {
			removed = append(removed, c.User)
		}
	}

	task.Title = payload.Title
	task.Description = payload.Description
	task.Priority = payload.Priority
	task.Status = payload.Status
	task.DueDate = payload.Due()
	task.Collaborators = newCollaborators
	task.UpdatedAt = time.Now()

	if err := s.tasks.Replace(ctx, task); err != nil {
		return nil, err
	}

	if task.Status != prevStatus {
		s.dispatcher.Notify(ctx, s.involvedUsers(ctx, task), models.NotificationStatus,
			fmt.Sprintf("Task '%s' status updated to %s", task.Title, task.Status), taskID)
	}
	if len(added) > 0 {
		message := fmt.Sprintf("You have been assigned to the task: %s by %s.", task.Title, s.displayName(ctx, callerID))
		s.dispatcher.Notify(ctx, s.lookupUsers(ctx, added), models.NotificationAssignment, message, taskID)
	}
	if len(removed) > 0 {
		s.dispatcher.Notify(ctx, s.lookupUsers(ctx, removed), models.NotificationInfo,
			fmt.Sprintf("You have been removed from the task: %s", task.Title), taskID)
	}
	s.dispatcher.Notify(ctx, s.involvedUsers(ctx, task), models.NotificationInfo,
		fmt.Sprintf("Task '%s' was edited.", task.Title), taskID)

	task.DeriveStatus(time.Now())
	return task, nil
}

// DeleteTask is owner-only; collaborators cannot delete even with canEdit.
// Targets are snapshotted before the delete, then told through both the
// realtime task-deleted event and a durable "info" notification.
func (s *TaskService) DeleteTask(ctx context.Context, callerID primitive.ObjectID, taskID string) error {
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return models.ErrTaskNotFound
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !task.IsOwner(callerID) {
		return models.ErrForbidden
	}

	targets := s.involvedUsers(ctx, task)

	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	s.dispatcher.NotifyTaskDeleted(targets, taskID)
	s.dispatcher.Notify(ctx, targets, models.NotificationInfo,
		fmt.Sprintf("Task '%s' was deleted.", task.Title), taskID)
	return nil
}

// resolveCollaborators turns payload entries into collaborator records in a
// single resolve-then-construct pass. Every unresolvable email is reported
// at once; duplicate users collapse to their first entry; the owner may not
// appear in the set.
func (s *TaskService) resolveCollaborators(ctx context.Context, ownerID primitive.ObjectID, inputs []models.CollaboratorInput) ([]models.Collaborator, error) {
	byEmail := make(map[string]models.User)
	var emails []string
	seenEmail := make(map[string]bool)
	for _, in := range inputs {
		if in.User == "" && in.Email != "" && !seenEmail[in.Email] {
			seenEmail[in.Email] = true
			emails = append(emails, in.Email)
		}
	}
	if len(emails) > 0 {
		users, err := s.users.FindByEmails(ctx, emails)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			byEmail[u.Email] = u
		}
		var unknown []string
		for _, e := range emails {
			if _, ok := byEmail[e]; !ok {
				unknown = append(unknown, e)
			}
		}
		if len(unknown) > 0 {
			return nil, &models.UnknownEmailsError{Emails: unknown}
		}
	}

	known := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, in := range inputs {
		if in.User != "" {
			id, err := primitive.ObjectIDFromHex(in.User)
			if err != nil {
				return nil, &models.ValidationError{Violations: []models.FieldViolation{
					{Field: "collaborators", Message: "Collaborator user must be a valid user ID"},
				}}
			}
			ids = append(ids, id)
		}
	}
	if len(ids) > 0 {
		users, err := s.users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			known[u.ID] = true
		}
	}

	collaborators := make([]models.Collaborator, 0, len(inputs))
	seen := make(map[primitive.ObjectID]bool)
	for _, in := range inputs {
		var userID primitive.ObjectID
		if in.User != "" {
			userID, _ = primitive.ObjectIDFromHex(in.User)
			if !known[userID] {
				return nil, &models.ValidationError{Violations: []models.FieldViolation{
					{Field: "collaborators", Message: fmt.Sprintf("No user found for id %s", in.User)},
				}}
			}
		} else {
			userID = byEmail[in.Email].ID
		}
		if userID == ownerID {
			return nil, &models.ValidationError{Violations: []models.FieldViolation{
				{Field: "collaborators", Message: "The owner cannot be added as a collaborator"},
			}}
		}
		if seen[userID] {
			continue
		}
		seen[userID] = true
		collaborators = append(collaborators, models.Collaborator{User: userID, CanEdit: in.CanEdit})
	}
	return collaborators, nil
}

// involvedUsers loads owner and collaborators for fan-out. A lookup failure
// is logged and yields an empty target set rather than failing the mutation
// that already persisted.
func (s *TaskService) involvedUsers(ctx context.Context, task *models.Task) []models.User {
	return s.lookupUsers(ctx, task.InvolvedIDs())
}

func (s *TaskService) lookupUsers(ctx context.Context, ids []primitive.ObjectID) []models.User {
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		logging.Logger.Errorf("Event ID: FANOUT_LOOKUP_FAILED, Description: Failed to load notification targets: %v", err)
		return nil
	}
	return users
}

func (s *TaskService) displayName(ctx context.Context, userID primitive.ObjectID) string {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil || user.Name == "" {
		return "someone"
	}
	return user.Name
}
