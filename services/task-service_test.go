package services

import (
	"context"
	"testing"
	"time"

	"github.com/Mathu0718/online-todo-mathu/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	service    *TaskService
	tasks      *fakeTaskStore
	users      *fakeUserStore
	dispatcher *recordingDispatcher

	owner models.User
	c1    models.User
	c2    models.User
}

func newFixture() *fixture {
	owner := models.User{ID: primitive.NewObjectID(), Email: "olivia@example.com", Name: "Olivia"}
	c1 := models.User{ID: primitive.NewObjectID(), Email: "carl@example.com", Name: "Carl"}
	c2 := models.User{ID: primitive.NewObjectID(), Email: "cora@example.com", Name: "Cora"}

	tasks := newFakeTaskStore()
	users := &fakeUserStore{users: []models.User{owner, c1, c2}}
	dispatcher := &recordingDispatcher{}

	return &fixture{
		service:    NewTaskService(tasks, users, dispatcher),
		tasks:      tasks,
		users:      users,
		dispatcher: dispatcher,
		owner:      owner,
		c1:         c1,
		c2:         c2,
	}
}

func (f *fixture) seedTask(t *testing.T, collaborators ...models.Collaborator) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:         "Ship release",
		Priority:      models.PriorityMedium,
		Status:        models.StatusInProgress,
		Owner:         f.owner.ID,
		Collaborators: collaborators,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	require.NoError(t, f.tasks.Insert(context.Background(), task))
	return task
}

func validPayload() *models.TaskPayload {
	return &models.TaskPayload{
		Title:    "Ship release",
		Priority: models.PriorityMedium,
		Status:   models.StatusInProgress,
	}
}

func TestCreateTaskNotifiesCollaboratorsAndOwner(t *testing.T) {
	f := newFixture()

	payload := validPayload()
	payload.Collaborators = &[]models.CollaboratorInput{
		{Email: f.c1.Email, CanEdit: true},
		{Email: f.c2.Email},
	}

	task, err := f.service.CreateTask(context.Background(), f.owner.ID, payload)
	require.NoError(t, err)
	require.Len(t, task.Collaborators, 2)
	assert.True(t, task.CanWrite(f.c1.ID))
	assert.False(t, task.CanWrite(f.c2.ID))

	assignments := f.dispatcher.callsOfType(models.NotificationAssignment)
	require.Len(t, assignments, 1)
	assert.Len(t, assignments[0].targets, 2)
	assert.Contains(t, assignments[0].message, "by Olivia")

	infos := f.dispatcher.callsOfType(models.NotificationInfo)
	require.Len(t, infos, 1)
	assert.Len(t, infos[0].targets, 3)
	assert.True(t, infos[0].targetIDs()[f.owner.ID])

	// 2 assignment rows + 3 info rows for a 1-owner, 2-collaborator task.
	assert.Equal(t, 5, f.dispatcher.totalNotifications())
}

func TestCreateTaskReportsEveryUnknownEmail(t *testing.T) {
	f := newFixture()

	payload := validPayload()
	payload.Collaborators = &[]models.CollaboratorInput{
		{Email: "ghost@example.com"},
		{Email: f.c1.Email},
		{Email: "phantom@example.com"},
	}

	_, err := f.service.CreateTask(context.Background(), f.owner.ID, payload)
	var unknown *models.UnknownEmailsError
	require.ErrorAs(t, err, &unknown)
	assert.ElementsMatch(t, []string{"ghost@example.com", "phantom@example.com"}, unknown.Emails)
	assert.Empty(t, f.dispatcher.calls)
}

func TestCreateTaskListsEveryViolation(t *testing.T) {
	f := newFixture()

	payload := &models.TaskPayload{
		Title:       "x",
		Description: string(make([]byte, 1001)),
		Priority:    "Urgent",
		Status:      "Paused",
		DueDate:     "tomorrow",
	}

	_, err := f.service.CreateTask(context.Background(), f.owner.ID, payload)
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
	require.Len(t, validation.Violations, 5)
}

func TestCreateTaskRejectsOwnerAsCollaborator(t *testing.T) {
	f := newFixture()

	payload := validPayload()
	payload.Collaborators = &[]models.CollaboratorInput{{Email: f.owner.Email, CanEdit: true}}

	_, err := f.service.CreateTask(context.Background(), f.owner.ID, payload)
	var validation *models.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestUpdateStatusChangeNotifiesEveryoneTwice(t *testing.T) {
	f := newFixture()
	task := f.seedTask(t,
		models.Collaborator{User: f.c1.ID, CanEdit: true},
		models.Collaborator{User: f.c2.ID},
	)

	payload := validPayload()
	payload.Status = models.StatusCompleted

	_, err := f.service.UpdateTask(context.Background(), f.owner.ID, task.ID.Hex(), payload)
	require.NoError(t, err)

	statusCalls := f.dispatcher.callsOfType(models.NotificationStatus)
	require.Len(t, statusCalls, 1)
	assert.Len(t, statusCalls[0].targets, 3)
	assert.Contains(t, statusCalls[0].message, "status updated to Completed")

	infoCalls := f.dispatcher.callsOfType(models.NotificationInfo)
	require.Len(t, infoCalls, 1)
	assert.Len(t, infoCalls[0].targets, 3)

	// 3 status + 3 edit-broadcast rows, 6 in total for this single update.
	assert.Equal(t, 6, f.dispatcher.totalNotifications())
}

func TestUpdateNoStatusChangeSkipsStatusNotification(t *testing.T) {
	f := newFixture()
	task := f.seedTask(t, models.Collaborator{User: f.c1.ID, CanEdit: true})

	payload := validPayload()
	payload.Title = "Ship release v2"

	_, err := f.service.UpdateTask(context.Background(), f.owner.ID, task.ID.Hex(), payload)
	require.NoError(t, err)
	assert.Empty(t, f.dispatcher.callsOfType(models.NotificationStatus))
	require.Len(t, f.dispatcher.callsOfType(models.NotificationInfo), 1)
}

func TestUpdateRemovedCollaboratorGetsRemovalNotice(t *testing.T) {
	f := newFixture()
	task := f.seedTask(t,
		models.Collaborator{User: f.c1.ID, CanEdit: true},
		models.Collaborator{User: f.c2.ID},
	)

	payload := validPayload()
	payload.Collaborators = &[]models.CollaboratorInput{{User: f.c1.ID.Hex(), CanEdit: true}}

	_, err := f.service.UpdateTask(context.Background(), f.owner.ID, task.ID.Hex(), payload)
	require.NoError(t, err)

	infoCalls := f.dispatcher.callsOfType(models.NotificationInfo)
	require.Len(t, infoCalls, 2)

	removal := infoCalls[0]
	require.Len(t, removal.targets, 1)
	assert.Equal(t, f.c2.ID, removal.targets[0].ID)
	assert.Contains(t, removal.message, "removed from the task")

	broadcast := infoCalls[1]
	assert.Len(t, broadcast.targets, 2)
	assert.False(t, broadcast.targetIDs()[f.c2.ID])
}

func TestUpdateAddedCollaboratorGetsAssignment(t *testing.T) {
	f := newFixture()
	task := f.seedTask(t, models.Collaborator{User: f.c1.ID, CanEdit: true})

	payload := validPayload()
	payload.Collaborators = &[]models.CollaboratorInput{
		{User: f.c1.ID.Hex(), CanEdit: true},
		{User: f.c2.ID.Hex()},
	}

	_, err := f.service.UpdateTask(context.Background(), f.owner.ID, task.ID.Hex(), payload)
	require.NoError(t, err)

	assignments := f.dispatcher.callsOfType(models.NotificationAssignment)
	require.Len(t, assignments, 1)
	require.Len(t, assignments[0].targets, 1)
	assert.Equal(t, f.c2.ID, assignments[0].targets[0].ID)
}

func TestUpdateForbiddenForOutsidersAndReadOnlyCollaborators(t *testing.T) {
	f := newFixture()
	task := f.seedTask(t, models.Collaborator{User: f.c1.ID, CanEdit: false})
	stranger := primitive.NewObjectID()

	_, err := f.service.UpdateTask(context.Background(), stranger, task.ID.Hex(), validPayload())
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.service.UpdateTask(context.Background(), f.c1.ID, task.ID.Hex(), validPayload())
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestUpdateCollaboratorsFieldRejectedForNonOwner(t *testing.T) {
	f := newFixture()
	task := f.seedTask(t, models.Collaborator{User: f.c1.ID, CanEdit: true})

	payload := validPayload()
	payload.Collaborators = &[]models.CollaboratorInput{{User: f.c1.ID.Hex(), CanEdit: true}}

	_, err := f.service.UpdateTask(context.Background(), f.c1.ID, task.ID.Hex(), payload)
	assert.ErrorIs(t, err, models.ErrCollaboratorsForbidden)

	// An empty list is still an attempt to change the set.
	payload.Collaborators = &[]models.CollaboratorInput{}
	_, err = f.service.UpdateTask(context.Background(), f.c1.ID, task.ID.Hex(), payload)
	assert.ErrorIs(t, err, models.ErrCollaboratorsForbidden)

	// Leaving the field out entirely is fine for an editing collaborator.
	_, err = f.service.UpdateTask(context.Background(), f.c1.ID, task.ID.Hex(), validPayload())
	assert.NoError(t, err)
}

func TestUpdateUnknownTask(t *testing.T) {
	f := newFixture()

	_, err := f.service.UpdateTask(context.Background(), f.owner.ID, primitive.NewObjectID().Hex(), validPayload())
	assert.ErrorIs(t, err, models.ErrTaskNotFound)

	_, err = f.service.UpdateTask(context.Background(), f.owner.ID, "not-an-id", validPayload())
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestDeleteOwnerOnly(t *testing.T) {
	f := newFixture()
	task := f.seedTask(t, models.Collaborator{User: f.c1.ID, CanEdit: true})

	err := f.service.DeleteTask(context.Background(), f.c1.ID, task.ID.Hex())
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestDeleteNotifiesSnapshotAndRemovesTask(t *testing.T) {
	f := newFixture()
	task := f.seedTask(t,
		models.Collaborator{User: f.c1.ID, CanEdit: true},
		models.Collaborator{User: f.c2.ID},
	)

	require.NoError(t, f.service.DeleteTask(context.Background(), f.owner.ID, task.ID.Hex()))

	require.Len(t, f.dispatcher.deletes, 1)
	assert.Len(t, f.dispatcher.deletes[0].targets, 3)
	assert.Equal(t, task.ID.Hex(), f.dispatcher.deletes[0].taskID)

	infos := f.dispatcher.callsOfType(models.NotificationInfo)
	require.Len(t, infos, 1)
	assert.Len(t, infos[0].targets, 3)
	assert.Contains(t, infos[0].message, "was deleted")

	_, err := f.service.GetTask(context.Background(), f.owner.ID, task.ID.Hex())
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestGetTaskHiddenFromStrangers(t *testing.T) {
	f := newFixture()
	task := f.seedTask(t)

	_, err := f.service.GetTask(context.Background(), f.c1.ID, task.ID.Hex())
	assert.ErrorIs(t, err, models.ErrTaskNotFound)
}

func TestReadPathsDerivePastDueAsTimedOut(t *testing.T) {
	f := newFixture()
	past := time.Now().Add(-2 * time.Hour)
	task := f.seedTask(t, models.Collaborator{User: f.c1.ID})
	task.DueDate = &past
	require.NoError(t, f.tasks.Replace(context.Background(), task))

	listed, err := f.service.ListTasks(context.Background(), f.owner.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, models.StatusTimedOut, listed[0].Effective)
	assert.Equal(t, models.StatusInProgress, listed[0].Status)

	got, err := f.service.GetTask(context.Background(), f.c1.ID, task.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusTimedOut, got.Effective)
}
