package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Mathu0718/online-todo-mathu/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeTaskStore struct {
	tasks map[primitive.ObjectID]*models.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[primitive.ObjectID]*models.Task)}
}

func (f *fakeTaskStore) Insert(_ context.Context, task *models.Task) error {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	cp := *task
	f.tasks[task.ID] = &cp
	return nil
}

func (f *fakeTaskStore) FindByID(_ context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	task, ok := f.tasks[taskID]
	if !ok {
		return nil, models.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (f *fakeTaskStore) Replace(_ context.Context, task *models.Task) error {
	if _, ok := f.tasks[task.ID]; !ok {
		return models.ErrTaskNotFound
	}
	cp := *task
	f.tasks[task.ID] = &cp
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, taskID primitive.ObjectID) error {
	if _, ok := f.tasks[taskID]; !ok {
		return models.ErrTaskNotFound
	}
	delete(f.tasks, taskID)
	return nil
}

func (f *fakeTaskStore) FindForUser(_ context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	var tasks []models.Task
	for _, task := range f.tasks {
		if task.CanRead(userID) {
			tasks = append(tasks, *task)
		}
	}
	return tasks, nil
}

func (f *fakeTaskStore) FindDueBetween(_ context.Context, from, to time.Time, status models.TaskStatus) ([]models.Task, error) {
	var tasks []models.Task
	for _, task := range f.tasks {
		if task.DueDate == nil || task.Status != status {
			continue
		}
		if task.DueDate.Before(from) || task.DueDate.After(to) {
			continue
		}
		tasks = append(tasks, *task)
	}
	return tasks, nil
}

type fakeUserStore struct {
	users []models.User
}

func (f *fakeUserStore) FindByID(_ context.Context, userID primitive.ObjectID) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			cp := u
			return &cp, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (f *fakeUserStore) FindByIDs(_ context.Context, userIDs []primitive.ObjectID) ([]models.User, error) {
	var users []models.User
	for _, id := range userIDs {
		for _, u := range f.users {
			if u.ID == id {
				users = append(users, u)
			}
		}
	}
	return users, nil
}

func (f *fakeUserStore) FindByEmails(_ context.Context, emails []string) ([]models.User, error) {
	var users []models.User
	for _, e := range emails {
		for _, u := range f.users {
			if u.Email == e {
				users = append(users, u)
			}
		}
	}
	return users, nil
}

func (f *fakeUserStore) UpsertExternal(_ context.Context, googleID, email, name, avatar string) (*models.User, error) {
	for i, u := range f.users {
		if u.GoogleID == googleID {
			f.users[i].Email, f.users[i].Name, f.users[i].Avatar = email, name, avatar
			cp := f.users[i]
			return &cp, nil
		}
	}
	user := models.User{ID: primitive.NewObjectID(), GoogleID: googleID, Email: email, Name: name, Avatar: avatar}
	f.users = append(f.users, user)
	return &user, nil
}

type notifyCall struct {
	targets []models.User
	ntype   models.NotificationType
	message string
	taskID  string
}

func (c notifyCall) targetIDs() map[primitive.ObjectID]bool {
	ids := make(map[primitive.ObjectID]bool, len(c.targets))
	for _, u := range c.targets {
		ids[u.ID] = true
	}
	return ids
}

type deleteCall struct {
	targets []models.User
	taskID  string
}

type recordingDispatcher struct {
	calls   []notifyCall
	deletes []deleteCall
}

func (d *recordingDispatcher) Notify(_ context.Context, targets []models.User, ntype models.NotificationType, message, taskID string) {
	d.calls = append(d.calls, notifyCall{targets: targets, ntype: ntype, message: message, taskID: taskID})
}

func (d *recordingDispatcher) NotifyTaskDeleted(targets []models.User, taskID string) {
	d.deletes = append(d.deletes, deleteCall{targets: targets, taskID: taskID})
}

func (d *recordingDispatcher) callsOfType(ntype models.NotificationType) []notifyCall {
	var calls []notifyCall
	for _, c := range d.calls {
		if c.ntype == ntype {
			calls = append(calls, c)
		}
	}
	return calls
}

// totalNotifications counts individual notification rows the dispatcher
// would have persisted.
func (d *recordingDispatcher) totalNotifications() int {
	total := 0
	for _, c := range d.calls {
		total += len(c.targets)
	}
	return total
}

type fakeNotificationStore struct {
	rows      []*models.Notification
	insertErr error
}

func (f *fakeNotificationStore) Insert(_ context.Context, n *models.Notification) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if n.ID == "" {
		n.ID = fmt.Sprintf("n-%d", len(f.rows)+1)
	}
	cp := *n
	f.rows = append(f.rows, &cp)
	return nil
}

func (f *fakeNotificationStore) FindForUser(_ context.Context, userID string) ([]models.Notification, error) {
	var rows []models.Notification
	for _, n := range f.rows {
		if n.UserID == userID {
			rows = append(rows, *n)
		}
	}
	return rows, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, userID, notificationID string) error {
	for _, n := range f.rows {
		if n.UserID == userID && n.ID == notificationID {
			n.IsRead = true
			return nil
		}
	}
	return models.ErrNotificationNotFound
}

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range f.rows {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

type sentMail struct {
	to      string
	subject string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(to, subject, _ string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject})
	return f.err
}

type pushedEvent struct {
	userID string
	event  string
	data   interface{}
}

type fakePusher struct {
	events []pushedEvent
}

func (f *fakePusher) Broadcast(userID string, event string, data interface{}) {
	f.events = append(f.events, pushedEvent{userID: userID, event: event, data: data})
}
