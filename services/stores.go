package services

import (
	"context"
	"time"

	"github.com/Mathu0718/online-todo-mathu/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The services depend on narrow store and side-effect interfaces so the
// mutation and fan-out logic stays testable without Mongo, Cassandra, SMTP
// or a live socket. The repositories package provides the real
// implementations.

type TaskStore interface {
	Insert(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error)
	Replace(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, taskID primitive.ObjectID) error
	FindForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error)
	FindDueBetween(ctx context.Context, from, to time.Time, status models.TaskStatus) ([]models.Task, error)
}

type UserStore interface {
	FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, userIDs []primitive.ObjectID) ([]models.User, error)
	FindByEmails(ctx context.Context, emails []string) ([]models.User, error)
	UpsertExternal(ctx context.Context, googleID, email, name, avatar string) (*models.User, error)
}

type NotificationStore interface {
	Insert(ctx context.Context, notification *models.Notification) error
	FindForUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// Dispatcher turns a domain event into persisted notifications, email
// attempts and realtime pushes. The mutation engine and the deadline
// scanner drive it as their single last step.
type Dispatcher interface {
	Notify(ctx context.Context, targets []models.User, ntype models.NotificationType, message, taskID string)
	NotifyTaskDeleted(targets []models.User, taskID string)
}

// Mailer sends one notification email.
type Mailer interface {
	Send(to, subject, body string) error
}

// Pusher delivers a realtime event to every live session of a user.
// sockets.Hub satisfies it.
type Pusher interface {
	Broadcast(userID string, event string, data interface{})
}
