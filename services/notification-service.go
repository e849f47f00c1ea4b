package services

import (
	"context"
	"time"

	"github.com/Mathu0718/online-todo-mathu/logging"
	"github.com/Mathu0718/online-todo-mathu/models"

	"github.com/sony/gobreaker"
)

// NotificationService is the dispatcher: one call persists a notification
// row per target, attempts a best-effort email and pushes the persisted
// payload to the target's realtime room. It also owns the read-state
// transitions.
type NotificationService struct {
	store       NotificationStore
	mailer      Mailer
	mailBreaker *gobreaker.CircuitBreaker
	pusher      Pusher
}

func NewNotificationService(store NotificationStore, mailer Mailer, mailBreaker *gobreaker.CircuitBreaker, pusher Pusher) *NotificationService {
	return &NotificationService{
		store:       store,
		mailer:      mailer,
		mailBreaker: mailBreaker,
		pusher:      pusher,
	}
}

func subjectFor(ntype models.NotificationType) string {
	switch ntype {
	case models.NotificationAssignment:
		return "New Task Assignment"
	case models.NotificationStatus:
		return "Task Status Updated"
	case models.NotificationDeadline:
		return "Task Deadline Reminder"
	case models.NotificationInvitation:
		return "Task Invitation"
	default:
		return "Task Update"
	}
}

// Notify creates one notification per target, unconditionally: callers own
// any deduplication they intend. Email and push failures are logged and
// isolated per target so one bad address never stops the rest of the batch,
// and never roll back the persisted row.
func (ns *NotificationService) Notify(ctx context.Context, targets []models.User, ntype models.NotificationType, message, taskID string) {
	for _, target := range targets {
		notification := &models.Notification{
			UserID:    target.ID.Hex(),
			Type:      ntype,
			Message:   message,
			TaskID:    taskID,
			IsRead:    false,
			CreatedAt: time.Now(),
		}

		if err := ns.store.Insert(ctx, notification); err != nil {
			logging.Logger.Errorf("Event ID: NOTIFY_PERSIST_FAILED, Description: Failed to persist %s notification for user %s: %v", ntype, notification.UserID, err)
			continue
		}

		if target.Email != "" {
			_, err := ns.mailBreaker.Execute(func() (interface{}, error) {
				return nil, ns.mailer.Send(target.Email, subjectFor(ntype), message)
			})
			if err != nil {
				logging.Logger.Warnf("Event ID: NOTIFY_EMAIL_FAILED, Description: Failed to email %s: %v", target.Email, err)
			}
		}

		ns.pusher.Broadcast(notification.UserID, "notification", notification)
	}
}

// NotifyTaskDeleted pushes the realtime task-deleted event to each target's
// room. The durable record of the deletion is the info notification the
// caller dispatches alongside.
func (ns *NotificationService) NotifyTaskDeleted(targets []models.User, taskID string) {
	for _, target := range targets {
		ns.pusher.Broadcast(target.ID.Hex(), "task-deleted", map[string]string{"taskId": taskID})
	}
}

// ListNotifications returns the user's notifications, newest first.
func (ns *NotificationService) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return ns.store.FindForUser(ctx, userID)
}

// MarkRead succeeds only when the notification belongs to the user.
func (ns *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return ns.store.MarkRead(ctx, userID, notificationID)
}

// MarkAllRead transitions every unread notification of the user to read and
// reports success even with nothing to do.
func (ns *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return ns.store.MarkAllRead(ctx, userID)
}
