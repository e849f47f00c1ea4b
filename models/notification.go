package models

import "time"

type NotificationType string

const (
	NotificationAssignment NotificationType = "assignment"
	NotificationStatus     NotificationType = "status"
	NotificationInvitation NotificationType = "invitation"
	NotificationDeadline   NotificationType = "deadline"
	NotificationInfo       NotificationType = "info"
)

// Notification is a persisted in-app notification. Rows are created by the
// dispatcher only and are never deleted; the read flag is the only mutable
// field.
type Notification struct {
	ID        string           `cassandra:"id" json:"id"`
	UserID    string           `cassandra:"user_id" json:"userId"`
	Type      NotificationType `cassandra:"type" json:"type"`
	Message   string           `cassandra:"message" json:"message"`
	TaskID    string           `cassandra:"task_id" json:"taskId,omitempty"`
	IsRead    bool             `cassandra:"is_read" json:"isRead"`
	CreatedAt time.Time        `cassandra:"created_at" json:"createdAt"`
}
