package repositories

import (
	"context"
	"os"
	"time"

	"github.com/Mathu0718/online-todo-mathu/logging"
	"github.com/Mathu0718/online-todo-mathu/models"

	"github.com/gocql/gocql"
)

type NotificationRepo struct {
	session *gocql.Session
}

// NewNotificationRepo connects to Cassandra, bootstrapping the notifications
// keyspace on first run.
func NewNotificationRepo() (*NotificationRepo, error) {
	db := os.Getenv("CASS_DB")
	if db == "" {
		db = "127.0.0.1"
	}

	cluster := gocql.NewCluster(db)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_CONNECT_FAILED, Description: Failed to connect to Cassandra: %v", err)
		return nil, err
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS notifications
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_KEYSPACE_FAILED, Description: Failed to create keyspace: %v", err)
		return nil, err
	}
	session.Close()

	cluster.Keyspace = "notifications"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_KEYSPACE_CONNECT_FAILED, Description: Failed to connect to notifications keyspace: %v", err)
		return nil, err
	}

	logging.Logger.Info("Event ID: CASS_CONNECTED, Description: Connected to Cassandra notifications keyspace.")
	return &NotificationRepo{session: session}, nil
}

func (nr *NotificationRepo) CloseSession() {
	nr.session.Close()
	logging.Logger.Info("Event ID: CASS_SESSION_CLOSED, Description: Cassandra session closed.")
}

// CreateTable creates the notifications table, partitioned by user so a
// user's feed is one partition read, newest first.
func (nr *NotificationRepo) CreateTable() {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID,
			user_id TEXT,
			type TEXT,
			message TEXT,
			task_id TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((user_id), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: CASS_TABLE_FAILED, Description: Failed to create notifications table: %v", err)
	} else {
		logging.Logger.Info("Event ID: CASS_TABLE_READY, Description: Notifications table ready.")
	}
}

func (nr *NotificationRepo) Insert(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = gocql.TimeUUID().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	err := nr.session.Query(
		`INSERT INTO notifications (id, user_id, type, message, task_id, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		notification.ID, notification.UserID, string(notification.Type), notification.Message,
		notification.TaskID, notification.CreatedAt, notification.IsRead,
	).WithContext(ctx).Exec()
	if err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_INSERT_FAILED, Description: Failed to persist notification for user %s: %v", notification.UserID, err)
		return err
	}
	return nil
}

// FindForUser returns the user's notifications, newest first by clustering
// order.
func (nr *NotificationRepo) FindForUser(ctx context.Context, userID string) ([]models.Notification, error) {
	query := `SELECT id, user_id, type, message, task_id, created_at, is_read
			  FROM notifications WHERE user_id = ?`

	iter := nr.session.Query(query, userID).WithContext(ctx).Iter()
	var notifications []models.Notification
	var n models.Notification
	var ntype string

	for iter.Scan(&n.ID, &n.UserID, &ntype, &n.Message, &n.TaskID, &n.CreatedAt, &n.IsRead) {
		n.Type = models.NotificationType(ntype)
		notifications = append(notifications, n)
	}

	if err := iter.Close(); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_FETCH_FAILED, Description: Failed to fetch notifications for user %s: %v", userID, err)
		return nil, err
	}

	return notifications, nil
}

// MarkRead flips one notification to read. The lookup is scoped to the
// user's partition, so a notification belonging to someone else reads as
// not found.
func (nr *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	uuid, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return models.ErrNotificationNotFound
	}

	createdAt, found, err := nr.findClusteringKey(ctx, userID, uuid)
	if err != nil {
		return err
	}
	if !found {
		return models.ErrNotificationNotFound
	}

	query := `UPDATE notifications SET is_read = true WHERE user_id = ? AND created_at = ? AND id = ?`
	if err := nr.session.Query(query, userID, createdAt, uuid).WithContext(ctx).Exec(); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_MARK_READ_FAILED, Description: Failed to mark notification %s as read: %v", notificationID, err)
		return err
	}
	return nil
}

// MarkAllRead flips every unread notification of the user to read. Zero
// matching rows is a success.
func (nr *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	query := `SELECT id, created_at, is_read FROM notifications WHERE user_id = ?`
	iter := nr.session.Query(query, userID).WithContext(ctx).Iter()

	type key struct {
		id        gocql.UUID
		createdAt time.Time
	}
	var unread []key
	var id gocql.UUID
	var createdAt time.Time
	var isRead bool

	for iter.Scan(&id, &createdAt, &isRead) {
		if !isRead {
			unread = append(unread, key{id: id, createdAt: createdAt})
		}
	}
	if err := iter.Close(); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_MARK_ALL_FAILED, Description: Failed to scan notifications for user %s: %v", userID, err)
		return err
	}

	for _, k := range unread {
		update := `UPDATE notifications SET is_read = true WHERE user_id = ? AND created_at = ? AND id = ?`
		if err := nr.session.Query(update, userID, k.createdAt, k.id).WithContext(ctx).Exec(); err != nil {
			logging.Logger.Errorf("Event ID: NOTIFICATION_MARK_ALL_FAILED, Description: Failed to mark notification %s as read: %v", k.id, err)
			return err
		}
	}
	return nil
}

func (nr *NotificationRepo) findClusteringKey(ctx context.Context, userID string, id gocql.UUID) (time.Time, bool, error) {
	query := `SELECT id, created_at FROM notifications WHERE user_id = ?`
	iter := nr.session.Query(query, userID).WithContext(ctx).Iter()

	var rowID gocql.UUID
	var createdAt time.Time
	found := false
	var foundAt time.Time

	for iter.Scan(&rowID, &createdAt) {
		if rowID == id {
			found = true
			foundAt = createdAt
		}
	}
	if err := iter.Close(); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_LOOKUP_FAILED, Description: Failed to look up notification %s: %v", id, err)
		return time.Time{}, false, err
	}
	return foundAt, found, nil
}
