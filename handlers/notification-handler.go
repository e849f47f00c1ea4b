package handlers

import (
	"net/http"

	"github.com/Mathu0718/online-todo-mathu/logging"
	"github.com/Mathu0718/online-todo-mathu/middleware"
	"github.com/Mathu0718/online-todo-mathu/models"
	"github.com/Mathu0718/online-todo-mathu/services"

	"github.com/gorilla/mux"
)

type NotificationHandler struct {
	service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetNotifications returns the caller's notifications, newest first.
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notifications, err := h.service.ListNotifications(r.Context(), callerID.Hex())
	if err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_LIST_FAILED, Description: Failed to fetch notifications for user %s: %v", callerID.Hex(), err)
		writeServiceError(w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// MarkRead marks one notification as read. A notification owned by someone
// else reads as not found.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notificationID := mux.Vars(r)["id"]
	if err := h.service.MarkRead(r.Context(), callerID.Hex(), notificationID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

// MarkAllRead marks every unread notification of the caller as read and
// succeeds even when there is none.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.service.MarkAllRead(r.Context(), callerID.Hex()); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_MARK_ALL_FAILED, Description: Failed to mark all read for user %s: %v", callerID.Hex(), err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}
