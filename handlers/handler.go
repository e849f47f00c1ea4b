package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Mathu0718/online-todo-mathu/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError maps the error taxonomy onto HTTP statuses. Forbidden
// responses keep the two distinct messages clients rely on; validation
// failures carry the full violation list.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": validationErr.Violations})
		return
	}

	var unknownEmails *models.UnknownEmailsError
	if errors.As(err, &unknownEmails) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{
			"message": unknownEmails.Error(),
			"emails":  unknownEmails.Emails,
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrCollaboratorsForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Only the owner can modify collaborators"})
	case errors.Is(err, models.ErrForbidden):
		writeJSON(w, http.StatusForbidden, map[string]string{"message": "Forbidden"})
	case errors.Is(err, models.ErrTaskNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
	case errors.Is(err, models.ErrNotificationNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Notification not found"})
	case errors.Is(err, models.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "User not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}
}
