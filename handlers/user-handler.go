package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Mathu0718/online-todo-mathu/middleware"
	"github.com/Mathu0718/online-todo-mathu/models"
	"github.com/Mathu0718/online-todo-mathu/services"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// GetUsersByEmails resolves a list of emails to users. Unknown emails are
// simply absent from the result; clients use this to build collaborator
// lists before submitting a task.
func (h *UserHandler) GetUsersByEmails(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.CallerID(r); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Emails []string `json:"emails"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Emails == nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	users, err := h.service.ResolveByEmails(r.Context(), req.Emails)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}
