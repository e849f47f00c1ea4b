package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Mathu0718/online-todo-mathu/logging"
	"github.com/Mathu0718/online-todo-mathu/middleware"
	"github.com/Mathu0718/online-todo-mathu/services"
)

type AuthHandler struct {
	service *services.UserService
}

func NewAuthHandler(service *services.UserService) *AuthHandler {
	return &AuthHandler{service: service}
}

// ExternalLogin takes a verified external identity (the OAuth handshake
// happens upstream), upserts the user on first sight and returns a bearer
// token for the session.
func (h *AuthHandler) ExternalLogin(w http.ResponseWriter, r *http.Request) {
	var identity services.ExternalIdentity
	if err := json.NewDecoder(r.Body).Decode(&identity); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	user, token, err := h.service.ExternalLogin(r.Context(), identity)
	if err != nil {
		logging.Logger.Warnf("Event ID: EXTERNAL_LOGIN_FAILED, Description: External login rejected: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logging.Logger.Infof("Event ID: EXTERNAL_LOGIN, Description: User %s authenticated", user.ID.Hex())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"token": token,
	})
}

// CurrentUser returns the authenticated caller's profile.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.service.CurrentUser(r.Context(), callerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
