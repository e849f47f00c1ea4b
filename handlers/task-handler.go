package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Mathu0718/online-todo-mathu/logging"
	"github.com/Mathu0718/online-todo-mathu/middleware"
	"github.com/Mathu0718/online-todo-mathu/models"
	"github.com/Mathu0718/online-todo-mathu/services"

	"github.com/gorilla/mux"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// GetTasks lists every task the caller owns or collaborates on.
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	tasks, err := h.service.ListTasks(r.Context(), callerID)
	if err != nil {
		logging.Logger.Errorf("Event ID: TASK_LIST_FAILED, Description: Failed to list tasks for user %s: %v", callerID.Hex(), err)
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	task, err := h.service.GetTask(r.Context(), callerID, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload models.TaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	task, err := h.service.CreateTask(r.Context(), callerID, &payload)
	if err != nil {
		logging.Logger.Warnf("Event ID: TASK_CREATE_REJECTED, Description: Create by user %s rejected: %v", callerID.Hex(), err)
		writeServiceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created by user %s", task.ID.Hex(), callerID.Hex())
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload models.TaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	taskID := mux.Vars(r)["id"]
	task, err := h.service.UpdateTask(r.Context(), callerID, taskID, &payload)
	if err != nil {
		logging.Logger.Warnf("Event ID: TASK_UPDATE_REJECTED, Description: Update of task %s by user %s rejected: %v", taskID, callerID.Hex(), err)
		writeServiceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: TASK_UPDATED, Description: Task %s updated by user %s", taskID, callerID.Hex())
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	taskID := mux.Vars(r)["id"]
	if err := h.service.DeleteTask(r.Context(), callerID, taskID); err != nil {
		logging.Logger.Warnf("Event ID: TASK_DELETE_REJECTED, Description: Delete of task %s by user %s rejected: %v", taskID, callerID.Hex(), err)
		writeServiceError(w, err)
		return
	}

	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted by user %s", taskID, callerID.Hex())
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted"})
}
