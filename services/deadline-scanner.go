package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Mathu0718/online-todo-mathu/logging"
	"github.com/Mathu0718/online-todo-mathu/models"
)

// DeadlineScanner periodically finds tasks due within the next hour whose
// stored status is still In Progress and sends a "deadline" reminder to the
// owner and every collaborator. A task that stays in the window across
// sweeps is reminded again on every sweep; there is no suppression.
type DeadlineScanner struct {
	tasks      TaskStore
	users      UserStore
	dispatcher Dispatcher
	interval   time.Duration
}

const deadlineHorizon = time.Hour

func NewDeadlineScanner(tasks TaskStore, users UserStore, dispatcher Dispatcher, interval time.Duration) *DeadlineScanner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &DeadlineScanner{tasks: tasks, users: users, dispatcher: dispatcher, interval: interval}
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *DeadlineScanner) Run(ctx context.Context) {
	logging.Logger.Infof("Event ID: SCANNER_STARTED, Description: Deadline scanner running every %s", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Logger.Info("Event ID: SCANNER_STOPPED, Description: Deadline scanner shutting down")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one scan. Eligibility checks stored status only, so a
// stale In Progress task already past due still fires while inside the
// window.
func (s *DeadlineScanner) Sweep(ctx context.Context) {
	now := time.Now()
	tasks, err := s.tasks.FindDueBetween(ctx, now, now.Add(deadlineHorizon), models.StatusInProgress)
	if err != nil {
		logging.Logger.Errorf("Event ID: SCANNER_QUERY_FAILED, Description: Failed to query soon-due tasks: %v", err)
		return
	}

	for _, task := range tasks {
		targets, err := s.users.FindByIDs(ctx, task.InvolvedIDs())
		if err != nil {
			logging.Logger.Errorf("Event ID: SCANNER_LOOKUP_FAILED, Description: Failed to load reminder targets for task %s: %v", task.ID.Hex(), err)
			continue
		}
		s.dispatcher.Notify(ctx, targets, models.NotificationDeadline,
			fmt.Sprintf("Task '%s' is due soon!", task.Title), task.ID.Hex())
	}
}
