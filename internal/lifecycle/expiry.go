// Package lifecycle holds the task status transition rules and the
// recurring sweep that promotes overdue tasks to expired.
package lifecycle

import (
	"time"

	"taskhub/internal/models"
)

// ShouldExpire reports whether the sweep must move the task to expired.
// Completed and already-expired tasks are terminal; a zero due date
// means the task is never due, so the sweep stays total and never
// errors on missing dates.
func ShouldExpire(task models.Task, now time.Time) bool {
	if task.DueDate.IsZero() {
		return false
	}
	if task.Status == models.StatusCompleted || task.Status == models.StatusExpired {
		return false
	}
	return task.DueDate.Before(now)
}

// CanTransition reports whether a user-initiated status change is
// allowed. Any direction between the manual statuses is fine; expired
// is reserved for the sweep and can never be set by hand.
func CanTransition(from, to models.TaskStatus) bool {
	if _, ok := models.ManualTaskStatuses[to]; !ok {
		return false
	}
	_, ok := models.ValidTaskStatuses[from]
	return ok
}
