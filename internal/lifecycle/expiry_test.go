package lifecycle

import (
	"testing"
	"time"

	"taskhub/internal/models"
)

func TestShouldExpire(t *testing.T) {
	now := time.Now()
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	cases := []struct {
		name string
		task models.Task
		want bool
	}{
		{"past due todo", models.Task{Status: models.StatusTodo, DueDate: past}, true},
		{"past due in-progress", models.Task{Status: models.StatusInProgress, DueDate: past}, true},
		{"past due completed stays", models.Task{Status: models.StatusCompleted, DueDate: past}, false},
		{"already expired stays", models.Task{Status: models.StatusExpired, DueDate: past}, false},
		{"future due date", models.Task{Status: models.StatusTodo, DueDate: future}, false},
		{"zero due date never expires", models.Task{Status: models.StatusTodo}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldExpire(tc.task, now); got != tc.want {
				t.Errorf("ShouldExpire = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	manual := []models.TaskStatus{models.StatusTodo, models.StatusInProgress, models.StatusCompleted}

	t.Run("any direction between manual statuses", func(t *testing.T) {
		for _, from := range manual {
			for _, to := range manual {
				if !CanTransition(from, to) {
					t.Errorf("transition %s -> %s should be allowed", from, to)
				}
			}
		}
	})

	t.Run("expired is never settable by hand", func(t *testing.T) {
		for _, from := range manual {
			if CanTransition(from, models.StatusExpired) {
				t.Errorf("transition %s -> expired must be denied", from)
			}
		}
	})

	t.Run("reopening an expired task is allowed", func(t *testing.T) {
		if !CanTransition(models.StatusExpired, models.StatusInProgress) {
			t.Error("expired -> in-progress should be allowed")
		}
	})

	t.Run("garbage target denied", func(t *testing.T) {
		if CanTransition(models.StatusTodo, models.TaskStatus("archived")) {
			t.Error("unknown status must be denied")
		}
	})
}

func TestOverdueIsDerivedNotStored(t *testing.T) {
	now := time.Now()
	task := models.Task{Status: models.StatusTodo, DueDate: now.Add(-time.Hour)}

	if !task.Overdue(now) {
		t.Fatal("past-due todo task should read as overdue")
	}

	task.Status = models.StatusExpired
	if task.Overdue(now) {
		t.Fatal("expired task must not read as overdue")
	}
}
