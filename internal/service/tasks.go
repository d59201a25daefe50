package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskhub/internal/auth"
	"taskhub/internal/lifecycle"
	"taskhub/internal/models"
	"taskhub/internal/storage"
)

// TaskService is the role-gated surface over the task store.
type TaskService struct {
	store  storage.Store
	logger *slog.Logger
}

func NewTaskService(store storage.Store, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{store: store, logger: logger}
}

// CreateTaskInput is what a caller provides; tenant and assignee name
// are resolved here.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	Category    models.TaskCategory
	AssigneeID  string
	DueDate     time.Time
}

// List returns the actor's visible tasks: the whole tenant for admins
// and managers, own assignments for members. An optional status filter
// narrows the result.
func (s *TaskService) List(ctx context.Context, actor models.User, status models.TaskStatus) ([]models.Task, error) {
	tasks, err := s.store.TasksByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks = auth.VisibleTasks(actor, tasks)
	if status == "" {
		return tasks, nil
	}
	filtered := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Status == status {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

// Create makes a new task in the actor's organization. The assignee
// must belong to the same organization; tasks never cross tenant
// boundaries.
func (s *TaskService) Create(ctx context.Context, actor models.User, input CreateTaskInput) (models.Task, error) {
	if !auth.CanCreateTask(actor.Role) {
		return models.Task{}, ErrForbidden
	}

	assignee, err := s.store.GetUser(ctx, input.AssigneeID)
	if err != nil {
		return models.Task{}, fmt.Errorf("%w: unknown assignee", storage.ErrValidation)
	}
	if assignee.OrganizationID != actor.OrganizationID {
		return models.Task{}, fmt.Errorf("%w: assignee outside organization", storage.ErrValidation)
	}

	task, err := s.store.CreateTask(ctx, storage.TaskInput{
		Title:          input.Title,
		Description:    input.Description,
		Status:         input.Status,
		Priority:       input.Priority,
		Category:       input.Category,
		AssigneeID:     assignee.ID,
		AssigneeName:   assignee.Name,
		OrganizationID: actor.OrganizationID,
		DueDate:        input.DueDate,
	})
	if err != nil {
		return models.Task{}, err
	}
	s.logger.Info("task created",
		slog.String("task_id", task.ID),
		slog.String("organization_id", task.OrganizationID),
		slog.String("assignee_id", task.AssigneeID))
	return task, nil
}

// UpdateStatus applies a manual status change. Members may only move
// their own tasks, and nobody may set expired by hand.
func (s *TaskService) UpdateStatus(ctx context.Context, actor models.User, taskID string, status models.TaskStatus) (models.Task, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return models.Task{}, err
	}
	// Cross-tenant ids look like stale ids, not like denials.
	if task.OrganizationID != actor.OrganizationID {
		return models.Task{}, storage.ErrNotFound
	}
	if !auth.CanChangeStatus(actor.Role, task, actor.ID) {
		return models.Task{}, ErrForbidden
	}
	if !lifecycle.CanTransition(task.Status, status) {
		return models.Task{}, fmt.Errorf("%w: status %q cannot be set directly", storage.ErrValidation, status)
	}
	return s.store.UpdateTask(ctx, taskID, storage.TaskPatch{Status: &status})
}

// Delete removes a task. Members are denied even for their own
// assignments.
func (s *TaskService) Delete(ctx context.Context, actor models.User, taskID string) error {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.OrganizationID != actor.OrganizationID {
		return storage.ErrNotFound
	}
	if !auth.CanDeleteTask(actor.Role) {
		return ErrForbidden
	}
	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	s.logger.Info("task deleted", slog.String("task_id", taskID), slog.String("actor_id", actor.ID))
	return nil
}
