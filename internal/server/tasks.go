package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskhub/internal/models"
	"taskhub/internal/service"
)

type createTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category"`
	AssigneeID  string     `json:"assignee_id"`
	DueDate     *time.Time `json:"due_date"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// taskView decorates a task with its derived overdue flag for display.
type taskView struct {
	models.Task
	Overdue bool `json:"overdue"`
}

func viewTasks(tasks []models.Task, now time.Time) []taskView {
	views := make([]taskView, len(tasks))
	for i, t := range tasks {
		views[i] = taskView{Task: t, Overdue: t.Overdue(now)}
	}
	return views
}

// handleListTasks fetches the tasks visible to the current user,
// optionally narrowed by the status query parameter.
func (s *Server) handleListTasks(c *gin.Context) {
	actor := currentUser(c)
	status := models.TaskStatus(c.Query("status"))

	tasks, err := s.tasks.List(c.Request.Context(), actor, status)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"tasks": viewTasks(tasks, time.Now())})
}

// handleCreateTask creates a task in the current user's organization.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    models.TaskPriority(req.Priority),
		Category:    models.TaskCategory(req.Category),
		AssigneeID:  req.AssigneeID,
	}
	if req.DueDate != nil {
		input.DueDate = *req.DueDate
	}

	task, err := s.tasks.Create(c.Request.Context(), currentUser(c), input)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": taskView{Task: task, Overdue: task.Overdue(time.Now())}})
}

// handleUpdateTaskStatus applies a manual status transition.
func (s *Server) handleUpdateTaskStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.tasks.UpdateStatus(c.Request.Context(), currentUser(c), c.Param("id"), models.TaskStatus(req.Status))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": taskView{Task: task, Overdue: task.Overdue(time.Now())}})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.tasks.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
