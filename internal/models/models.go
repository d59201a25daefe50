package models

import "time"

// Role controls what a user may do inside their organization.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// ValidRoles enumerates the roles an account can hold.
var ValidRoles = map[Role]struct{}{
	RoleAdmin:   {},
	RoleManager: {},
	RoleMember:  {},
}

// TaskStatus is a column on the board. Expired is set only by the sweep,
// never by a user-facing status change.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusExpired    TaskStatus = "expired"
)

// ValidTaskStatuses enumerates all storable statuses.
var ValidTaskStatuses = map[TaskStatus]struct{}{
	StatusTodo:       {},
	StatusInProgress: {},
	StatusCompleted:  {},
	StatusExpired:    {},
}

// ManualTaskStatuses enumerates statuses a user may set directly.
var ManualTaskStatuses = map[TaskStatus]struct{}{
	StatusTodo:       {},
	StatusInProgress: {},
	StatusCompleted:  {},
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

var ValidTaskPriorities = map[TaskPriority]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
}

type TaskCategory string

const (
	CategoryBug         TaskCategory = "bug"
	CategoryFeature     TaskCategory = "feature"
	CategoryImprovement TaskCategory = "improvement"
)

var ValidTaskCategories = map[TaskCategory]struct{}{
	CategoryBug:         {},
	CategoryFeature:     {},
	CategoryImprovement: {},
}

// User is an account bound to exactly one organization.
type User struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             Role   `json:"role"`
	OrganizationID   string `json:"organization_id"`
	OrganizationName string `json:"organization_name"`
	Credential       string `json:"-"`
}

// Organization is the tenant boundary for task visibility.
// AdminID is always present in Members.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	AdminID   string    `json:"admin_id"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// Invitation records an outstanding offer to join an organization.
type Invitation struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	OrganizationID string    `json:"organization_id"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// Task represents a single card scoped to one organization.
type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	Category       TaskCategory `json:"category"`
	AssigneeID     string       `json:"assignee_id"`
	AssigneeName   string       `json:"assignee_name"`
	OrganizationID string       `json:"organization_id"`
	DueDate        time.Time    `json:"due_date"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Overdue reports whether the task is past due but not yet swept or
// completed. It is a display predicate computed on demand; a zero due
// date means the task is never due.
func (t Task) Overdue(now time.Time) bool {
	if t.DueDate.IsZero() {
		return false
	}
	if t.Status == StatusCompleted || t.Status == StatusExpired {
		return false
	}
	return t.DueDate.Before(now)
}
