// Package memory implements the storage contract with in-process
// state. It stands in for a real backend: a database-backed store can
// replace it without touching the policy or lifecycle code.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskhub/internal/lifecycle"
	"taskhub/internal/models"
	"taskhub/internal/storage"
)

// Store keeps users, organizations and tasks behind a single mutex.
// Mutations are synchronous and run to completion, so the sweep and
// user-triggered updates interleave with last-write-wins semantics on
// status and updated_at.
type Store struct {
	mu          sync.Mutex
	users       map[string]models.User
	orgs        map[string]models.Organization
	tasks       []models.Task
	invitations []models.Invitation
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users: make(map[string]models.User),
		orgs:  make(map[string]models.Organization),
	}
}

// Seed loads the demo fixtures: one organization with an admin, a
// manager and a member, plus three tasks in different states.
func (s *Store) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	org := models.Organization{
		ID:        "org1",
		Name:      "TechCorp Inc",
		AdminID:   "1",
		Members:   []string{"1", "2", "3"},
		CreatedAt: now,
	}
	s.orgs[org.ID] = org

	seedUsers := []models.User{
		{ID: "1", Email: "admin@company.com", Name: "John Admin", Role: models.RoleAdmin, OrganizationID: org.ID, OrganizationName: org.Name, Credential: "admin123"},
		{ID: "2", Email: "manager@company.com", Name: "Sarah Manager", Role: models.RoleManager, OrganizationID: org.ID, OrganizationName: org.Name, Credential: "manager123"},
		{ID: "3", Email: "member@company.com", Name: "Mike Member", Role: models.RoleMember, OrganizationID: org.ID, OrganizationName: org.Name, Credential: "member123"},
	}
	for _, u := range seedUsers {
		s.users[u.ID] = u
	}

	s.tasks = []models.Task{
		{
			ID: "1", Title: "Fix login bug",
			Description: "Users are unable to login with special characters in password",
			Status: models.StatusTodo, Priority: models.PriorityHigh, Category: models.CategoryBug,
			AssigneeID: "3", AssigneeName: "Mike Member", OrganizationID: org.ID,
			DueDate: now.Add(7 * 24 * time.Hour), CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "2", Title: "Implement dark mode",
			Description: "Add dark mode toggle to the application",
			Status: models.StatusInProgress, Priority: models.PriorityMedium, Category: models.CategoryFeature,
			AssigneeID: "2", AssigneeName: "Sarah Manager", OrganizationID: org.ID,
			DueDate: now.Add(14 * 24 * time.Hour), CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "3", Title: "Optimize database queries",
			Description: "Improve performance of user dashboard queries",
			Status: models.StatusCompleted, Priority: models.PriorityMedium, Category: models.CategoryImprovement,
			AssigneeID: "1", AssigneeName: "John Admin", OrganizationID: org.ID,
			DueDate: now.Add(-2 * 24 * time.Hour), CreatedAt: now, UpdatedAt: now,
		},
	}
}

// Authenticate matches email and credential against known accounts.
// Any mismatch collapses into ErrAuthFailed.
func (s *Store) Authenticate(ctx context.Context, email, credential string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) && u.Credential == credential {
			return u, nil
		}
	}
	return models.User{}, storage.ErrAuthFailed
}

// CreateAccount registers a user, creating or joining an organization.
func (s *Store) CreateAccount(ctx context.Context, input storage.RegisterInput) (models.User, error) {
	if input.Email == "" || input.Credential == "" || input.Name == "" {
		return models.User{}, storage.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, input.Email) {
			return models.User{}, storage.ErrEmailTaken
		}
	}

	userID := uuid.NewString()

	var org models.Organization
	switch input.Type {
	case storage.OrganizationNew:
		name := input.OrganizationName
		if name == "" {
			name = "My Organization"
		}
		org = models.Organization{
			ID:        uuid.NewString(),
			Name:      name,
			AdminID:   userID,
			Members:   []string{userID},
			CreatedAt: time.Now(),
		}
		s.orgs[org.ID] = org
	case storage.OrganizationJoin:
		// The invite code is the organization id.
		existing, ok := s.orgs[input.InviteCode]
		if !ok {
			return models.User{}, storage.ErrInviteInvalid
		}
		existing.Members = append(existing.Members, userID)
		s.orgs[existing.ID] = existing
		org = existing
	default:
		return models.User{}, storage.ErrValidation
	}

	role := models.RoleMember
	if input.Type == storage.OrganizationNew {
		role = models.RoleAdmin
	}

	user := models.User{
		ID:               userID,
		Email:            input.Email,
		Name:             input.Name,
		Role:             role,
		OrganizationID:   org.ID,
		OrganizationName: org.Name,
		Credential:       input.Credential,
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetOrganization(ctx context.Context, id string) (models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	org, ok := s.orgs[id]
	if !ok {
		return models.Organization{}, storage.ErrNotFound
	}
	return org, nil
}

// ListMembers returns the organization's users in membership order.
func (s *Store) ListMembers(ctx context.Context, orgID string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	org, ok := s.orgs[orgID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	members := make([]models.User, 0, len(org.Members))
	for _, id := range org.Members {
		if u, ok := s.users[id]; ok {
			members = append(members, u)
		}
	}
	return members, nil
}

func (s *Store) UpdateMemberRole(ctx context.Context, orgID, userID string, role models.Role) (models.User, error) {
	if _, ok := models.ValidRoles[role]; !ok {
		return models.User{}, storage.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.OrganizationID != orgID {
		return models.User{}, storage.ErrNotFound
	}
	u.Role = role
	s.users[userID] = u
	return u, nil
}

func (s *Store) RemoveMember(ctx context.Context, orgID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok || u.OrganizationID != orgID {
		return storage.ErrNotFound
	}
	org, ok := s.orgs[orgID]
	if !ok {
		return storage.ErrNotFound
	}
	kept := org.Members[:0]
	for _, id := range org.Members {
		if id != userID {
			kept = append(kept, id)
		}
	}
	org.Members = kept
	s.orgs[orgID] = org
	delete(s.users, userID)
	return nil
}

func (s *Store) CreateInvitation(ctx context.Context, orgID, email string, role models.Role) (models.Invitation, error) {
	if email == "" {
		return models.Invitation{}, storage.ErrValidation
	}
	if _, ok := models.ValidRoles[role]; !ok {
		role = models.RoleMember
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orgs[orgID]; !ok {
		return models.Invitation{}, storage.ErrNotFound
	}
	inv := models.Invitation{
		ID:             uuid.NewString(),
		Email:          email,
		OrganizationID: orgID,
		Role:           role,
		CreatedAt:      time.Now(),
	}
	s.invitations = append(s.invitations, inv)
	return inv, nil
}

// CreateTask appends a task, assigning id and timestamps. Unknown
// enum values fall back to their defaults rather than failing.
func (s *Store) CreateTask(ctx context.Context, input storage.TaskInput) (models.Task, error) {
	if strings.TrimSpace(input.Title) == "" || input.AssigneeID == "" || input.OrganizationID == "" {
		return models.Task{}, storage.ErrValidation
	}
	if _, ok := models.ValidTaskStatuses[input.Status]; !ok {
		input.Status = models.StatusTodo
	}
	if _, ok := models.ValidTaskPriorities[input.Priority]; !ok {
		input.Priority = models.PriorityMedium
	}
	if _, ok := models.ValidTaskCategories[input.Category]; !ok {
		input.Category = models.CategoryFeature
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	task := models.Task{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(input.Title),
		Description:   strings.TrimSpace(input.Description),
		Status:   input.Status,
		Priority:       input.Priority,
		Category:       input.Category,
		AssigneeID:   input.AssigneeID,
		AssigneeName:   input.AssigneeName,
		OrganizationID: input.OrganizationID,
		DueDate:   input.DueDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.tasks = append(s.tasks, task)
	return task, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Task{}, storage.ErrNotFound
}

// UpdateTask merges the patch into the task and refreshes UpdatedAt.
// Invalid enum values in the patch are ignored, matching the create
// fallback behavior.
func (s *Store) UpdateTask(ctx context.Context, id string, patch storage.TaskPatch) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		t := &s.tasks[i]
		if patch.Title != nil && strings.TrimSpace(*patch.Title) != "" {
			t.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			t.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Status != nil {
			if _, ok := models.ValidTaskStatuses[*patch.Status]; ok {
				t.Status = *patch.Status
			}
		}
		if patch.Priority != nil {
			if _, ok := models.ValidTaskPriorities[*patch.Priority]; ok {
				t.Priority = *patch.Priority
			}
		}
		if patch.Category != nil {
			if _, ok := models.ValidTaskCategories[*patch.Category]; ok {
				t.Category = *patch.Category
			}
		}
		if patch.DueDate != nil {
			t.DueDate = *patch.DueDate
		}
		t.UpdatedAt = time.Now()
		return *t, nil
	}
	return models.Task{}, storage.ErrNotFound
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

// TasksByOrganization returns the tenant's tasks in insertion order.
func (s *Store) TasksByOrganization(ctx context.Context, orgID string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []models.Task
	for _, t := range s.tasks {
		if t.OrganizationID == orgID {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// TasksByAssignee returns the user's tasks in insertion order.
func (s *Store) TasksByAssignee(ctx context.Context, assigneeID string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tasks []models.Task
	for _, t := range s.tasks {
		if t.AssigneeID == assigneeID {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// SweepExpired promotes every overdue non-terminal task to expired.
func (s *Store) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for i := range s.tasks {
		if lifecycle.ShouldExpire(s.tasks[i], now) {
			s.tasks[i].Status = models.StatusExpired
			s.tasks[i].UpdatedAt = time.Now()
			expired++
		}
	}
	return expired, nil
}
