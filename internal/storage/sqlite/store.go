// Package sqlite implements the storage contract on SQLite. It is the
// drop-in persistent replacement for the memory store; the policy and
// lifecycle packages are unaware of which one is running.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"taskhub/internal/models"
	"taskhub/internal/storage"
)

// Store wraps access to the SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open initializes the store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = slog.Default()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=ON", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS organizations (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            admin_id TEXT NOT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE COLLATE NOCASE,
            name TEXT NOT NULL,
            role TEXT NOT NULL,
            credential TEXT NOT NULL,
            organization_id TEXT NOT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(organization_id) REFERENCES organizations(id)
        );`,
		`CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'todo',
            priority TEXT NOT NULL DEFAULT 'medium',
            category TEXT NOT NULL DEFAULT 'feature',
            assignee_id TEXT NOT NULL,
            assignee_name TEXT NOT NULL,
            organization_id TEXT NOT NULL,
            due_date DATETIME,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            FOREIGN KEY(organization_id) REFERENCES organizations(id)
        );`,
		`CREATE TABLE IF NOT EXISTS invitations (
            id TEXT PRIMARY KEY,
            email TEXT NOT NULL,
            organization_id TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            FOREIGN KEY(organization_id) REFERENCES organizations(id)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_org ON tasks(organization_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(status, due_date);`,
		`CREATE INDEX IF NOT EXISTS idx_users_org ON users(organization_id);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

const userColumns = `u.id, u.email, u.name, u.role, u.credential, u.organization_id, o.name`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Credential, &u.OrganizationID, &u.OrganizationName)
	return u, err
}

// Authenticate matches email and credential; any mismatch collapses
// into ErrAuthFailed.
func (s *Store) Authenticate(ctx context.Context, email, credential string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+`
        FROM users u JOIN organizations o ON o.id = u.organization_id
        WHERE u.email = ? AND u.credential = ?`, email, credential)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, storage.ErrAuthFailed
	}
	if err != nil {
		return models.User{}, fmt.Errorf("authenticate: %w", err)
	}
	return u, nil
}

// CreateAccount registers a user, creating or joining an organization
// inside one transaction.
func (s *Store) CreateAccount(ctx context.Context, input storage.RegisterInput) (models.User, error) {
	if input.Email == "" || input.Credential == "" || input.Name == "" {
		return models.User{}, storage.ErrValidation
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = ?`, input.Email).Scan(&exists); err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return models.User{}, storage.ErrEmailTaken
	}

	userID := uuid.NewString()
	role := models.RoleMember
	var orgID, orgName string

	switch input.Type {
	case storage.OrganizationNew:
		role = models.RoleAdmin
		orgID = uuid.NewString()
		orgName = input.OrganizationName
		if orgName == "" {
			orgName = "My Organization"
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO organizations(id, name, admin_id) VALUES(?, ?, ?)`, orgID, orgName, userID); err != nil {
			return models.User{}, fmt.Errorf("insert organization: %w", err)
		}
	case storage.OrganizationJoin:
		// The invite code is the organization id.
		err := tx.QueryRowContext(ctx, `SELECT id, name FROM organizations WHERE id = ?`, input.InviteCode).Scan(&orgID, &orgName)
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, storage.ErrInviteInvalid
		}
		if err != nil {
			return models.User{}, fmt.Errorf("resolve invite: %w", err)
		}
	default:
		return models.User{}, storage.ErrValidation
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users(id, email, name, role, credential, organization_id) VALUES(?, ?, ?, ?, ?, ?)`,
		userID, input.Email, input.Name, role, input.Credential, orgID); err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, fmt.Errorf("commit: %w", err)
	}

	return models.User{
		ID:               userID,
		Email:            input.Email,
		Name:             input.Name,
		Role:             role,
		OrganizationID:   orgID,
		OrganizationName: orgName,
		Credential:       input.Credential,
	}, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+`
        FROM users u JOIN organizations o ON o.id = u.organization_id
        WHERE u.id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, storage.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Store) GetOrganization(ctx context.Context, id string) (models.Organization, error) {
	var org models.Organization
	err := s.db.QueryRowContext(ctx, `SELECT id, name, admin_id, created_at FROM organizations WHERE id = ?`, id).
		Scan(&org.ID, &org.Name, &org.AdminID, &org.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Organization{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Organization{}, fmt.Errorf("get organization: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM users WHERE organization_id = ? ORDER BY rowid`, id)
	if err != nil {
		return models.Organization{}, fmt.Errorf("list member ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var memberID string
		if err := rows.Scan(&memberID); err != nil {
			return models.Organization{}, fmt.Errorf("scan member id: %w", err)
		}
		org.Members = append(org.Members, memberID)
	}
	return org, rows.Err()
}

// ListMembers returns the organization's users in join order.
func (s *Store) ListMembers(ctx context.Context, orgID string) ([]models.User, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM organizations WHERE id = ?`, orgID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check organization: %w", err)
	}
	if exists == 0 {
		return nil, storage.ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+`
        FROM users u JOIN organizations o ON o.id = u.organization_id
        WHERE u.organization_id = ? ORDER BY u.rowid`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, u)
	}
	return members, rows.Err()
}

func (s *Store) UpdateMemberRole(ctx context.Context, orgID, userID string, role models.Role) (models.User, error) {
	if _, ok := models.ValidRoles[role]; !ok {
		return models.User{}, storage.ErrValidation
	}

	res, err := s.db.ExecContext(ctx, `UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ? AND organization_id = ?`, role, userID, orgID)
	if err != nil {
		return models.User{}, fmt.Errorf("update role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.User{}, err
	}
	if affected == 0 {
		return models.User{}, storage.ErrNotFound
	}
	return s.GetUser(ctx, userID)
}

func (s *Store) RemoveMember(ctx context.Context, orgID, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ? AND organization_id = ?`, userID, orgID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) CreateInvitation(ctx context.Context, orgID, email string, role models.Role) (models.Invitation, error) {
	if email == "" {
		return models.Invitation{}, storage.ErrValidation
	}
	if _, ok := models.ValidRoles[role]; !ok {
		role = models.RoleMember
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM organizations WHERE id = ?`, orgID).Scan(&exists); err != nil {
		return models.Invitation{}, fmt.Errorf("check organization: %w", err)
	}
	if exists == 0 {
		return models.Invitation{}, storage.ErrNotFound
	}

	inv := models.Invitation{
		ID:             uuid.NewString(),
		Email:          email,
		OrganizationID: orgID,
		Role:           role,
		CreatedAt:      time.Now(),
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO invitations(id, email, organization_id, role, created_at) VALUES(?, ?, ?, ?, ?)`,
		inv.ID, inv.Email, inv.OrganizationID, inv.Role, inv.CreatedAt); err != nil {
		return models.Invitation{}, fmt.Errorf("insert invitation: %w", err)
	}
	return inv, nil
}

const taskColumns = `id, title, description, status, priority, category, assignee_id, assignee_name, organization_id, due_date, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (models.Task, error) {
	var t models.Task
	var due sql.NullTime
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.Category,
		&t.AssigneeID, &t.AssigneeName, &t.OrganizationID, &due, &t.CreatedAt, &t.UpdatedAt)
	if due.Valid {
		t.DueDate = due.Time
	}
	return t, err
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// CreateTask inserts a task, assigning id and timestamps. Unknown enum
// values fall back to their defaults rather than failing.
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

	now := time.Now()
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks(`+taskColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, strings.TrimSpace(input.Title), strings.TrimSpace(input.Description), input.Status, input.Priority, input.Category,
		input.AssigneeID, input.AssigneeName, input.OrganizationID, nullableTime(input.DueDate), now, now)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(ctx, id)
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id string) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// UpdateTask merges the patch into the task and refreshes updated_at.
// Invalid enum values in the patch are ignored, matching the create
// fallback behavior.
func (s *Store) UpdateTask(ctx context.Context, id string, patch storage.TaskPatch) (models.Task, error) {
	current, err := s.GetTask(ctx, id)
	if err != nil {
		return models.Task{}, err
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) != "" {
		current.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		current.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		if _, ok := models.ValidTaskStatuses[*patch.Status]; ok {
			current.Status = *patch.Status
		}
	}
	if patch.Priority != nil {
		if _, ok := models.ValidTaskPriorities[*patch.Priority]; ok {
			current.Priority = *patch.Priority
		}
	}
	if patch.Category != nil {
		if _, ok := models.ValidTaskCategories[*patch.Category]; ok {
			current.Category = *patch.Category
		}
	}
	if patch.DueDate != nil {
		current.DueDate = *patch.DueDate
	}

	_, err = s.db.ExecContext(ctx, `UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, category = ?, due_date = ?, updated_at = ? WHERE id = ?`,
		current.Title, current.Description, current.Status, current.Priority, current.Category, nullableTime(current.DueDate), time.Now(), id)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// TasksByOrganization returns the tenant's tasks in insertion order.
func (s *Store) TasksByOrganization(ctx context.Context, orgID string) ([]models.Task, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE organization_id = ? ORDER BY rowid`, orgID)
}

// TasksByAssignee returns the user's tasks in insertion order.
func (s *Store) TasksByAssignee(ctx context.Context, assigneeID string) ([]models.Task, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE assignee_id = ? ORDER BY rowid`, assigneeID)
}

// SweepExpired promotes every overdue non-terminal task to expired in
// a single statement.
func (s *Store) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET status = ?, updated_at = ?
        WHERE due_date IS NOT NULL AND due_date < ? AND status NOT IN (?, ?)`,
		models.StatusExpired, now, now, models.StatusCompleted, models.StatusExpired)
	if err != nil {
		return 0, fmt.Errorf("sweep expired: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}
