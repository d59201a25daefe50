// Package storage defines the data-service contract the rest of the
// application talks to. Implementations live in the memory and sqlite
// subpackages; neither enforces authorization, that is the service
// layer's job.
package storage

import (
	"context"
	"errors"
	"time"

	"taskhub/internal/models"
)

// Sentinel errors surfaced to the boundary nearest the caller.
// ErrAuthFailed deliberately carries no sub-reason; unknown email and
// wrong credential are indistinguishable to avoid account enumeration.
var (
	ErrAuthFailed    = errors.New("invalid email or credential")
	ErrEmailTaken    = errors.New("email already registered")
	ErrInviteInvalid = errors.New("invalid invite code")
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("missing required fields")
)

// OrganizationType selects between creating a fresh organization and
// joining an existing one during registration.
type OrganizationType string

const (
	OrganizationNew  OrganizationType = "new"
	OrganizationJoin OrganizationType = "join"
)

// RegisterInput carries a registration request. InviteCode is required
// when Type is join; OrganizationName applies when Type is new.
type RegisterInput struct {
	Email            string
	Credential       string
	Name             string
	Type             OrganizationType
	OrganizationName string
	InviteCode       string
}

// TaskInput carries the fields for a new task. Status is caller
// supplied; implementations fall back to todo when it is absent or not
// a valid status.
type TaskInput struct {
	Title          string
	Description    string
	Status         models.TaskStatus
	Priority       models.TaskPriority
	Category       models.TaskCategory
	AssigneeID     string
	AssigneeName   string
	OrganizationID string
	DueDate        time.Time
}

// TaskPatch is a partial task update. Nil fields are left untouched;
// UpdatedAt is always refreshed regardless.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	Category    *models.TaskCategory
	DueDate     *time.Time
}

// Store is the full data-service surface.
type Store interface {
	// Authenticate returns the account matching email and credential,
	// or ErrAuthFailed on any mismatch.
	Authenticate(ctx context.Context, email, credential string) (models.User, error)

	// CreateAccount registers a new user and either creates a fresh
	// organization (registrant becomes admin and sole member) or joins
	// one by invite code (registrant becomes member). Fails with
	// ErrEmailTaken or ErrInviteInvalid.
	CreateAccount(ctx context.Context, input RegisterInput) (models.User, error)

	GetUser(ctx context.Context, id string) (models.User, error)
	GetOrganization(ctx context.Context, id string) (models.Organization, error)
	ListMembers(ctx context.Context, orgID string) ([]models.User, error)
	UpdateMemberRole(ctx context.Context, orgID, userID string, role models.Role) (models.User, error)
	RemoveMember(ctx context.Context, orgID, userID string) error
	CreateInvitation(ctx context.Context, orgID, email string, role models.Role) (models.Invitation, error)

	CreateTask(ctx context.Context, input TaskInput) (models.Task, error)
	GetTask(ctx context.Context, id string) (models.Task, error)
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
	TasksByOrganization(ctx context.Context, orgID string) ([]models.Task, error)
	TasksByAssignee(ctx context.Context, assigneeID string) ([]models.Task, error)

	// SweepExpired moves every overdue, non-terminal task to expired
	// and returns how many it touched. Idempotent.
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}
