package service

import (
	"context"
	"log/slog"

	"taskhub/internal/auth"
	"taskhub/internal/models"
	"taskhub/internal/session"
	"taskhub/internal/storage"
)

// OrgService covers membership management inside the actor's own
// organization.
type OrgService struct {
	store    storage.Store
	sessions *session.Manager
	logger   *slog.Logger
}

func NewOrgService(store storage.Store, sessions *session.Manager, logger *slog.Logger) *OrgService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrgService{store: store, sessions: sessions, logger: logger}
}

// Members lists the actor's organization. Every role may read the
// list; managers need it to pick assignees.
func (s *OrgService) Members(ctx context.Context, actor models.User) ([]models.User, error) {
	return s.store.ListMembers(ctx, actor.OrganizationID)
}

// Invite records an invitation to the actor's organization.
func (s *OrgService) Invite(ctx context.Context, actor models.User, email string, role models.Role) (models.Invitation, error) {
	if !auth.CanManageMembers(actor.Role) {
		return models.Invitation{}, ErrForbidden
	}
	inv, err := s.store.CreateInvitation(ctx, actor.OrganizationID, email, role)
	if err != nil {
		return models.Invitation{}, err
	}
	s.logger.Info("invitation created",
		slog.String("organization_id", inv.OrganizationID),
		slog.String("email", inv.Email),
		slog.String("role", string(inv.Role)))
	return inv, nil
}

// ChangeRole updates a member's role. Admins may not change their own
// role. Active sessions of the target pick up the new role.
func (s *OrgService) ChangeRole(ctx context.Context, actor models.User, targetID string, role models.Role) (models.User, error) {
	if !auth.CanModifyMember(actor, targetID) {
		return models.User{}, ErrForbidden
	}
	updated, err := s.store.UpdateMemberRole(ctx, actor.OrganizationID, targetID, role)
	if err != nil {
		return models.User{}, err
	}
	s.sessions.Update(updated)
	return updated, nil
}

// Remove drops a member from the organization and revokes their
// sessions. Admins may not remove themselves.
func (s *OrgService) Remove(ctx context.Context, actor models.User, targetID string) error {
	if !auth.CanModifyMember(actor, targetID) {
		return ErrForbidden
	}
	if err := s.store.RemoveMember(ctx, actor.OrganizationID, targetID); err != nil {
		return err
	}
	s.sessions.RevokeUser(targetID)
	s.logger.Info("member removed",
		slog.String("organization_id", actor.OrganizationID),
		slog.String("member_id", targetID))
	return nil
}
