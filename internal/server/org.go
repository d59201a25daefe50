package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/internal/models"
)

type inviteRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

// handleListMembers returns the members of the current user's
// organization in membership order.
func (s *Server) handleListMembers(c *gin.Context) {
	members, err := s.org.Members(c.Request.Context(), currentUser(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"members": members})
}

// handleInviteMember records an invitation to the organization.
func (s *Server) handleInviteMember(c *gin.Context) {
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := s.org.Invite(c.Request.Context(), currentUser(c), req.Email, models.Role(req.Role))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"invitation": inv})
}

// handleChangeMemberRole updates another member's role.
func (s *Server) handleChangeMemberRole(c *gin.Context) {
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := s.org.ChangeRole(c.Request.Context(), currentUser(c), c.Param("id"), models.Role(req.Role))
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"member": member})
}

// handleRemoveMember removes a member from the organization.
func (s *Server) handleRemoveMember(c *gin.Context) {
	if err := s.org.Remove(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "removed"})
}
