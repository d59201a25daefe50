package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/internal/storage"
)

type loginRequest struct {
	Email      string `json:"email"`
	Credential string `json:"credential"`
}

type registerRequest struct {
	Email            string `json:"email"`
	Credential       string `json:"credential"`
	Name             string `json:"name"`
	OrganizationType string `json:"organization_type"`
	OrganizationName string `json:"organization_name"`
	InviteCode       string `json:"invite_code"`
}

// handleLogin authenticates and returns the user with a session token.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := s.auth.Login(c.Request.Context(), req.Email, req.Credential)
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user": user, "token": token})
}

// handleRegister creates an account plus a new or joined organization.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orgType := storage.OrganizationType(req.OrganizationType)
	if orgType != storage.OrganizationNew && orgType != storage.OrganizationJoin {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("organization_type must be %q or %q", storage.OrganizationNew, storage.OrganizationJoin)})
		return
	}

	user, token, err := s.auth.Register(c.Request.Context(), storage.RegisterInput{
		Email:            req.Email,
		Credential:       req.Credential,
		Name:             req.Name,
		Type:             orgType,
		OrganizationName: req.OrganizationName,
		InviteCode:       req.InviteCode,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"user": user, "token": token})
}

// handleLogout drops the session. Safe to call with a stale token.
func (s *Server) handleLogout(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		s.auth.Logout(token)
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "logged out"})
}
