package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denysvitali/postlog-dashboard/pkg/metrics"
)

func (s *Server) handleUser(c *gin.Context) {
	user, err := s.backend.User(c.Request.Context(), mustCredentials(c))
	if err != nil {
		s.respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleOrganizations(c *gin.Context) {
	orgs, err := s.backend.Organizations(c.Request.Context(), mustCredentials(c))
	if err != nil {
		s.respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, orgs)
}

// handleAccounts lists the user's own account followed by their organizations
func (s *Server) handleAccounts(c *gin.Context) {
	_, accounts, err := s.loadAccounts(c.Request.Context(), mustCredentials(c))
	if err != nil {
		s.respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// handleRepositories lists the repositories of ?account=, which defaults to
// the logged in user.
func (s *Server) handleRepositories(c *gin.Context) {
	creds := mustCredentials(c)
	account := c.DefaultQuery("account", creds.Username)
	if account == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account query parameter is required"})
		return
	}

	repos, err := s.backend.Repositories(c.Request.Context(), creds, account, creds.Username)
	if err != nil {
		s.respondBackendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account": account,
		"data":    repos,
	})
}

// handleDeleteCollection drops a generated collection so the repository can
// be submitted again.
func (s *Server) handleDeleteCollection(c *gin.Context) {
	account := c.Param("account")
	repo := c.Param("repo")

	err := s.backend.DeleteCollection(c.Request.Context(), mustCredentials(c), account, repo)
	metrics.RecordCollection("delete", err == nil)
	if err != nil {
		s.respondBackendError(c, err)
		return
	}

	s.logger.Infof("Deleted collection of %s/%s", account, repo)
	c.Status(http.StatusNoContent)
}
