package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/denysvitali/postlog-dashboard/internal/models"
	"github.com/denysvitali/postlog-dashboard/pkg/backend"
	"github.com/denysvitali/postlog-dashboard/pkg/metrics"
	"github.com/denysvitali/postlog-dashboard/pkg/session"
)

const accessTokenParam = "access_token"

// handleIndex is the landing page of logged out users
func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Login to Postlog",
		"login_url": "/login",
	})
}

// handleLogin sends the browser to the backend's OAuth entry point
func (s *Server) handleLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, s.config.Backend.LoginURL)
}

// handleCallback receives the access token issued by the OAuth flow, checks it
// against the backend and stores it in the session cookie.
func (s *Server) handleCallback(c *gin.Context) {
	token := c.Query(accessTokenParam)
	if token == "" {
		metrics.RecordLogin(false)
		c.JSON(http.StatusBadRequest, gin.H{"error": "access_token query parameter is required"})
		return
	}
	s.login(c, token)
}

func (s *Server) login(c *gin.Context, token string) {
	creds := session.Credentials{AccessToken: token}
	user, err := s.backend.User(c.Request.Context(), creds)
	if err != nil {
		metrics.RecordLogin(false)
		s.respondBackendError(c, err)
		return
	}
	creds.Username = user.Username

	value, err := s.codec.Encode(creds)
	if err != nil {
		metrics.RecordLogin(false)
		s.logger.Errorf("Failed to encode session cookie: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	metrics.RecordLogin(true)
	s.setSessionCookie(c, value)
	s.logger.Infof("User %s logged in", user.Username)

	// The token never stays in the address bar
	c.Redirect(http.StatusFound, "/dashboard")
}

// handleDashboard returns the user and the accounts they can browse. A token
// in the query is stored first; without a session the browser is sent back to
// the landing page.
func (s *Server) handleDashboard(c *gin.Context) {
	if token := c.Query(accessTokenParam); token != "" {
		if _, err := s.credentials(c); err != nil {
			s.login(c, token)
			return
		}
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}

	creds, err := s.credentials(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	s.touch()

	user, accounts, err := s.loadAccounts(c.Request.Context(), creds)
	if err != nil {
		s.respondBackendError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DashboardResponse{
		User:     *user,
		Accounts: accounts,
	})
}

// loadAccounts fetches the user and their organizations concurrently. The
// user's own account comes first in the returned list.
func (s *Server) loadAccounts(ctx context.Context, creds session.Credentials) (*models.User, []models.Organization, error) {
	var (
		user *models.User
		orgs []models.Organization
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.backend.User(gctx, creds)
		return err
	})
	g.Go(func() error {
		var err error
		orgs, err = s.backend.Organizations(gctx, creds)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	description := "User Account"
	accounts := make([]models.Organization, 0, len(orgs)+1)
	accounts = append(accounts, models.Organization{
		Login:       user.Username,
		AvatarURL:   user.AvatarURL,
		Description: &description,
	})
	accounts = append(accounts, orgs...)
	return user, accounts, nil
}

// handleLogout drops the session cookie and every browse session of the user
func (s *Server) handleLogout(c *gin.Context) {
	if creds, err := s.credentials(c); err == nil {
		closed := s.store.CloseOwner(creds.Owner())
		metrics.SetBrowseSessions(s.store.Len())
		s.logger.Infof("User %s logged out, closed %d browse sessions", creds.Username, closed)
	}
	s.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

// requireSession rejects requests without a valid session cookie and stores
// the caller's credentials in the context.
func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		creds, err := s.credentials(c)
		if err != nil {
			if errors.Is(err, session.ErrInvalidCookie) {
				s.clearSessionCookie(c)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}
		s.touch()
		c.Set(credentialsKey, creds)
		c.Next()
	}
}

// credentials decodes the session cookie of the request
func (s *Server) credentials(c *gin.Context) (session.Credentials, error) {
	if creds, ok := c.Get(credentialsKey); ok {
		return creds.(session.Credentials), nil
	}
	value, err := c.Cookie(s.config.Server.CookieName)
	if err != nil {
		return session.Credentials{}, session.ErrNoCredentials
	}
	return s.codec.Decode(value)
}

// mustCredentials returns the credentials stored by requireSession
func mustCredentials(c *gin.Context) session.Credentials {
	return c.MustGet(credentialsKey).(session.Credentials)
}

func (s *Server) setSessionCookie(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.config.Server.CookieName, value, int(s.codec.TTL().Seconds()), "/", "", s.config.Server.SecureCookies, true)
}

func (s *Server) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.config.Server.CookieName, "", -1, "/", "", s.config.Server.SecureCookies, true)
}

// respondBackendError maps backend client errors to HTTP answers
func (s *Server) respondBackendError(c *gin.Context, err error) {
	_ = c.Error(err)

	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, session.ErrNoCredentials):
		s.clearSessionCookie(c)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access token rejected, please log in again"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "backend timed out"})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":          apiErr.Error(),
			"backend_status": apiErr.StatusCode,
		})
	case errors.Is(err, backend.ErrInvalidResponse):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend unavailable"})
	}
}
