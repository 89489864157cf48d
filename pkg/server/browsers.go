package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/denysvitali/postlog-dashboard/internal/models"
	"github.com/denysvitali/postlog-dashboard/pkg/filetree"
	"github.com/denysvitali/postlog-dashboard/pkg/metrics"
	"github.com/denysvitali/postlog-dashboard/pkg/session"
	"github.com/denysvitali/postlog-dashboard/pkg/telemetry"
)

// handleOpenBrowser fetches the file list of a repository branch and opens a
// browsing session over it. Everything starts collapsed and unselected.
func (s *Server) handleOpenBrowser(c *gin.Context) {
	var req models.OpenBrowserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	creds := mustCredentials(c)
	files, err := s.backend.Files(c.Request.Context(), creds, req.Account, creds.Username, req.Repo, req.Branch)
	if err != nil {
		s.respondBackendError(c, err)
		return
	}

	browse := s.store.Open(creds.Owner(), session.Target{
		Account: req.Account,
		Repo:    req.Repo,
		Branch:  req.Branch,
	}, files)
	metrics.SetBrowseSessions(s.store.Len())

	var resp models.BrowserResponse
	_ = browse.Do(func(b *filetree.Browser) error {
		resp = browserResponse(browse, b)
		return nil
	})
	metrics.RecordTree(resp.Files, resp.Directories)

	telemetry.ReportEvent(c.Request.Context(), s.logger, "browser_opened", gin.H{
		"id":          browse.ID,
		"paths":       len(files),
		"files":       resp.Files,
		"directories": resp.Directories,
	})

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleGetBrowser(c *gin.Context) {
	browse, ok := s.browse(c)
	if !ok {
		return
	}

	var resp models.BrowserResponse
	_ = browse.Do(func(b *filetree.Browser) error {
		resp = browserResponse(browse, b)
		return nil
	})
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCloseBrowser(c *gin.Context) {
	if err := s.store.Close(c.Param("id"), mustCredentials(c).Owner()); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	metrics.SetBrowseSessions(s.store.Len())
	c.Status(http.StatusNoContent)
}

// handleToggleExpansion expands or collapses one directory
func (s *Server) handleToggleExpansion(c *gin.Context) {
	s.toggle(c, func(b *filetree.Browser, path string) (models.ToggleResponse, error) {
		expanded, err := b.ToggleExpansion(path)
		return models.ToggleResponse{Path: path, Value: expanded}, err
	})
}

// handleToggleSelection selects or deselects one file
func (s *Server) handleToggleSelection(c *gin.Context) {
	s.toggle(c, func(b *filetree.Browser, path string) (models.ToggleResponse, error) {
		selected, err := b.ToggleSelection(path)
		if err != nil {
			return models.ToggleResponse{}, err
		}
		return models.ToggleResponse{Path: path, Value: selected, Selected: b.Selected()}, nil
	})
}

func (s *Server) toggle(c *gin.Context, fn func(*filetree.Browser, string) (models.ToggleResponse, error)) {
	browse, ok := s.browse(c)
	if !ok {
		return
	}

	var req models.PathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var resp models.ToggleResponse
	err := browse.Do(func(b *filetree.Browser) error {
		var err error
		resp, err = fn(b, req.Path)
		return err
	})
	if err != nil {
		respondTreeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleSelection returns the selected file paths in selection order
func (s *Server) handleSelection(c *gin.Context) {
	browse, ok := s.browse(c)
	if !ok {
		return
	}

	var selected []string
	_ = browse.Do(func(b *filetree.Browser) error {
		selected = b.Selected()
		return nil
	})
	c.JSON(http.StatusOK, models.SelectionResponse{FilePaths: selected})
}

// handleSubmit generates a collection from the selected files. The browsing
// session ends once the backend accepted the request.
func (s *Server) handleSubmit(c *gin.Context) {
	browse, ok := s.browse(c)
	if !ok {
		return
	}

	var selected []string
	_ = browse.Do(func(b *filetree.Browser) error {
		selected = b.Selected()
		return nil
	})
	if len(selected) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "select at least one file"})
		return
	}

	creds := mustCredentials(c)
	target := browse.Target
	collection, err := s.backend.GenerateCollection(c.Request.Context(), creds, target.Account, target.Repo, selected)
	metrics.RecordCollection("generate", err == nil)
	if err != nil {
		s.respondBackendError(c, err)
		return
	}

	if err := s.store.Close(browse.ID, creds.Owner()); err != nil {
		s.logger.Debugf("Browse session %s already closed: %v", browse.ID, err)
	}
	metrics.SetBrowseSessions(s.store.Len())

	s.logger.Infof("Generated collection for %s/%s@%s from %d files", target.Account, target.Repo, target.Branch, len(selected))
	c.JSON(http.StatusOK, models.SubmitResponse{
		Account:    target.Account,
		Repo:       target.Repo,
		Branch:     target.Branch,
		FilePaths:  selected,
		Collection: *collection,
	})
}

// browse resolves the :id parameter to a session of the caller
func (s *Server) browse(c *gin.Context) (*session.Browse, bool) {
	browse, err := s.store.Get(c.Param("id"), mustCredentials(c).Owner())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return browse, true
}

func browserResponse(browse *session.Browse, b *filetree.Browser) models.BrowserResponse {
	files, dirs := b.Counts()
	return models.BrowserResponse{
		ID:          browse.ID,
		Account:     browse.Target.Account,
		Repo:        browse.Target.Repo,
		Branch:      browse.Target.Branch,
		Tree:        b.Roots(),
		Files:       files,
		Directories: dirs,
		Expanded:    b.Expanded(),
		Selected:    b.Selected(),
	}
}

func respondTreeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, filetree.ErrUnknownPath),
		errors.Is(err, filetree.ErrNotFile),
		errors.Is(err, filetree.ErrNotDirectory):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
