// Package backend is a typed client for the Postlog REST backend. Every call
// takes the caller's credentials explicitly and validates the response
// against its contract before returning it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/denysvitali/postlog-dashboard/internal/models"
	"github.com/denysvitali/postlog-dashboard/pkg/config"
	"github.com/denysvitali/postlog-dashboard/pkg/metrics"
	"github.com/denysvitali/postlog-dashboard/pkg/session"
)

const (
	headerAccessToken = "x-access-tokens"
	headerAccept      = "Accept"
	headerContentType = "Content-Type"
	mimeJSON          = "application/json"

	// maxErrorBody bounds how much of a failed response is read for its message
	maxErrorBody = 64 << 10
)

var (
	// ErrUnauthorized is matched by APIErrors with status 401 or 403
	ErrUnauthorized = errors.New("backend rejected the access token")
	// ErrInvalidResponse is returned when a response breaks its contract
	ErrInvalidResponse = errors.New("invalid backend response")
)

// APIError is a non-2xx answer from the backend
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: backend returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: backend returned status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Is makes errors.Is(err, ErrUnauthorized) hold for rejected tokens
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

type httpClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc httpClient) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client talks to the Postlog backend
type Client struct {
	baseURL  string
	http     httpClient
	logger   *logrus.Logger
	tracer   trace.Tracer
	validate *validator.Validate
}

// New creates a backend client from configuration
func New(cfg config.BackendConfig, logger *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
		tracer:   otel.Tracer("postlog-dashboard"),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// User returns the account behind creds
func (c *Client) User(ctx context.Context, creds session.Credentials) (*models.User, error) {
	var resp models.UserResponse
	if err := c.do(ctx, creds, "user", http.MethodGet, "/dashboard", nil, &resp); err != nil {
		return nil, err
	}
	if err := c.check(&resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Organizations returns the organizations the user belongs to
func (c *Client) Organizations(ctx context.Context, creds session.Credentials) ([]models.Organization, error) {
	var resp models.OrganizationsResponse
	if err := c.do(ctx, creds, "organizations", http.MethodGet, "/account/user_orgs", nil, &resp); err != nil {
		return nil, err
	}
	for i := range resp {
		if err := c.check(&resp[i]); err != nil {
			return nil, err
		}
	}
	if resp == nil {
		resp = models.OrganizationsResponse{}
	}
	return resp, nil
}

// Repositories lists the repositories of account. The user's own account is
// requested without the organization flag.
func (c *Client) Repositories(ctx context.Context, creds session.Credentials, account, username string) ([]models.Repository, error) {
	body := models.RepositoriesRequest{OrgFlag: false}
	if account != username {
		body = models.RepositoriesRequest{OrgFlag: true, Organization: account}
	}

	var resp models.RepositoriesResponse
	if err := c.do(ctx, creds, "repositories", http.MethodPost, "/repo/get_repositories", body, &resp); err != nil {
		return nil, err
	}
	if err := c.check(&resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		resp.Data = []models.Repository{}
	}
	return resp.Data, nil
}

// Files lists the file paths of repo at branch
func (c *Client) Files(ctx context.Context, creds session.Credentials, account, username, repo, branch string) ([]string, error) {
	path := "/repo/fetch_repo_files/" + escape(repo, branch)
	if account != username {
		path = "/repo/fetch_repo_files/" + escape(account, repo, branch)
	}

	var resp models.FilesResponse
	if err := c.do(ctx, creds, "files", http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if err := c.check(&resp); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// GenerateCollection asks the backend to build a collection from paths
func (c *Client) GenerateCollection(ctx context.Context, creds session.Credentials, account, repo string, paths []string) (*models.Collection, error) {
	path := "/repo/generate-postman-collection/" + escape(account, repo) + "/contents/"
	body := models.GenerateCollectionRequest{FilePaths: paths}

	var resp models.Collection
	if err := c.do(ctx, creds, "generate_collection", http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if err := c.check(&resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteCollection removes the generated collection of repo so it can be
// generated again.
func (c *Client) DeleteCollection(ctx context.Context, creds session.Credentials, account, repo string) error {
	path := "/repo/delete-postman-collection/" + escape(account, repo)
	return c.do(ctx, creds, "delete_collection", http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, creds session.Credentials, endpoint, method, path string, body, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, "backend."+endpoint)
	defer span.End()

	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("backend.endpoint", endpoint),
	)

	if creds.Empty() {
		return session.ErrNoCredentials
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set(headerAccessToken, creds.AccessToken)
	req.Header.Set(headerAccept, mimeJSON)
	if body != nil {
		req.Header.Set(headerContentType, mimeJSON)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordBackendCall(endpoint, 0, time.Since(start))
		span.RecordError(err)
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	metrics.RecordBackendCall(endpoint, resp.StatusCode, time.Since(start))
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"method":   method,
		"status":   resp.StatusCode,
		"latency":  time.Since(start),
	}).Debug("Backend call completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var envelope models.ErrorResponse
		if json.Unmarshal(raw, &envelope) == nil {
			apiErr.Message = envelope.Message
		}
		span.RecordError(apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, endpoint, err)
	}
	return nil
}

func (c *Client) check(v interface{}) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func escape(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}
