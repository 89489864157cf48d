package models

// User is the authenticated account as reported by the backend
type User struct {
	Username  string `json:"username" validate:"required"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url"`
}

// UserResponse is the body of GET /dashboard
type UserResponse struct {
	User    *User  `json:"user" validate:"required"`
	Message string `json:"message,omitempty"`
}

// Organization is an account the user can browse repositories of
type Organization struct {
	Login       string  `json:"login" validate:"required"`
	AvatarURL   string  `json:"avatar_url" validate:"omitempty,url"`
	Description *string `json:"description"`
}

// OrganizationsResponse is the body of GET /account/user_orgs
type OrganizationsResponse []Organization

// RepositoriesRequest is the body of POST /repo/get_repositories. OrgFlag is
// false for the user's own account and true for an organization.
type RepositoriesRequest struct {
	OrgFlag      bool   `json:"org_flag"`
	Organization string `json:"organization,omitempty"`
}

// Repository is one repository row of the dashboard
type Repository struct {
	RepoName            string `json:"repo_name" validate:"required"`
	RepoURL             string `json:"repo_url" validate:"required"`
	Branch              string `json:"branch"`
	CollectionGenerated bool   `json:"collection_generated"`
}

// RepositoriesResponse is the body returned by POST /repo/get_repositories
type RepositoriesResponse struct {
	Account    string       `json:"account"`
	Data       []Repository `json:"data" validate:"dive"`
	Message    string       `json:"message"`
	StatusCode int          `json:"status_code"`
}

// FilesResponse is the body of GET /repo/fetch_repo_files/...
type FilesResponse struct {
	Files []string `json:"files" validate:"required"`
}

// GenerateCollectionRequest is the body of the collection generation call
type GenerateCollectionRequest struct {
	FilePaths []string `json:"filepaths"`
}

// Collection is the generated API collection artifact
type Collection struct {
	CollectionURL string `json:"collection_url" validate:"required,url"`
	Message       string `json:"message,omitempty"`
}

// ErrorResponse is the error envelope the backend uses
type ErrorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
}
