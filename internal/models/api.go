package models

import "github.com/denysvitali/postlog-dashboard/pkg/filetree"

// DashboardResponse is returned by GET /dashboard once the user is logged in
type DashboardResponse struct {
	User     User           `json:"user"`
	Accounts []Organization `json:"accounts"`
}

// OpenBrowserRequest opens a file browser for one repository and branch
type OpenBrowserRequest struct {
	Account string `json:"account" binding:"required"`
	Repo    string `json:"repo" binding:"required"`
	Branch  string `json:"branch" binding:"required"`
}

// PathRequest carries the full path of a tree node
type PathRequest struct {
	Path string `json:"path"`
}

// BrowserResponse describes a browsing session and its state
type BrowserResponse struct {
	ID          string           `json:"id"`
	Account     string           `json:"account"`
	Repo        string           `json:"repo"`
	Branch      string           `json:"branch"`
	Tree        []*filetree.Node `json:"tree"`
	Files       int              `json:"files"`
	Directories int              `json:"directories"`
	Expanded    []string         `json:"expanded"`
	Selected    []string         `json:"selected"`
}

// ToggleResponse reports the state of a node after a toggle
type ToggleResponse struct {
	Path     string   `json:"path"`
	Value    bool     `json:"value"`
	Selected []string `json:"selected,omitempty"`
}

// SelectionResponse lists the selected file paths of a session
type SelectionResponse struct {
	FilePaths []string `json:"filepaths"`
}

// SubmitResponse is returned once a collection was generated
type SubmitResponse struct {
	Account    string     `json:"account"`
	Repo       string     `json:"repo"`
	Branch     string     `json:"branch"`
	FilePaths  []string   `json:"filepaths"`
	Collection Collection `json:"collection"`
}

// ServerInfoResponse is returned by GET /server_info
type ServerInfoResponse struct {
	Uptime       float64          `json:"uptime"`
	IdleTime     float64          `json:"idle_time"`
	OpenBrowsers int              `json:"open_browsers"`
	Resources    ProcessResources `json:"resources"`
}

// ProcessResources holds resource usage of the server process
type ProcessResources struct {
	CPUCount      int     `json:"cpu_count"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryRSS     uint64  `json:"memory_rss"`
	MemoryPercent float32 `json:"memory_percent"`
	Goroutines    int     `json:"goroutines"`
}
