// api/schemas/project.go
package schemas

import "time"

// Project owns an ordered list of components extracted from a source site.
type Project struct {
	ID          string              `json:"id"`
	SiteURL     string              `json:"site_url,omitempty"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	IsPublished bool                `json:"is_published"`
	Framework   *FrameworkDetection `json:"framework,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ProjectRequest is the inbound "create project from URL" payload.
type ProjectRequest struct {
	SiteURL     string `json:"site_url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// FrameworkDetection is the heuristic guess of the authoring technology of a
// fetched page. Recomputed per parse; only the latest value is meaningful.
type FrameworkDetection struct {
	Framework  string   `json:"framework"`
	Confidence int      `json:"confidence"`
	Indicators []string `json:"indicators"`
}
