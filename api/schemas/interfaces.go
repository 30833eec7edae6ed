// api/schemas/interfaces.go
package schemas

import "context"

// ComponentStore is the persistence contract the extraction core depends on.
// ListComponents returns components ordered by position. ReorderComponents is
// applied as a single logical batch, but partial application on mid-batch
// failure is an accepted risk: callers should re-fetch to confirm final order.
type ComponentStore interface {
	ListComponents(ctx context.Context, projectID string) ([]Component, error)
	CreateComponent(ctx context.Context, draft ComponentDraft) (*Component, error)
	BulkInsertComponents(ctx context.Context, drafts []ComponentDraft) (int, error)
	UpdateComponent(ctx context.Context, id string, patch ComponentPatch) (*Component, error)
	DeleteComponent(ctx context.Context, id string) error
	ReorderComponents(ctx context.Context, entries []ReorderEntry) error
}

// ProjectStore persists project records.
type ProjectStore interface {
	CreateProject(ctx context.Context, req ProjectRequest) (*Project, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	DeleteProject(ctx context.Context, id string) error
	UpdateProjectFramework(ctx context.Context, id string, fw *FrameworkDetection) error
}

// PageFetcher retrieves the raw HTML of a remote page. An empty string means
// "extraction unavailable": callers must degrade, not fail.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) string
}

// SelectionCallback receives the component synthesized from a live click in
// an instrumented document.
type SelectionCallback func(component Component)
