// internal/store/store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/karstfell/siteforge/api/schemas"
)

// DBPool abstracts pgxpool.Pool so the store can be exercised against
// pgxmock in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Store provides the PostgreSQL implementation of schemas.ComponentStore and
// schemas.ProjectStore.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

var (
	_ schemas.ComponentStore = (*Store)(nil)
	_ schemas.ProjectStore   = (*Store)(nil)
)

// New creates a store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// -- Projects --

const sqlInsertProject = `
        INSERT INTO projects (id, site_url, title, description, is_published, framework, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

// CreateProject inserts a new project record.
func (s *Store) CreateProject(ctx context.Context, req schemas.ProjectRequest) (*schemas.Project, error) {
	now := time.Now().UTC()
	project := &schemas.Project{
		ID:          uuid.NewString(),
		SiteURL:     req.SiteURL,
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := s.pool.Exec(ctx, sqlInsertProject,
		project.ID, project.SiteURL, project.Title, project.Description,
		project.IsPublished, nil, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project: %w", err)
	}
	return project, nil
}

const sqlSelectProject = `
        SELECT id, site_url, title, description, is_published, framework, created_at, updated_at
        FROM projects
        WHERE id = $1
    `

// GetProject loads one project by id.
func (s *Store) GetProject(ctx context.Context, id string) (*schemas.Project, error) {
	row := s.pool.QueryRow(ctx, sqlSelectProject, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", id, err)
	}
	return project, nil
}

const sqlListProjects = `
        SELECT id, site_url, title, description, is_published, framework, created_at, updated_at
        FROM projects
        ORDER BY created_at DESC
    `

// ListProjects returns all projects, newest first.
func (s *Store) ListProjects(ctx context.Context) ([]schemas.Project, error) {
	rows, err := s.pool.Query(ctx, sqlListProjects)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []schemas.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during project row iteration: %w", err)
	}
	return projects, nil
}

// DeleteProject removes a project and, via FK cascade, its components.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	return nil
}

// UpdateProjectFramework stores the latest framework detection result.
func (s *Store) UpdateProjectFramework(ctx context.Context, id string, fw *schemas.FrameworkDetection) error {
	payload, err := json.Marshal(fw)
	if err != nil {
		return fmt.Errorf("failed to marshal framework detection: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE projects SET framework = $2, updated_at = $3 WHERE id = $1`,
		id, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update project framework: %w", err)
	}
	return nil
}

// -- Components --

const sqlSelectComponents = `
        SELECT id, project_id, component_type, content, position, styles, is_visible, created_at, updated_at
        FROM components
        WHERE project_id = $1
        ORDER BY position ASC
    `

// ListComponents returns the project's components ordered by position.
func (s *Store) ListComponents(ctx context.Context, projectID string) ([]schemas.Component, error) {
	rows, err := s.pool.Query(ctx, sqlSelectComponents, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	defer rows.Close()

	var components []schemas.Component
	for rows.Next() {
		component, err := scanComponent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan component row: %w", err)
		}
		components = append(components, *component)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during component row iteration: %w", err)
	}
	return components, nil
}

const sqlInsertComponent = `
        INSERT INTO components (id, project_id, component_type, content, position, styles, is_visible, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

// CreateComponent inserts a single draft, assigning id and timestamps.
func (s *Store) CreateComponent(ctx context.Context, draft schemas.ComponentDraft) (*schemas.Component, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	component := &schemas.Component{
		ID:            uuid.NewString(),
		ProjectID:     draft.ProjectID,
		ComponentType: draft.ComponentType,
		Content:       draft.Content,
		Position:      draft.Position,
		Styles:        draft.Styles,
		IsVisible:     draft.IsVisible,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	contentJSON, stylesJSON, err := marshalComponentPayloads(component.Content, component.Styles)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx, sqlInsertComponent,
		component.ID, component.ProjectID, component.ComponentType,
		contentJSON, component.Position, stylesJSON, component.IsVisible, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert component: %w", err)
	}
	return component, nil
}

// BulkInsertComponents persists a parsed batch in one CopyFrom operation.
// Invalid drafts are logged and skipped up front so one bad row never sinks
// the batch; the returned count is the number of rows actually copied.
func (s *Store) BulkInsertComponents(ctx context.Context, drafts []schemas.ComponentDraft) (int, error) {
	now := time.Now().UTC()
	rows := make([][]interface{}, 0, len(drafts))

	for i, draft := range drafts {
		if err := validateDraft(draft); err != nil {
			s.log.Warn("Skipping invalid component draft",
				zap.Int("index", i), zap.Error(err))
			continue
		}
		contentJSON, stylesJSON, err := marshalComponentPayloads(draft.Content, draft.Styles)
		if err != nil {
			s.log.Warn("Skipping unmarshalable component draft",
				zap.Int("index", i), zap.Error(err))
			continue
		}
		rows = append(rows, []interface{}{
			uuid.NewString(), draft.ProjectID, draft.ComponentType,
			contentJSON, draft.Position, stylesJSON, draft.IsVisible, now, now,
		})
	}

	if len(rows) == 0 {
		return 0, nil
	}

	copied, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"components"},
		[]string{"id", "project_id", "component_type", "content", "position", "styles", "is_visible", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy components: %w", err)
	}
	return int(copied), nil
}

// UpdateComponent applies a partial update. Content and Styles are replaced
// whole; callers pass the full merged sub-map.
func (s *Store) UpdateComponent(ctx context.Context, id string, patch schemas.ComponentPatch) (*schemas.Component, error) {
	set := "updated_at = $2"
	args := []interface{}{id, time.Now().UTC()}

	if patch.Content != nil {
		contentJSON, err := json.Marshal(patch.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal component content: %w", err)
		}
		args = append(args, contentJSON)
		set += fmt.Sprintf(", content = $%d", len(args))
	}
	if patch.Styles != nil {
		stylesJSON, err := json.Marshal(*patch.Styles)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal component styles: %w", err)
		}
		args = append(args, stylesJSON)
		set += fmt.Sprintf(", styles = $%d", len(args))
	}
	if patch.IsVisible != nil {
		args = append(args, *patch.IsVisible)
		set += fmt.Sprintf(", is_visible = $%d", len(args))
	}

	query := fmt.Sprintf(`
        UPDATE components SET %s
        WHERE id = $1
        RETURNING id, project_id, component_type, content, position, styles, is_visible, created_at, updated_at
    `, set)

	row := s.pool.QueryRow(ctx, query, args...)
	component, err := scanComponent(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update component %s: %w", id, err)
	}
	return component, nil
}

// DeleteComponent removes one component. Hidden components should normally
// be toggled via is_visible instead.
func (s *Store) DeleteComponent(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM components WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete component %s: %w", id, err)
	}
	return nil
}

const sqlRenormalizePositions = `
        UPDATE components c
        SET position = sub.rn - 1
        FROM (
            SELECT id, ROW_NUMBER() OVER (ORDER BY position ASC, updated_at ASC) AS rn
            FROM components
            WHERE project_id = $1
        ) sub
        WHERE c.id = sub.id
    `

// ReorderComponents applies the requested positions as a best-effort batch:
// a failed row is logged and the rest still apply. Afterwards the project's
// positions are rewritten to a contiguous 0..N-1 sequence so downstream
// rendering stays deterministic. Callers should re-fetch to confirm the
// final order.
func (s *Store) ReorderComponents(ctx context.Context, entries []schemas.ReorderEntry) error {
	if len(entries) == 0 {
		return nil
	}

	now := time.Now().UTC()
	var failed int
	for _, entry := range entries {
		_, err := s.pool.Exec(ctx,
			`UPDATE components SET position = $2, updated_at = $3 WHERE id = $1`,
			entry.ID, entry.Position, now)
		if err != nil {
			failed++
			s.log.Warn("Reorder entry failed",
				zap.String("component_id", entry.ID),
				zap.Int("position", entry.Position),
				zap.Error(err))
		}
	}
	if failed == len(entries) {
		return fmt.Errorf("reorder failed for all %d entries", failed)
	}

	var projectID string
	if err := s.pool.QueryRow(ctx,
		`SELECT project_id FROM components WHERE id = $1`, entries[0].ID).Scan(&projectID); err != nil {
		return fmt.Errorf("failed to resolve project for renormalization: %w", err)
	}

	if _, err := s.pool.Exec(ctx, sqlRenormalizePositions, projectID); err != nil {
		return fmt.Errorf("failed to renormalize positions: %w", err)
	}
	return nil
}

// -- Row mapping --

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*schemas.Project, error) {
	var (
		project       schemas.Project
		frameworkJSON []byte
	)
	err := row.Scan(&project.ID, &project.SiteURL, &project.Title, &project.Description,
		&project.IsPublished, &frameworkJSON, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(frameworkJSON) > 0 && string(frameworkJSON) != "null" {
		var fw schemas.FrameworkDetection
		if err := json.Unmarshal(frameworkJSON, &fw); err != nil {
			return nil, fmt.Errorf("corrupt framework payload: %w", err)
		}
		project.Framework = &fw
	}
	return &project, nil
}

func scanComponent(row rowScanner) (*schemas.Component, error) {
	var (
		component   schemas.Component
		contentJSON []byte
		stylesJSON  []byte
	)
	err := row.Scan(&component.ID, &component.ProjectID, &component.ComponentType,
		&contentJSON, &component.Position, &stylesJSON, &component.IsVisible,
		&component.CreatedAt, &component.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(contentJSON) > 0 {
		if err := json.Unmarshal(contentJSON, &component.Content); err != nil {
			return nil, fmt.Errorf("corrupt content payload: %w", err)
		}
	}
	if len(stylesJSON) > 0 && string(stylesJSON) != "null" {
		if err := json.Unmarshal(stylesJSON, &component.Styles); err != nil {
			return nil, fmt.Errorf("corrupt styles payload: %w", err)
		}
	}
	return &component, nil
}

func validateDraft(draft schemas.ComponentDraft) error {
	if draft.ProjectID == "" {
		return fmt.Errorf("component draft missing project id")
	}
	if draft.ComponentType == "" {
		return fmt.Errorf("component draft missing component type")
	}
	if draft.Content.Tag == "" {
		return fmt.Errorf("component draft missing content tag")
	}
	return nil
}

func marshalComponentPayloads(content schemas.ComponentContent, styles map[string]string) ([]byte, []byte, error) {
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal component content: %w", err)
	}
	if styles == nil {
		styles = map[string]string{}
	}
	stylesJSON, err := json.Marshal(styles)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal component styles: %w", err)
	}
	return contentJSON, stylesJSON, nil
}
