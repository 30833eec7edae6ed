// internal/store/schema.go
package store

import (
	"context"
	"fmt"
)

// schemaDDL creates the tables the store depends on. Positions are plain
// integers, not a constraint-enforced sequence: contiguity is maintained by
// the reorder renormalization pass.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS projects (
    id           TEXT PRIMARY KEY,
    site_url     TEXT NOT NULL DEFAULT '',
    title        TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    is_published BOOLEAN NOT NULL DEFAULT FALSE,
    framework    JSONB,
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS components (
    id             TEXT PRIMARY KEY,
    project_id     TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
    component_type TEXT NOT NULL,
    content        JSONB NOT NULL,
    position       INTEGER NOT NULL DEFAULT 0,
    styles         JSONB,
    is_visible     BOOLEAN NOT NULL DEFAULT TRUE,
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_components_project_position
    ON components (project_id, position);
`

// Migrate applies the schema. Idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.log.Info("Database schema ensured")
	return nil
}
