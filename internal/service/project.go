// internal/service/project.go
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/karstfell/siteforge/api/schemas"
	"github.com/karstfell/siteforge/internal/framework"
)

// ComponentExtractor turns raw HTML into ordered component drafts.
type ComponentExtractor interface {
	Extract(rawHTML, projectID string) []schemas.ComponentDraft
}

// ProjectService orchestrates the create-project flow: persist the project,
// fetch the page, extract and store components, record the detected
// framework. Extraction is an enhancement: every failure past project
// creation degrades instead of aborting.
type ProjectService struct {
	projects   schemas.ProjectStore
	components schemas.ComponentStore
	fetcher    schemas.PageFetcher
	extractor  ComponentExtractor
	log        *zap.Logger
}

// CreateResult reports what the creation flow achieved. ExtractionFailed
// distinguishes "the page had nothing extractable" from "we never got the
// page": consumers surface the sidebar fallback only in the latter case.
type CreateResult struct {
	Project          *schemas.Project
	Components       []schemas.ComponentDraft
	Inserted         int
	Framework        *schemas.FrameworkDetection
	ExtractionFailed bool
}

func NewProjectService(
	projects schemas.ProjectStore,
	components schemas.ComponentStore,
	fetcher schemas.PageFetcher,
	extractor ComponentExtractor,
	logger *zap.Logger,
) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		projects:   projects,
		components: components,
		fetcher:    fetcher,
		extractor:  extractor,
		log:        logger.Named("service"),
	}
}

// CreateProjectFromURL persists a project and best-effort extracts its
// components. Only the project insert itself can fail the call.
func (s *ProjectService) CreateProjectFromURL(ctx context.Context, req schemas.ProjectRequest) (*CreateResult, error) {
	project, err := s.projects.CreateProject(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	result := &CreateResult{Project: project}

	rawHTML := s.fetcher.Fetch(ctx, req.SiteURL)
	if rawHTML == "" {
		result.ExtractionFailed = true
		s.log.Warn("Page unreachable, project created without components",
			zap.String("project_id", project.ID),
			zap.String("url", req.SiteURL))
		s.recordFramework(ctx, result, framework.DetectFromURL(req.SiteURL))
		return result, nil
	}

	result.Components = s.extractor.Extract(rawHTML, project.ID)
	if len(result.Components) > 0 {
		inserted, err := s.components.BulkInsertComponents(ctx, result.Components)
		if err != nil {
			// The extracted drafts still reach the caller for manual review.
			s.log.Error("Failed to persist extracted components",
				zap.String("project_id", project.ID), zap.Error(err))
		} else {
			result.Inserted = inserted
			if inserted < len(result.Components) {
				s.log.Warn("Some component drafts were rejected",
					zap.String("project_id", project.ID),
					zap.Int("extracted", len(result.Components)),
					zap.Int("inserted", inserted))
			}
		}
	} else {
		s.log.Info("No extractable components on page",
			zap.String("project_id", project.ID))
	}

	s.recordFramework(ctx, result, framework.Detect(rawHTML))
	return result, nil
}

func (s *ProjectService) recordFramework(ctx context.Context, result *CreateResult, fw schemas.FrameworkDetection) {
	result.Framework = &fw
	if err := s.projects.UpdateProjectFramework(ctx, result.Project.ID, &fw); err != nil {
		s.log.Warn("Failed to record framework detection",
			zap.String("project_id", result.Project.ID), zap.Error(err))
	}
}
