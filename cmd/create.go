// -- cmd/create.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karstfell/siteforge/api/schemas"
	"github.com/karstfell/siteforge/internal/extract"
	"github.com/karstfell/siteforge/internal/fetch"
	"github.com/karstfell/siteforge/internal/observability"
	"github.com/karstfell/siteforge/internal/service"
)

var (
	createTitle       string
	createDescription string
)

var createCmd = &cobra.Command{
	Use:   "create <url>",
	Short: "Create a project from a URL and extract its components.",
	Long: `Fetches the page at the given URL, extracts its visible elements into
editable components, detects the authoring framework, and persists the
result as a new project. Extraction is best effort: an unreachable page
still produces a project, just without components.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := observability.GetLogger()

		st, closeStore, err := openStore(ctx, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		svc := service.NewProjectService(st, st,
			fetch.New(cfg.Fetch, logger),
			extract.New(cfg.Extract, logger),
			logger)

		title := createTitle
		if title == "" {
			title = args[0]
		}
		result, err := svc.CreateProjectFromURL(ctx, schemas.ProjectRequest{
			SiteURL:     args[0],
			Title:       title,
			Description: createDescription,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Project %s created (%s)\n", result.Project.ID, result.Project.SiteURL)
		if result.ExtractionFailed {
			fmt.Println("Page could not be fetched; add components manually with the sidebar.")
		} else {
			fmt.Printf("Extracted %d components, stored %d\n", len(result.Components), result.Inserted)
		}
		if result.Framework != nil {
			fmt.Printf("Framework: %s (confidence %d)\n", result.Framework.Framework, result.Framework.Confidence)
		}
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createTitle, "title", "t", "", "project title (defaults to the URL)")
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "project description")
	rootCmd.AddCommand(createCmd)
}
