// -- cmd/projects.go --
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karstfell/siteforge/internal/observability"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects.",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, closeStore, err := openStore(ctx, observability.GetLogger())
		if err != nil {
			return err
		}
		defer closeStore()

		projects, err := st.ListProjects(ctx)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("No projects.")
			return nil
		}

		for _, p := range projects {
			framework := "-"
			if p.Framework != nil {
				framework = p.Framework.Framework
			}
			fmt.Printf("%-36s  %-20s  %-12s  %s\n", p.ID, p.Title, framework, p.SiteURL)
		}
		return nil
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project and all of its components.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, closeStore, err := openStore(ctx, observability.GetLogger())
		if err != nil {
			return err
		}
		defer closeStore()

		if err := st.DeleteProject(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted project %s.\n", args[0])
		return nil
	},
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
	rootCmd.AddCommand(projectsCmd)
}
