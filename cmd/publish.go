// -- cmd/publish.go --
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/karstfell/siteforge/internal/observability"
	"github.com/karstfell/siteforge/internal/publish"
)

var publishOutput string

var publishCmd = &cobra.Command{
	Use:   "publish <project-id>",
	Short: "Generate the CSS/JS override snippet for a project.",
	Long: `Renders the project's components into a single HTML snippet of style and
script overrides, for manual placement into the target site's <head> or
before </body>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, closeStore, err := openStore(ctx, observability.GetLogger())
		if err != nil {
			return err
		}
		defer closeStore()

		components, err := st.ListComponents(ctx, args[0])
		if err != nil {
			return err
		}

		snippet := publish.GenerateHTMLOverrides(components)
		if publishOutput == "" {
			fmt.Print(snippet)
			return nil
		}
		if err := os.WriteFile(publishOutput, []byte(snippet), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", publishOutput, err)
		}
		fmt.Printf("Wrote overrides for %d components to %s\n", len(components), publishOutput)
		return nil
	},
}

func init() {
	publishCmd.Flags().StringVarP(&publishOutput, "output", "o", "", "write the snippet to a file instead of stdout")
	rootCmd.AddCommand(publishCmd)
}
