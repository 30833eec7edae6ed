// -- cmd/components.go --
package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/karstfell/siteforge/api/schemas"
	"github.com/karstfell/siteforge/internal/observability"
)

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "Inspect and reorder a project's components.",
}

var componentsListCmd = &cobra.Command{
	Use:   "list <project-id>",
	Short: "List a project's components in render order.",
	Args:  cobra.ExactArgs(1),
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
		if len(components) == 0 {
			fmt.Println("No components.")
			return nil
		}

		for _, c := range components {
			visibility := ""
			if !c.IsVisible {
				visibility = " (hidden)"
			}
			fmt.Printf("%3d  %-36s  %-12s  %s%s\n",
				c.Position, c.ID, c.ComponentType, c.Content.Selector, visibility)
		}
		return nil
	},
}

var componentsReorderCmd = &cobra.Command{
	Use:   "reorder <project-id> <component-id>=<position> [...]",
	Short: "Reassign component positions.",
	Long: `Applies the given id=position assignments as one batch, then rewrites
the project's positions to a contiguous sequence. Re-run "components list"
to confirm the final order.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := parseReorderArgs(args[1:])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, closeStore, err := openStore(ctx, observability.GetLogger())
		if err != nil {
			return err
		}
		defer closeStore()

		if err := st.ReorderComponents(ctx, entries); err != nil {
			return err
		}
		fmt.Printf("Reordered %d components.\n", len(entries))
		return nil
	},
}

func parseReorderArgs(args []string) ([]schemas.ReorderEntry, error) {
	entries := make([]schemas.ReorderEntry, 0, len(args))
	for _, arg := range args {
		id, posText, ok := strings.Cut(arg, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid reorder argument %q, expected <component-id>=<position>", arg)
		}
		position, err := strconv.Atoi(posText)
		if err != nil || position < 0 {
			return nil, fmt.Errorf("invalid position in %q", arg)
		}
		entries = append(entries, schemas.ReorderEntry{ID: id, Position: position})
	}
	return entries, nil
}

func init() {
	componentsCmd.AddCommand(componentsListCmd)
	componentsCmd.AddCommand(componentsReorderCmd)
	rootCmd.AddCommand(componentsCmd)
}
