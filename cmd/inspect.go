// -- cmd/inspect.go --
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/karstfell/siteforge/api/schemas"
	"github.com/karstfell/siteforge/internal/observability"
	"github.com/karstfell/siteforge/internal/overlay"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <project-id> <url>",
	Short: "Open a live selection overlay on a page.",
	Long: `Loads the page in a browser and instruments its elements for selection.
Clicked elements are captured as components of the given project. Runs
until interrupted. If the page denies scripting access, the session stays
open but selection is unavailable.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := observability.GetLogger()
		projectID, url := args[0], args[1]

		st, closeStore, err := openStore(ctx, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		if _, err := st.GetProject(ctx, projectID); err != nil {
			return err
		}
		existing, err := st.ListComponents(ctx, projectID)
		if err != nil {
			return err
		}

		handle, err := overlay.NewChromeHandle(ctx, cfg.Overlay, logger)
		if err != nil {
			return err
		}
		defer handle.Close(ctx)

		injector := overlay.NewInjector(cfg.Overlay, handle, projectID, logger)
		// Captured components append after the ones already stored.
		injector.SetPositionBase(len(existing))
		injector.OnSelect(func(component schemas.Component) {
			draft := schemas.ComponentDraft{
				ProjectID:     component.ProjectID,
				ComponentType: component.ComponentType,
				Content:       component.Content,
				Position:      component.Position,
				IsVisible:     true,
			}
			stored, err := st.CreateComponent(ctx, draft)
			if err != nil {
				logger.Error("Failed to persist selected component", zap.Error(err))
				return
			}
			fmt.Printf("Captured %s %s (%s)\n",
				stored.ComponentType, stored.Content.Selector, stored.ID)
		})

		if err := injector.Load(ctx, url); err != nil {
			return err
		}
		if err := injector.Activate(ctx); err != nil {
			return err
		}
		if notice := injector.Notice(); notice != "" {
			fmt.Println(notice)
		} else {
			fmt.Println("Overlay active. Click elements to capture them; Ctrl-C to stop.")
		}

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		select {
		case <-stop:
		case <-ctx.Done():
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
