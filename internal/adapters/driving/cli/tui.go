package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui"
	"github.com/custodia-labs/macrorun/internal/logger"
)

var (
	tuiSource string
	tuiDir    string
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

The workflow screen shows both steps. Step 2 unlocks once Step 1 has
produced the Re-run file; a Step 1 from an earlier session is picked up
from --source or from history.

Controls:
  1 / 2    - Pick the file for Step 1 / Step 2
  ↑/k, ↓/j - Navigate
  Enter    - Select
  Esc      - Back / Cancel
  ?        - Help
  q        - Quit`,
	Annotations: servicesAnnotation(),
	RunE:        runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiSource, "source", "s", "", "main file processed by an earlier Step 1")
	tuiCmd.Flags().StringVar(&tuiDir, "dir", "", "folder the file picker opens in (default: working directory)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if pipelineService == nil {
		return errors.New("pipeline not configured")
	}

	resumeStage1(cmd.Context(), tuiSource)

	ports := tui.NewPorts(pipelineService, historyService)
	ports.Settings = settingsService
	ports.BaseDir = tuiDir

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	defer app.Close()

	app.WithContext(cmd.Context())

	// Pipeline events reach the screen through the program.
	bridge := tui.NewEventBridge()
	if eventRegistry != nil {
		eventRegistry.Add(bridge)
	}

	// Console logging would draw over the alternate screen; the log pane and
	// the log file still receive every line.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	bridge.Attach(p)
	defer bridge.Detach()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
