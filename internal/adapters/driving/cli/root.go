// Package cli provides the cobra command tree for macrorun.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
	"github.com/custodia-labs/macrorun/internal/core/ports/driving"
	"github.com/custodia-labs/macrorun/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// annotationServices marks commands that need the core services wired.
const annotationServices = "macrorun/services"

// Options carries the global flags into the bootstrap function.
type Options struct {
	ConfigDir string
	DryRun    bool
	Verbose   bool
}

// EventRegistry accepts additional event sinks after wiring.
type EventRegistry interface {
	Add(sink driven.EventSink)
}

// Services is everything the commands drive.
type Services struct {
	Sessions driving.SessionManager
	Pipeline driving.Pipeline
	History  driving.HistoryService
	Settings driving.SettingsService
	Events   EventRegistry

	// Close releases stores opened by the bootstrap. May be nil.
	Close func() error
}

// BootstrapFunc builds the services from the global flags.
type BootstrapFunc func(opts Options) (*Services, error)

var (
	bootstrap BootstrapFunc

	sessionManager  driving.SessionManager
	pipelineService driving.Pipeline
	historyService  driving.HistoryService
	settingsService driving.SettingsService
	eventRegistry   EventRegistry
	closeServices   func() error

	globalOpts Options
)

var rootCmd = &cobra.Command{
	Use:   "macrorun",
	Short: "Run the two-step Excel macro workflow",
	Long: `macrorun drives a locally installed Microsoft Excel through its
automation interface to run a fixed two-step macro workflow.

Step 1 opens the main workbook, runs its macros and saves
<name>_Re-run.xlsm next to it. Step 2 opens that output together with an
add-on workbook, runs the merge macro and saves <name>_Final.xlsm.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: preRun,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		shutdown()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&globalOpts.Verbose, "verbose", "v", false, "print debug and info logging")
	flags.BoolVar(&globalOpts.DryRun, "dry-run", false, "simulate Excel instead of automating it")
	flags.StringVar(&globalOpts.ConfigDir, "config-dir", "", "configuration directory (default ~/.macrorun)")
}

// SetBootstrap installs the function that wires services for commands
// that need them.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetServices installs already-built services.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	sessionManager = s.Sessions
	pipelineService = s.Pipeline
	historyService = s.History
	settingsService = s.Settings
	eventRegistry = s.Events
	closeServices = s.Close
}

// Execute runs the root command. Interrupts cancel the command context
// and the automation session is always shut down.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer shutdown()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func preRun(cmd *cobra.Command, _ []string) error {
	if globalOpts.Verbose {
		logger.SetVerbose(true)
	}
	if !needsServices(cmd) || bootstrap == nil || pipelineService != nil {
		return nil
	}

	services, err := bootstrap(globalOpts)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(services)
	return nil
}

func needsServices(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationServices] == "true" {
			return true
		}
	}
	return false
}

func servicesAnnotation() map[string]string {
	return map[string]string{annotationServices: "true"}
}

// shutdown quits the automation host and closes stores. Safe to call
// more than once.
func shutdown() {
	if sessionManager != nil {
		sessionManager.Shutdown()
	}
	if closeServices != nil {
		if err := closeServices(); err != nil {
			logger.Warn("closing services: %v", err)
		}
		closeServices = nil
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if hint := errorHint(err); hint != "" {
		fmt.Fprintln(w, hint)
	}
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, domain.ErrStageOrder):
		return "Run 'macrorun stage1 <file>' first, or pass --source to point at the main file."
	case errors.Is(err, domain.ErrHostUnavailable):
		return "Is Microsoft Excel installed? Use --dry-run to simulate the workflow."
	case errors.Is(err, domain.ErrStageInProgress):
		return "Wait for the running step to finish."
	case errors.Is(err, domain.ErrInvalidInput):
		return "Run 'macrorun config show' to see the accepted settings."
	default:
		return ""
	}
}
