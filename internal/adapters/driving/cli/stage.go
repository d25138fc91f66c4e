package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/logger"
)

var stage2Source string

var stage1Cmd = &cobra.Command{
	Use:   "stage1 <main.xlsm>",
	Short: "Process the main file",
	Long: `Open the main workbook, run the Khalilmacro and Macro1P3PNewFile
macros and save the result as <name>_Re-run.xlsm in the same folder.

A macro that fails is reported as a warning; the file is still saved.`,
	Args:        cobra.ExactArgs(1),
	Annotations: servicesAnnotation(),
	RunE:        runStage1,
}

var stage2Cmd = &cobra.Command{
	Use:   "stage2 <addon.xlsm>",
	Short: "Merge the add-on file into the Step 1 output",
	Long: `Open <name>_Re-run.xlsm together with the add-on workbook, run the
MacroAfterRUT1P3P macro and save the result as <name>_Final.xlsm.

Step 1 must have completed. When run from a fresh process, the main file
is taken from --source or from the last successful Step 1 in history.`,
	Args:        cobra.ExactArgs(1),
	Annotations: servicesAnnotation(),
	RunE:        runStage2,
}

var runCmd = &cobra.Command{
	Use:   "run <main.xlsm> <addon.xlsm>",
	Short: "Run both steps in order",
	Long: `Run Step 1 on the main file and, if it succeeds, Step 2 with the
add-on file.`,
	Args:        cobra.ExactArgs(2),
	Annotations: servicesAnnotation(),
	RunE:        runBoth,
}

func init() {
	stage2Cmd.Flags().StringVarP(&stage2Source, "source", "s", "", "main file processed by Step 1")
	rootCmd.AddCommand(stage1Cmd)
	rootCmd.AddCommand(stage2Cmd)
	rootCmd.AddCommand(runCmd)
}

func runStage1(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline not configured")
	}
	attachConsole(cmd.OutOrStdout())

	report, err := pipelineService.RunStage1(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printSummary(cmd, report)
	return nil
}

func runStage2(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline not configured")
	}
	attachConsole(cmd.OutOrStdout())

	resumeStage1(cmd.Context(), stage2Source)

	report, err := pipelineService.RunStage2(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printSummary(cmd, report)
	return nil
}

func runBoth(cmd *cobra.Command, args []string) error {
	if pipelineService == nil {
		return errors.New("pipeline not configured")
	}
	attachConsole(cmd.OutOrStdout())

	first, err := pipelineService.RunStage1(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if first == nil {
		return nil
	}
	printSummary(cmd, first)

	second, err := pipelineService.RunStage2(cmd.Context(), args[1])
	if err != nil {
		return err
	}
	printSummary(cmd, second)
	return nil
}

// resumeStage1 restores Step 1 state in a fresh process. Failures are
// not fatal here: RunStage2 refuses with a clear error on its own.
func resumeStage1(ctx context.Context, source string) {
	if pipelineService.Status().State.CanRunStage2() {
		return
	}

	if source == "" && historyService != nil {
		last, err := historyService.LastSuccessful(ctx, domain.Stage1)
		if err != nil {
			logger.Debug("reading history: %v", err)
		}
		if last != nil {
			source = last.SourcePath
			logger.Info("resuming from last Step 1 run: %s", source)
		}
	}
	if source == "" {
		return
	}

	if err := pipelineService.Resume(ctx, source); err != nil {
		logger.Debug("resume %s: %v", source, err)
	}
}

func printSummary(cmd *cobra.Command, report *domain.StageReport) {
	if report == nil {
		return
	}
	if warnings := report.Warnings(); len(warnings) > 0 {
		cmd.Printf("Completed with %d macro warning(s):\n", len(warnings))
		for _, w := range warnings {
			cmd.Printf("  %s: %s\n", w.Macro, w.Message)
		}
	}
	if report.Overwrote {
		cmd.Printf("Replaced existing %s\n", report.Artifact.Name)
	}
	cmd.Printf("Output: %s (%s)\n", report.Artifact.Path, report.Duration().Round(time.Millisecond))
}
