package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/macrorun/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:         "history",
	Short:       "Show recent step runs",
	Long:        `List recorded Step 1 and Step 2 runs, most recent first.`,
	Args:        cobra.NoArgs,
	Annotations: servicesAnnotation(),
	RunE:        runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs to show (0 = all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print runs as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	runs, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if historyJSON {
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal runs: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	for i := range runs {
		printRun(cmd, &runs[i])
	}
	cmd.Printf("Total: %d runs\n", len(runs))
	return nil
}

func printRun(cmd *cobra.Command, run *domain.StageRun) {
	status := "ok"
	if !run.Success {
		status = "failed"
	}

	cmd.Printf("  %s  %s  %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.Stage, status)
	cmd.Printf("    Source:   %s\n", run.SourcePath)
	if run.AddOnPath != "" {
		cmd.Printf("    Add-on:   %s\n", run.AddOnPath)
	}
	if run.ArtifactPath != "" {
		cmd.Printf("    Output:   %s\n", run.ArtifactPath)
	}
	if run.Warnings > 0 {
		cmd.Printf("    Warnings: %d\n", run.Warnings)
	}
	if run.Error != "" {
		cmd.Printf("    Error:    %s\n", run.Error)
	}
	cmd.Println()
}
