package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/logger"
)

const defaultRunLimit = 10

// Stage1Input is the input schema for the run_stage1 tool.
type Stage1Input struct {
	Path string `json:"path" jsonschema:"absolute path of the main .xlsm workbook"`
}

// Stage2Input is the input schema for the run_stage2 tool.
type Stage2Input struct {
	AddOnPath  string `json:"addon_path" jsonschema:"absolute path of the add-on .xlsm workbook"`
	SourcePath string `json:"source_path,omitempty" jsonschema:"main workbook processed by Step 1, when Step 1 ran in another process"`
}

// StageOutput describes a finished step.
type StageOutput struct {
	Skipped    bool          `json:"skipped,omitempty"`
	RunID      string        `json:"run_id,omitempty"`
	Stage      string        `json:"stage,omitempty"`
	Artifact   string        `json:"artifact,omitempty"`
	Overwrote  bool          `json:"overwrote,omitempty"`
	DurationMS int64         `json:"duration_ms,omitempty"`
	Macros     []MacroOutput `json:"macros,omitempty"`
	Warnings   int           `json:"warnings"`
	State      string        `json:"state"`
}

// MacroOutput is the outcome of one macro call.
type MacroOutput struct {
	Macro   string `json:"macro"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// StatusInput is the (empty) input schema for pipeline_status.
type StatusInput struct{}

// StatusOutput is a snapshot of the pipeline.
type StatusOutput struct {
	State        string `json:"state"`
	Running      bool   `json:"running"`
	CanRunStage2 bool   `json:"can_run_stage2"`
	SourcePath   string `json:"source_path,omitempty"`
	RerunPath    string `json:"rerun_path,omitempty"`
	FinalPath    string `json:"final_path,omitempty"`
}

// RunsInput is the input schema for list_runs.
type RunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return (default 10)"`
}

// RunsOutput is the output schema for list_runs.
type RunsOutput struct {
	Runs  []RunOutput `json:"runs"`
	Count int         `json:"count"`
}

// RunOutput is one recorded step run.
type RunOutput struct {
	ID        string `json:"id"`
	Stage     string `json:"stage"`
	Source    string `json:"source"`
	AddOn     string `json:"addon,omitempty"`
	Artifact  string `json:"artifact,omitempty"`
	StartedAt string `json:"started_at"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Warnings  int    `json:"warnings"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_stage1",
		Description: "Step 1: open the main workbook, run its macros and save <name>_Re-run.xlsm",
	}, s.handleStage1)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "run_stage2",
		Description: "Step 2: merge the add-on workbook into the Step 1 output and save <name>_Final.xlsm",
	}, s.handleStage2)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "pipeline_status",
		Description: "Report which step has completed and the derived file paths",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List recorded step runs, most recent first",
	}, s.handleListRuns)
}

func (s *Server) handleStage1(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input Stage1Input,
) (*mcp.CallToolResult, StageOutput, error) {
	report, err := s.ports.Pipeline.RunStage1(ctx, input.Path)
	if err != nil {
		return nil, StageOutput{}, err
	}
	return nil, s.stageOutput(report), nil
}

func (s *Server) handleStage2(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input Stage2Input,
) (*mcp.CallToolResult, StageOutput, error) {
	if input.SourcePath != "" && !s.resumedFrom(input.SourcePath) {
		if err := s.ports.Pipeline.Resume(ctx, input.SourcePath); err != nil {
			return nil, StageOutput{}, fmt.Errorf("resuming from %s: %w", input.SourcePath, err)
		}
		logger.Debug("mcp: step 2 source set to %s", input.SourcePath)
	}

	report, err := s.ports.Pipeline.RunStage2(ctx, input.AddOnPath)
	if err != nil {
		return nil, StageOutput{}, err
	}
	return nil, s.stageOutput(report), nil
}

// resumedFrom reports whether Step 2 would already run against the Step 1
// output of sourcePath.
func (s *Server) resumedFrom(sourcePath string) bool {
	st := s.ports.Pipeline.Status()
	if st.Source == nil || !st.State.CanRunStage2() {
		return false
	}
	return filepath.Clean(st.Source.Path) == filepath.Clean(sourcePath)
}

func (s *Server) handleStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return nil, s.status(), nil
}

func (s *Server) handleListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunsInput,
) (*mcp.CallToolResult, RunsOutput, error) {
	if s.ports.History == nil {
		return nil, RunsOutput{Runs: []RunOutput{}}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}

	runs, err := s.ports.History.List(ctx, limit)
	if err != nil {
		return nil, RunsOutput{}, fmt.Errorf("listing runs: %w", err)
	}

	output := RunsOutput{
		Runs:  make([]RunOutput, len(runs)),
		Count: len(runs),
	}
	for i := range runs {
		output.Runs[i] = runOutput(&runs[i])
	}
	return nil, output, nil
}

func (s *Server) status() StatusOutput {
	st := s.ports.Pipeline.Status()
	out := StatusOutput{
		State:        string(st.State),
		Running:      st.Running,
		CanRunStage2: st.State.CanRunStage2(),
	}
	if st.Source != nil {
		out.SourcePath = st.Source.Path
		out.RerunPath = st.Source.RerunArtifact().Path
		out.FinalPath = st.Source.FinalArtifact().Path
	}
	return out
}

func (s *Server) stageOutput(report *domain.StageReport) StageOutput {
	state := string(s.ports.Pipeline.Status().State)
	if report == nil {
		return StageOutput{Skipped: true, State: state}
	}

	out := StageOutput{
		RunID:      report.RunID,
		Stage:      report.Stage.String(),
		Artifact:   report.Artifact.Path,
		Overwrote:  report.Overwrote,
		DurationMS: report.Duration().Milliseconds(),
		Macros:     make([]MacroOutput, len(report.Macros)),
		Warnings:   len(report.Warnings()),
		State:      state,
	}
	for i, m := range report.Macros {
		out.Macros[i] = MacroOutput{
			Macro:   m.Macro,
			Status:  string(m.Status),
			Message: m.Message,
		}
	}
	return out
}

func runOutput(run *domain.StageRun) RunOutput {
	return RunOutput{
		ID:        run.ID,
		Stage:     run.Stage.String(),
		Source:    run.SourcePath,
		AddOn:     run.AddOnPath,
		Artifact:  run.ArtifactPath,
		StartedAt: run.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Success:   run.Success,
		Error:     run.Error,
		Warnings:  run.Warnings,
	}
}
