package mcp

import (
	"context"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driving"
)

// mockPipeline is a mock implementation of driving.Pipeline.
type mockPipeline struct {
	status    driving.PipelineStatus
	report1   *domain.StageReport
	report2   *domain.StageReport
	err       error
	resumeErr error

	stage1Paths []string
	stage2Paths []string
	resumed     []string
}

func (m *mockPipeline) RunStage1(_ context.Context, path string) (*domain.StageReport, error) {
	m.stage1Paths = append(m.stage1Paths, path)
	return m.report1, m.err
}

func (m *mockPipeline) RunStage2(_ context.Context, path string) (*domain.StageReport, error) {
	m.stage2Paths = append(m.stage2Paths, path)
	return m.report2, m.err
}

func (m *mockPipeline) Resume(_ context.Context, sourcePath string) error {
	m.resumed = append(m.resumed, sourcePath)
	if m.resumeErr != nil {
		return m.resumeErr
	}
	src, err := domain.NewSourceFile(sourcePath)
	if err != nil {
		return err
	}
	m.status.State = domain.StateStage1Complete
	m.status.Source = &src
	return nil
}

func (m *mockPipeline) Status() driving.PipelineStatus {
	return m.status
}

// mockHistoryService is a mock implementation of driving.HistoryService.
type mockHistoryService struct {
	runs      []domain.StageRun
	err       error
	lastLimit int
}

func (m *mockHistoryService) List(_ context.Context, limit int) ([]domain.StageRun, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && limit < len(m.runs) {
		return m.runs[:limit], nil
	}
	return m.runs, nil
}

func (m *mockHistoryService) LastSuccessful(_ context.Context, stage domain.Stage) (*domain.StageRun, error) {
	for i := range m.runs {
		if m.runs[i].Stage == stage && m.runs[i].Success {
			return &m.runs[i], nil
		}
	}
	return nil, m.err
}
