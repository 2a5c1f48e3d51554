package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"report-console/internal/models"
)

// Generator produces the report artifact for a task. The real pipeline
// (market data collection, AI analysis, document rendering) is an
// external concern; this service only drives it stage by stage.
type Generator interface {
	// CollectData gathers the source material for the report subject.
	CollectData(ctx context.Context, task *models.Task) error
	// RenderReport produces the document and returns its path on disk.
	RenderReport(ctx context.Context, task *models.Task) (string, error)
}

// SimulatedGenerator stands in for the report pipeline. Each stage
// sleeps for StageDelay and the rendered document is a placeholder.
type SimulatedGenerator struct {
	OutputDir  string
	StageDelay time.Duration
}

func (g SimulatedGenerator) CollectData(ctx context.Context, task *models.Task) error {
	return g.wait(ctx)
}

func (g SimulatedGenerator) RenderReport(ctx context.Context, task *models.Task) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}

	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(g.OutputDir, fmt.Sprintf("research_report_%s.docx", task.ID))
	content := fmt.Sprintf("Research report for %s (%s:%s), generated %s\n",
		task.Company, task.Market, task.Code, time.Now().Format(time.RFC3339))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (g SimulatedGenerator) wait(ctx context.Context) error {
	if g.StageDelay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(g.StageDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
