package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Pipeline runs stages one after another in registration order.
type Pipeline struct {
	stages   []Stage
	logger   *slog.Logger
	recorder Recorder
	mu       sync.Mutex
	running  bool
}

func NewPipeline(logger *slog.Logger, recorder Recorder) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Pipeline{logger: logger, recorder: recorder}
}

func (p *Pipeline) AddStage(stage Stage) *Pipeline {
	p.stages = append(p.stages, stage)
	return p
}

func (p *Pipeline) Stages() []Stage {
	out := make([]Stage, len(p.stages))
	copy(out, p.stages)
	return out
}

func (p *Pipeline) selectStages(only []string) ([]Stage, error) {
	if len(only) == 0 {
		return p.stages, nil
	}

	wanted := make(map[string]bool, len(only))
	for _, name := range only {
		wanted[name] = true
	}

	var selected []Stage
	for _, s := range p.stages {
		if wanted[s.Name()] {
			selected = append(selected, s)
			delete(wanted, s.Name())
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for name := range wanted {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown stage: %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}

// Run executes the selected stages (all when only is empty) in pipeline
// order. It stops at the first stage that fails fatally or when ctx is done;
// reports of the stages that ran are returned either way.
func (p *Pipeline) Run(ctx context.Context, only ...string) ([]*StageReport, error) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil, fmt.Errorf("pipeline already running")
	}
	p.running = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	stages, err := p.selectStages(only)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	p.logger.Info("Starting pipeline run", "run_id", runID, "stages", len(stages))

	reports := make([]*StageReport, 0, len(stages))
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		logger := p.logger.With("stage", stage.Name(), "run_id", runID)
		report, err := stage.Run(ctx, logger)
		if report != nil {
			reports = append(reports, report)
			p.recorder.StageDone(stage.Name(), report.Duration)
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Warn("Stage cancelled")
				return reports, err
			}
			logger.Error("Stage failed", "error", err)
			return reports, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
	}

	p.logger.Info("Pipeline run completed", "run_id", runID)
	return reports, nil
}
