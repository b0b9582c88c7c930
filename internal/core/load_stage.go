package core

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"courtside/internal/completion"
	"courtside/internal/extract"
	"courtside/internal/loader"
	"courtside/internal/metrics"
	"courtside/internal/schema"
	"courtside/internal/storage"
	"courtside/internal/types"
)

// PayloadSource is the read side of the raw store a load stage consumes.
type PayloadSource interface {
	List() ([]string, error)
	Read(id string) ([]byte, error)
}

// ErrorCollector keeps a copy of payloads that could not be processed.
type ErrorCollector interface {
	CopyTo(id, dir string) error
}

type LoadStageConfig struct {
	Name      string
	Source    PayloadSource
	Extractor extract.Extractor
	Table     schema.Table
	Dest      storage.DestinationTable
	Loader    *loader.Loader
	// Candidates narrows the stored payload ids before filtering, if set.
	Candidates func(ids []string) []string
	ErrorDir   string
	Rand       *rand.Rand
	Recorder   Recorder
}

// LoadStage extracts records from stored payloads not yet present in its
// table and loads them.
type LoadStage struct {
	cfg LoadStageConfig
}

func NewLoadStage(cfg LoadStageConfig) *LoadStage {
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	return &LoadStage{cfg: cfg}
}

func (s *LoadStage) Name() string   { return s.cfg.Name }
func (s *LoadStage) Kind() string   { return KindLoad }
func (s *LoadStage) Target() string { return s.cfg.Table.QualifiedName() }

func (s *LoadStage) Run(ctx context.Context, logger *slog.Logger) (*StageReport, error) {
	report := newReport(s)
	defer report.finish()

	logger.Info("Stage started", "table", s.cfg.Table.QualifiedName())

	ids, err := s.cfg.Source.List()
	if err != nil {
		return report, fmt.Errorf("failed to list payloads: %w", err)
	}
	if s.cfg.Candidates != nil {
		ids = s.cfg.Candidates(ids)
	}

	res, err := completion.Apply(ctx, ids, completion.LoadedSources{Dest: s.cfg.Dest, Table: s.cfg.Table}, s.cfg.Rand)
	if err != nil {
		return report, err
	}
	report.Candidates = res.Candidates
	report.Completed = res.Completed
	report.Remaining = len(res.Remaining)
	s.cfg.Recorder.Remaining(s.cfg.Name, report.Remaining)

	logger.Info("Payloads filtered",
		"candidates", report.Candidates,
		"completed", report.Completed,
		"remaining", report.Remaining)

	for _, id := range res.Remaining {
		if err := ctx.Err(); err != nil {
			report.Cancelled = true
			return report, err
		}

		if err := s.loadOne(ctx, logger, report, id); err != nil {
			if ctx.Err() != nil {
				report.Cancelled = true
			}
			return report, err
		}
	}

	logger.Info("Stage completed",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"rows_inserted", report.RowsInserted,
		"rows_rejected", report.RowsRejected)

	return report, nil
}

func (s *LoadStage) loadOne(ctx context.Context, logger *slog.Logger, report *StageReport, id string) error {
	payload, err := s.cfg.Source.Read(id)
	if err != nil {
		logger.Warn("Skipping unreadable payload", "id", id, "error", err)
		report.fail(id, err)
		s.cfg.Recorder.Item(s.cfg.Name, metrics.OutcomeFailed)
		return nil
	}

	records, err := s.cfg.Extractor.Extract(id, payload)
	if err != nil {
		s.collect(logger, id)
		if types.IsMissingField(err) {
			logger.Info("Skipping payload", "id", id, "reason", err)
			report.skip(id, err)
			s.cfg.Recorder.Item(s.cfg.Name, metrics.OutcomeSkipped)
			return nil
		}
		logger.Warn("Failed to extract payload", "id", id, "error", err)
		report.fail(id, err)
		s.cfg.Recorder.Item(s.cfg.Name, metrics.OutcomeFailed)
		return nil
	}

	if len(records) == 0 {
		report.skip(id, nil)
		s.cfg.Recorder.Item(s.cfg.Name, metrics.OutcomeSkipped)
		return nil
	}

	res, err := s.cfg.Loader.Load(ctx, s.cfg.Table, records)
	report.RowsInserted += res.Inserted
	report.RowsRejected += res.Rejected
	s.cfg.Recorder.Rows(s.cfg.Table.Name, res.Inserted, res.Rejected)
	if err != nil {
		return err
	}

	logger.Debug("Loaded payload", "id", id, "rows", res.Rows, "inserted", res.Inserted, "rejected", res.Rejected)
	report.Succeeded++
	s.cfg.Recorder.Item(s.cfg.Name, metrics.OutcomeSucceeded)
	return nil
}

func (s *LoadStage) collect(logger *slog.Logger, id string) {
	if s.cfg.ErrorDir == "" {
		return
	}
	collector, ok := s.cfg.Source.(ErrorCollector)
	if !ok {
		return
	}
	if err := collector.CopyTo(id, s.cfg.ErrorDir); err != nil {
		logger.Warn("Failed to keep error payload", "id", id, "error", err)
	}
}
