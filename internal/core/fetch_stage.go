package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"courtside/internal/completion"
	"courtside/internal/fetcher"
	"courtside/internal/metrics"
	"courtside/internal/rawstore"
	"courtside/internal/types"
)

// DiscoverFunc enumerates the candidate work items of a fetch stage.
type DiscoverFunc func(ctx context.Context) ([]types.WorkItem, error)

type FetchStageConfig struct {
	Name     string
	Discover DiscoverFunc
	Store    rawstore.RawPayloadStore
	Target   string
	Fetcher  HTTPFetcher
	Extract  fetcher.Extractor
	Rand     *rand.Rand
	Recorder Recorder
}

// FetchStage downloads every discovered item that has no stored payload yet.
type FetchStage struct {
	name     string
	discover DiscoverFunc
	store    rawstore.RawPayloadStore
	target   string
	fetcher  HTTPFetcher
	extract  fetcher.Extractor
	rng      *rand.Rand
	recorder Recorder
}

func NewFetchStage(cfg FetchStageConfig) *FetchStage {
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	return &FetchStage{
		name:     cfg.Name,
		discover: cfg.Discover,
		store:    cfg.Store,
		target:   cfg.Target,
		fetcher:  cfg.Fetcher,
		extract:  cfg.Extract,
		rng:      cfg.Rand,
		recorder: cfg.Recorder,
	}
}

func (s *FetchStage) Name() string   { return s.name }
func (s *FetchStage) Kind() string   { return KindFetch }
func (s *FetchStage) Target() string { return s.target }

func (s *FetchStage) Run(ctx context.Context, logger *slog.Logger) (*StageReport, error) {
	report := newReport(s)
	defer report.finish()

	logger.Info("Stage started")

	items, err := s.discover(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to discover work items: %w", err)
	}

	urls := make(map[string]string, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if _, dup := urls[item.ID]; dup {
			continue
		}
		urls[item.ID] = item.URL
		ids = append(ids, item.ID)
	}

	res, err := completion.Apply(ctx, ids, completion.StoredPayloads{Store: s.store}, s.rng)
	if err != nil {
		return report, err
	}
	report.Candidates = res.Candidates
	report.Completed = res.Completed
	report.Remaining = len(res.Remaining)
	s.recorder.Remaining(s.name, report.Remaining)

	logger.Info("Work items filtered",
		"candidates", report.Candidates,
		"completed", report.Completed,
		"remaining", report.Remaining)

	for _, id := range res.Remaining {
		if err := ctx.Err(); err != nil {
			report.Cancelled = true
			return report, err
		}

		if err := s.fetchOne(ctx, logger, report, id, urls[id]); err != nil {
			if ctx.Err() != nil {
				report.Cancelled = true
			}
			return report, err
		}
	}

	logger.Info("Stage completed",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped)

	return report, nil
}

// fetchOne handles a single item. Only cancellation and storage failures are
// returned; remote failures are recorded in the report. Every request that
// went out is followed by the politeness pause, whatever its outcome.
func (s *FetchStage) fetchOne(ctx context.Context, logger *slog.Logger, report *StageReport, id, url string) error {
	exists, err := s.store.Exists(id)
	if err != nil {
		return err
	}
	if exists {
		report.skip(id, nil)
		s.recorder.Item(s.name, metrics.OutcomeSkipped)
		return nil
	}

	payload, err := s.fetcher.Fetch(ctx, url, s.extract)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("Skipping work item", "id", id, "url", url, "error", err)
		report.fail(id, err)
		s.recorder.Item(s.name, metrics.OutcomeFailed)
		return s.fetcher.Pause(ctx)
	}

	if err := s.store.Write(id, payload); err != nil {
		if !errors.Is(err, types.ErrPayloadExists) {
			return fmt.Errorf("failed to persist payload %s: %w", id, err)
		}
		report.skip(id, nil)
		s.recorder.Item(s.name, metrics.OutcomeSkipped)
		return s.fetcher.Pause(ctx)
	}

	logger.Debug("Stored payload", "id", id, "bytes", len(payload))
	report.Succeeded++
	s.recorder.Item(s.name, metrics.OutcomeSucceeded)

	return s.fetcher.Pause(ctx)
}
