package core

import (
	"context"
	"log/slog"
	"time"

	"courtside/internal/fetcher"
)

const (
	KindFetch = "fetch"
	KindLoad  = "load"
)

type Stage interface {
	Name() string
	Kind() string
	// Target names where the stage writes: a directory or a table.
	Target() string
	Run(ctx context.Context, logger *slog.Logger) (*StageReport, error)
}

// HTTPFetcher is what fetch stages need from the network layer.
type HTTPFetcher interface {
	Fetch(ctx context.Context, url string, extract fetcher.Extractor) ([]byte, error)
	Pause(ctx context.Context) error
}

// Recorder receives stage counters. Metrics satisfies it.
type Recorder interface {
	Item(stage, outcome string)
	Rows(table string, inserted int64, rejected int)
	Remaining(stage string, n int)
	StageDone(stage string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) Item(string, string)             {}
func (nopRecorder) Rows(string, int64, int)         {}
func (nopRecorder) Remaining(string, int)           {}
func (nopRecorder) StageDone(string, time.Duration) {}
