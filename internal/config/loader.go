package config

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"courtside/internal/components"
	"courtside/internal/core"
	"courtside/internal/discovery"
	"courtside/internal/extract"
	"courtside/internal/fetcher"
	"courtside/internal/loader"
	"courtside/internal/rawstore"
	"courtside/internal/schema"
	"courtside/internal/storage"
	_ "courtside/internal/storage/postgres"
	_ "courtside/internal/storage/sqlite"
	"courtside/internal/types"
)

// Loader wires configuration into components and the stage pipeline.
type Loader struct {
	config      *Config
	logger      *slog.Logger
	registry    *components.Registry
	storageComp *components.StorageComponent
	metricsComp *components.MetricsComponent
	pipeline    *core.Pipeline
	clock       func() time.Time
	fetcherOpts []fetcher.Option
}

type LoaderOption func(*Loader)

// WithClock replaces time.Now for date discovery.
func WithClock(clock func() time.Time) LoaderOption {
	return func(l *Loader) { l.clock = clock }
}

func WithFetcherOptions(opts ...fetcher.Option) LoaderOption {
	return func(l *Loader) { l.fetcherOpts = append(l.fetcherOpts, opts...) }
}

func NewLoader(cfg *Config, logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		config:   cfg,
		logger:   logger,
		registry: components.NewRegistry(logger),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Initialize starts the components and assembles the pipeline.
func (l *Loader) Initialize(ctx context.Context) (*core.Pipeline, error) {
	if err := l.initializeComponents(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	if err := l.buildPipeline(); err != nil {
		l.registry.CloseAll(ctx)
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	return l.pipeline, nil
}

func (l *Loader) initializeComponents(ctx context.Context) error {
	l.logger.Debug("Initializing components")

	l.storageComp = components.NewStorageComponent(storage.Options{
		Type:     l.config.Storage.Type,
		Path:     l.config.Storage.Path,
		DSN:      l.config.Storage.DSN,
		MaxConns: int32(l.config.Storage.MaxConns),
		Logger:   l.logger,
	}, !l.config.Storage.SkipMigrations)
	l.metricsComp = components.NewMetricsComponent()

	if err := l.registry.Register(l.storageComp); err != nil {
		return err
	}
	if err := l.registry.Register(l.metricsComp); err != nil {
		return err
	}
	if l.config.Metrics.Addr != "" {
		server := components.NewServerComponent(l.config.Metrics.Addr, l.metricsComp, l.logger)
		if err := l.registry.Register(server); err != nil {
			return err
		}
	}

	return l.registry.InitializeAll(ctx)
}

// Migrate opens the destination and applies migrations without building stages.
func (l *Loader) Migrate(ctx context.Context) error {
	comp := components.NewStorageComponent(storage.Options{
		Type:     l.config.Storage.Type,
		Path:     l.config.Storage.Path,
		DSN:      l.config.Storage.DSN,
		MaxConns: int32(l.config.Storage.MaxConns),
		Logger:   l.logger,
	}, true)
	if err := comp.Validate(); err != nil {
		return err
	}
	if err := comp.Initialize(ctx); err != nil {
		return err
	}
	return comp.Close(ctx)
}

func (l *Loader) newRand() *rand.Rand {
	seed := l.config.Pipeline.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func (l *Loader) buildPipeline() error {
	cfg := l.config
	recorder := l.metricsComp.Metrics()
	dest := l.storageComp.Destination()
	rng := l.newRand()

	seasonStore, err := rawstore.NewDirStore(cfg.Pipeline.SeasonsDir(), rawstore.Naming{Extension: ".html"}, l.logger)
	if err != nil {
		return err
	}
	dateStore, err := rawstore.NewDirStore(cfg.Pipeline.DatesDir(), rawstore.Naming{Prefix: "nba_com_", Extension: ".json"}, l.logger)
	if err != nil {
		return err
	}
	gameStore, err := rawstore.NewDirStore(cfg.Pipeline.GamesDir(), rawstore.Naming{Extension: ".json"}, l.logger)
	if err != nil {
		return err
	}

	registry, err := schema.Load(cfg.Storage.Descriptor)
	if err != nil {
		return err
	}

	fetchOpts := append([]fetcher.Option{fetcher.WithRand(l.newRand())}, l.fetcherOpts...)
	httpFetcher := fetcher.New(cfg.Fetch.FetcherConfig(), l.logger, fetchOpts...)
	tableLoader := loader.New(dest, cfg.Storage.BatchSize, l.logger)

	endYear := cfg.Seasons.EndYear
	if endYear == 0 {
		endYear = l.clock().Year()
	}

	fetchStages := map[string]core.FetchStageConfig{
		StageSeasons: {
			Store:   seasonStore,
			Target:  seasonStore.Dir(),
			Extract: fetcher.HTMLDocument,
			Discover: func(ctx context.Context) ([]types.WorkItem, error) {
				return workItems(discovery.SeasonTags(cfg.Seasons.StartYear, endYear), cfg.URLs.Wikipedia, nil)
			},
		},
		StageDates: {
			Store:   dateStore,
			Target:  dateStore.Dir(),
			Extract: fetcher.NextData,
			Discover: func(ctx context.Context) ([]types.WorkItem, error) {
				dates, err := discovery.GameDates(seasonStore, cfg.Dates.MinYear, l.clock(), l.logger)
				if err != nil {
					return nil, err
				}
				return workItems(dates, cfg.URLs.Date, nil)
			},
		},
		StageGames: {
			Store:   gameStore,
			Target:  gameStore.Dir(),
			Extract: fetcher.NextData,
			Discover: func(ctx context.Context) ([]types.WorkItem, error) {
				keys, err := discovery.AllGameKeys(dateStore, l.logger)
				if err != nil {
					return nil, err
				}
				return workItems(keys, cfg.URLs.Game, discovery.GameSegment)
			},
		},
	}

	loadStages := map[string]struct {
		extractor  extract.Extractor
		candidates func([]string) []string
	}{
		StageGameInfo: {extractor: extract.GameInfo{}},
		StagePlayers:  {extractor: extract.Players{}},
		StageBox:      {extractor: extract.BoxScore{}},
		StagePBP: {
			extractor: extract.PlayByPlay{},
			candidates: func(ids []string) []string {
				return discovery.OnOrAfterMonth(ids, cfg.PBP.MinGameMonth)
			},
		},
	}

	l.pipeline = core.NewPipeline(l.logger, recorder)

	for _, name := range cfg.Pipeline.Stages {
		if fs, ok := fetchStages[name]; ok {
			fs.Name = name
			fs.Fetcher = httpFetcher
			fs.Rand = rng
			fs.Recorder = recorder
			l.pipeline.AddStage(core.NewFetchStage(fs))
			continue
		}

		ls, ok := loadStages[name]
		if !ok {
			return fmt.Errorf("unknown stage: %s", name)
		}
		table, err := registry.Table(ls.extractor.Table())
		if err != nil {
			return err
		}
		errorDir := ""
		if cfg.Pipeline.KeepErrorFiles {
			errorDir = cfg.Pipeline.ErrorDir(name)
		}
		l.pipeline.AddStage(core.NewLoadStage(core.LoadStageConfig{
			Name:       name,
			Source:     gameStore,
			Extractor:  ls.extractor,
			Table:      table,
			Dest:       dest,
			Loader:     tableLoader,
			Candidates: ls.candidates,
			ErrorDir:   errorDir,
			Rand:       rng,
			Recorder:   recorder,
		}))
	}

	return nil
}

// workItems expands the URL template for each id. pathOf, when set, maps
// the id to the path segment placed in the URL.
func workItems(ids []string, template string, pathOf func(string) (string, error)) ([]types.WorkItem, error) {
	items := make([]types.WorkItem, 0, len(ids))
	for _, id := range ids {
		segment := id
		if pathOf != nil {
			var err error
			segment, err = pathOf(id)
			if err != nil {
				return nil, err
			}
		}
		items = append(items, types.WorkItem{ID: id, URL: strings.ReplaceAll(template, "{id}", segment)})
	}
	return items, nil
}

func (l *Loader) Shutdown(ctx context.Context) error {
	l.logger.Debug("Shutting down components")
	return l.registry.CloseAll(ctx)
}

// LoadAndBuild reads the config file and returns a ready pipeline together
// with its loader, which the caller shuts down after use.
func LoadAndBuild(ctx context.Context, cfg *Config, logger *slog.Logger, opts ...LoaderOption) (*core.Pipeline, *Loader, error) {
	l := NewLoader(cfg, logger, opts...)
	pipeline, err := l.Initialize(ctx)
	if err != nil {
		return nil, nil, err
	}
	return pipeline, l, nil
}
