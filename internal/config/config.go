package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"

	"courtside/internal/fetcher"
)

const (
	DefaultPath = "courtside.toml"
	EnvPGDSN    = "COURTSIDE_PG_DSN"
)

type Config struct {
	Pipeline PipelineConfig `toml:"pipeline"`
	Log      LogConfig      `toml:"log"`
	Storage  StorageConfig  `toml:"storage"`
	Fetch    FetchConfig    `toml:"fetch"`
	URLs     URLConfig      `toml:"urls"`
	Seasons  SeasonsConfig  `toml:"seasons"`
	Dates    DatesConfig    `toml:"dates"`
	PBP      PBPConfig      `toml:"pbp"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

type PipelineConfig struct {
	Name           string   `toml:"name"`
	DataDir        string   `toml:"data_dir"`
	Stages         []string `toml:"stages"`
	KeepErrorFiles bool     `toml:"keep_error_files"`
	Seed           int64    `toml:"seed"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type StorageConfig struct {
	Type           string `toml:"type"`
	Path           string `toml:"path"`
	DSN            string `toml:"dsn"`
	Descriptor     string `toml:"descriptor"`
	BatchSize      int    `toml:"batch_size"`
	MaxConns       int    `toml:"max_conns"`
	SkipMigrations bool   `toml:"skip_migrations"`
}

type FetchConfig struct {
	Timeout    string   `toml:"timeout"`
	MinDelay   string   `toml:"min_delay"`
	MaxDelay   string   `toml:"max_delay"`
	Backoff    string   `toml:"backoff"`
	MaxRetries *int     `toml:"max_retries"`
	UserAgents []string `toml:"user_agents"`
}

type URLConfig struct {
	Wikipedia string `toml:"wikipedia"`
	Date      string `toml:"date"`
	Game      string `toml:"game"`
}

type SeasonsConfig struct {
	StartYear int `toml:"start_year"`
	// EndYear is exclusive; zero means the current year.
	EndYear int `toml:"end_year"`
}

type DatesConfig struct {
	MinYear int `toml:"min_year"`
}

type PBPConfig struct {
	MinGameMonth string `toml:"min_game_month"`
}

type MetricsConfig struct {
	Addr string `toml:"addr"`
}

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Default is the configuration used when no file is given.
func Default() *Config {
	var config Config
	if err := validateConfig(&config); err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return &config
}

func validateConfig(config *Config) error {
	if config.Pipeline.Name == "" {
		config.Pipeline.Name = "courtside"
	}

	if config.Pipeline.DataDir == "" {
		config.Pipeline.DataDir = "./data"
	}

	if len(config.Pipeline.Stages) == 0 {
		config.Pipeline.Stages = append([]string(nil), StageNames...)
	}
	for _, name := range config.Pipeline.Stages {
		if !IsStage(name) {
			return fmt.Errorf("unknown stage: %s", name)
		}
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if _, err := parseLevel(config.Log.Level); err != nil {
		return err
	}

	if config.Log.Format == "" {
		config.Log.Format = "text"
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}

	if err := validateStorage(&config.Storage); err != nil {
		return err
	}

	if err := validateFetch(&config.Fetch); err != nil {
		return err
	}

	if config.URLs.Wikipedia == "" {
		config.URLs.Wikipedia = "https://en.wikipedia.org/wiki/{id}"
	}
	if config.URLs.Date == "" {
		config.URLs.Date = "https://www.nba.com/games?date={id}"
	}
	if config.URLs.Game == "" {
		config.URLs.Game = "https://www.nba.com/game/{id}"
	}

	if config.Seasons.StartYear == 0 {
		config.Seasons.StartYear = 1970
	}
	if config.Seasons.EndYear != 0 && config.Seasons.EndYear <= config.Seasons.StartYear {
		return fmt.Errorf("seasons.end_year %d must be after start_year %d", config.Seasons.EndYear, config.Seasons.StartYear)
	}

	if config.PBP.MinGameMonth == "" {
		config.PBP.MinGameMonth = "1996-08"
	}
	if !monthPattern.MatchString(config.PBP.MinGameMonth) {
		return fmt.Errorf("invalid pbp.min_game_month: %s (want YYYY-MM)", config.PBP.MinGameMonth)
	}

	return nil
}

func validateStorage(s *StorageConfig) error {
	if s.Type == "" {
		s.Type = "sqlite"
	}

	if dsn := os.Getenv(EnvPGDSN); dsn != "" {
		s.DSN = dsn
	}

	switch s.Type {
	case "sqlite":
		if s.Path == "" {
			s.Path = "./courtside.db"
		}
	case "postgres":
		if s.DSN == "" {
			return fmt.Errorf("storage.dsn (or %s) is required for postgres", EnvPGDSN)
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", s.Type)
	}

	if s.BatchSize <= 0 {
		s.BatchSize = 1000
	}
	if s.MaxConns < 0 {
		return fmt.Errorf("invalid storage.max_conns: %d", s.MaxConns)
	}

	return nil
}

func validateFetch(f *FetchConfig) error {
	defaults := []struct {
		name  string
		value *string
		def   string
	}{
		{"timeout", &f.Timeout, "30s"},
		{"min_delay", &f.MinDelay, "5s"},
		{"max_delay", &f.MaxDelay, "10s"},
		{"backoff", &f.Backoff, "60s"},
	}
	for _, d := range defaults {
		if *d.value == "" {
			*d.value = d.def
		}
		if _, err := GetDuration(*d.value); err != nil {
			return fmt.Errorf("invalid fetch.%s: %w", d.name, err)
		}
	}

	minDelay, _ := GetDuration(f.MinDelay)
	maxDelay, _ := GetDuration(f.MaxDelay)
	if maxDelay < minDelay {
		return fmt.Errorf("fetch.max_delay %s is below min_delay %s", f.MaxDelay, f.MinDelay)
	}

	if f.MaxRetries == nil {
		retries := 2
		f.MaxRetries = &retries
	}
	if *f.MaxRetries < 0 {
		return fmt.Errorf("invalid fetch.max_retries: %d", *f.MaxRetries)
	}

	if len(f.UserAgents) == 0 {
		f.UserAgents = append([]string(nil), fetcher.DefaultUserAgents...)
	}

	return nil
}

func GetDuration(value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", value)
	}
	return d, nil
}

// FetcherConfig converts the validated fetch section.
func (f FetchConfig) FetcherConfig() fetcher.Config {
	timeout, _ := GetDuration(f.Timeout)
	minDelay, _ := GetDuration(f.MinDelay)
	maxDelay, _ := GetDuration(f.MaxDelay)
	backoff, _ := GetDuration(f.Backoff)

	retries := 0
	if f.MaxRetries != nil {
		retries = *f.MaxRetries
	}

	return fetcher.Config{
		Timeout:    timeout,
		MinDelay:   minDelay,
		MaxDelay:   maxDelay,
		Backoff:    backoff,
		MaxRetries: retries,
		UserAgents: f.UserAgents,
	}
}
