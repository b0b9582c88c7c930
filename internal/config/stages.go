package config

import (
	"path/filepath"

	"courtside/internal/core"
	"courtside/internal/extract"
	"courtside/internal/schema"
)

const (
	StageSeasons  = "seasons"
	StageDates    = "dates"
	StageGames    = "games"
	StageGameInfo = "game_info"
	StagePlayers  = "players"
	StageBox      = "box"
	StagePBP      = "pbp"
)

// StageNames lists every stage in execution order.
var StageNames = []string{
	StageSeasons,
	StageDates,
	StageGames,
	StageGameInfo,
	StagePlayers,
	StageBox,
	StagePBP,
}

func IsStage(name string) bool {
	for _, s := range StageNames {
		if s == name {
			return true
		}
	}
	return false
}

const (
	seasonsDir = "nba_com/stage_1_raw_wikipedia_html"
	datesDir   = "nba_com/stage_2_raw_date_json"
	gamesDir   = "nba_com/stage_3_raw_game_json"
)

func (p PipelineConfig) SeasonsDir() string {
	return filepath.Join(p.DataDir, filepath.FromSlash(seasonsDir))
}

func (p PipelineConfig) DatesDir() string {
	return filepath.Join(p.DataDir, filepath.FromSlash(datesDir))
}

func (p PipelineConfig) GamesDir() string {
	return filepath.Join(p.DataDir, filepath.FromSlash(gamesDir))
}

// ErrorDir is where a load stage keeps copies of payloads it failed on.
func (p PipelineConfig) ErrorDir(stage string) string {
	return filepath.Join(p.DataDir, "nba_com", "stage_4_"+stage+"_error_files")
}

// StageInfo describes one configured stage without building it.
type StageInfo struct {
	Name   string
	Kind   string
	Target string
}

var loadTables = map[string]string{
	StageGameInfo: extract.TableGameInfo,
	StagePlayers:  extract.TablePlayer,
	StageBox:      extract.TableBox,
	StagePBP:      extract.TablePlayByPlay,
}

// DescribeStages lists the configured stages with their directory or table.
func (c *Config) DescribeStages() ([]StageInfo, error) {
	registry, err := schema.Load(c.Storage.Descriptor)
	if err != nil {
		return nil, err
	}

	infos := make([]StageInfo, 0, len(c.Pipeline.Stages))
	for _, name := range c.Pipeline.Stages {
		switch name {
		case StageSeasons:
			infos = append(infos, StageInfo{Name: name, Kind: core.KindFetch, Target: c.Pipeline.SeasonsDir()})
		case StageDates:
			infos = append(infos, StageInfo{Name: name, Kind: core.KindFetch, Target: c.Pipeline.DatesDir()})
		case StageGames:
			infos = append(infos, StageInfo{Name: name, Kind: core.KindFetch, Target: c.Pipeline.GamesDir()})
		default:
			table, err := registry.Table(loadTables[name])
			if err != nil {
				return nil, err
			}
			infos = append(infos, StageInfo{Name: name, Kind: core.KindLoad, Target: table.QualifiedName()})
		}
	}
	return infos, nil
}
