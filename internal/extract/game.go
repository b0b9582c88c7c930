package extract

import (
	"courtside/internal/types"
)

const TableGameInfo = "tbl_game_info"

// GameInfo produces one summary row per game.
type GameInfo struct{}

func (GameInfo) Table() string { return TableGameInfo }

func (GameInfo) Extract(source string, payload []byte) ([]types.Record, error) {
	root, game, err := decodeGame(source, payload)
	if err != nil {
		return nil, err
	}
	analytics, _ := GetObject(root, "props", "pageProps", "analyticsObject")

	var broadcast interface{}
	if nationals, ok := GetArray(game, "broadcasters", "nationalBroadcasters"); ok && len(nationals) > 0 {
		if first, ok := nationals[0].(Object); ok {
			broadcast = first["broadcasterDisplay"]
		}
	}

	rec := types.Record{
		"game_id":               Value(game, "gameId"),
		"game_date":             Value(game, "gameEt"),
		"season_year":           Value(analytics, "season"),
		"season_type":           Value(analytics, "seasonType"),
		"attendance":            Value(game, "attendance"),
		"sellout":               Value(game, "sellout"),
		"duration":              minutesValue(Value(game, "duration")),
		"game_label":            Value(game, "gameLabel"),
		"game_sublabel":         Value(game, "gameSubLabel"),
		"series_text":           Value(game, "seriesText"),
		"series_game_number":    Value(game, "seriesGameNumber"),
		"final_quarter":         Value(analytics, "gameQuarter"),
		"national_tv_broadcast": broadcast,
		types.ProvenanceColumn:  source,
	}

	for _, side := range []struct{ key, prefix string }{{"homeTeam", "home_team_"}, {"awayTeam", "away_team_"}} {
		team, _ := GetObject(game, side.key)
		rec[side.prefix+"id"] = Value(team, "teamId")
		rec[side.prefix+"city"] = Value(team, "teamCity")
		rec[side.prefix+"name"] = Value(team, "teamName")
		rec[side.prefix+"score"] = Value(team, "score")
	}

	if rec["game_id"] == nil {
		return nil, types.NewMissingFieldError(source, "game.gameId")
	}

	return []types.Record{rec}, nil
}
