package extract

import (
	"courtside/internal/types"
)

const TablePlayByPlay = "tbl_pbp"

// pbpColumns keeps the projection order of a play-by-play row.
var pbpColumns = []struct{ key, column string }{
	{"actionId", "action_id"},
	{"clock", "clock"},
	{"period", "period"},
	{"teamId", "team_id"},
	{"personId", "person_id"},
	{"xLegacy", "x_legacy"},
	{"yLegacy", "y_legacy"},
	{"shotDistance", "shot_distance"},
	{"shotResult", "shot_result"},
	{"isFieldGoal", "is_field_goal"},
	{"scoreHome", "score_home"},
	{"scoreAway", "score_away"},
	{"pointsTotal", "points_total"},
	{"location", "location"},
	{"description", "description"},
	{"actionType", "action_type"},
	{"subType", "sub_type"},
}

// PlayByPlayColumns lists the projected columns in order, game_id first.
func PlayByPlayColumns() []string {
	cols := []string{"game_id"}
	for _, c := range pbpColumns {
		cols = append(cols, c.column)
	}
	return cols
}

type PlayByPlay struct{}

func (PlayByPlay) Table() string { return TablePlayByPlay }

func (PlayByPlay) Extract(source string, payload []byte) ([]types.Record, error) {
	root, game, err := decodeGame(source, payload)
	if err != nil {
		return nil, err
	}
	actions, _ := GetArray(root, "props", "pageProps", "playByPlay", "actions")
	if len(actions) == 0 {
		return nil, types.NewMissingFieldError(source, "props.pageProps.playByPlay.actions")
	}

	gameID := Value(game, "gameId")

	records := make([]types.Record, 0, len(actions))
	for _, action := range objects(actions) {
		rec := types.Record{
			"game_id":              gameID,
			types.ProvenanceColumn: source,
		}
		for _, c := range pbpColumns {
			v := action[c.key]
			if s, ok := v.(string); ok && s == "" {
				v = nil
			}
			rec[c.column] = v
		}
		records = append(records, rec)
	}

	return records, nil
}
