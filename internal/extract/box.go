package extract

import (
	"strings"

	"courtside/internal/types"
)

const (
	TableBox     = "tbl_box"
	StatusActive = "active"

	// StatusInactive is given to inactive-list players who carry no comment.
	StatusInactive = "inactive"
)

var statColumns = map[string]string{
	"fieldGoalsMade":         "field_goals_made",
	"fieldGoalsAttempted":    "field_goals_attempted",
	"threePointersMade":      "three_pointers_made",
	"threePointersAttempted": "three_pointers_attempted",
	"freeThrowsMade":         "free_throws_made",
	"freeThrowsAttempted":    "free_throws_attempted",
	"reboundsOffensive":      "rebounds_offensive",
	"reboundsDefensive":      "rebounds_defensive",
	"reboundsTotal":          "rebounds_total",
	"foulsPersonal":          "fouls_personal",
	"plusMinusPoints":        "plus_minus_points",
	"assists":                "assists",
	"steals":                 "steals",
	"blocks":                 "blocks",
	"turnovers":              "turnovers",
	"points":                 "points",
}

// identity columns survive the inactive-player nulling.
var boxIdentity = map[string]bool{
	"game_id":              true,
	"player_id":            true,
	"status":               true,
	types.ProvenanceColumn: true,
}

func StatColumn(key string) string {
	if col, ok := statColumns[key]; ok {
		return col
	}
	return snakeCase(key)
}

// PlayerStatus is the comment when one is given, otherwise active. Players
// on the inactive list without a comment key are inactive.
func PlayerStatus(player Object, onInactiveList bool) string {
	comment, present := player["comment"]
	if !present {
		if onInactiveList {
			return StatusInactive
		}
		return StatusActive
	}
	if s, ok := comment.(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return StatusActive
}

// BoxScore produces one row per player with the traditional stat line.
type BoxScore struct{}

func (BoxScore) Table() string { return TableBox }

func (BoxScore) Extract(source string, payload []byte) ([]types.Record, error) {
	_, game, err := decodeGame(source, payload)
	if err != nil {
		return nil, err
	}
	players, err := requireHomePlayers(source, game)
	if err != nil {
		return nil, err
	}
	if first, ok := players[0].(Object); !ok || first["statistics"] == nil {
		return nil, types.NewMissingFieldError(source, "homeTeam.players[0].statistics")
	}

	gameID := Value(game, "gameId")

	var records []types.Record
	for _, team := range teams(game) {
		for _, entry := range roster(team) {
			records = append(records, boxRecord(gameID, source, entry))
		}
	}

	return records, nil
}

func boxRecord(gameID interface{}, source string, entry rosterEntry) types.Record {
	status := PlayerStatus(entry.player, entry.inactive)
	rec := types.Record{
		"game_id":              gameID,
		"player_id":            entry.player["personId"],
		"status":               status,
		"seconds":              nil,
		types.ProvenanceColumn: source,
	}

	stats, _ := entry.player["statistics"].(Object)
	for key, value := range stats {
		switch {
		case key == "minutes":
			rec["seconds"] = secondsValue(value)
		case strings.Contains(key, "Percentage"):
		default:
			rec[StatColumn(key)] = value
		}
	}

	if status != StatusActive {
		for col := range rec {
			if !boxIdentity[col] {
				rec[col] = nil
			}
		}
	}

	return rec
}
