package extract

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"courtside/internal/types"
)

const TablePlayer = "tbl_player"

// Players lists everyone on either roster, active or not.
type Players struct{}

func (Players) Table() string { return TablePlayer }

func (Players) Extract(source string, payload []byte) ([]types.Record, error) {
	_, game, err := decodeGame(source, payload)
	if err != nil {
		return nil, err
	}
	if _, err := requireHomePlayers(source, game); err != nil {
		return nil, err
	}

	upper := cases.Upper(language.Und)
	gameID := Value(game, "gameId")

	var records []types.Record
	for _, team := range teams(game) {
		for _, entry := range roster(team) {
			records = append(records, types.Record{
				"game_id":              gameID,
				"player_id":            entry.player["personId"],
				"first_name":           upperName(upper, entry.player["firstName"]),
				"last_name":            upperName(upper, entry.player["familyName"]),
				types.ProvenanceColumn: source,
			})
		}
	}

	return records, nil
}

func upperName(c cases.Caser, v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return c.String(s)
}
