package extract

import (
	"courtside/internal/types"
)

// Extractor turns one raw game payload into rows for a single table.
type Extractor interface {
	Table() string
	Extract(source string, payload []byte) ([]types.Record, error)
}

func gameObject(source string, root Object) (Object, error) {
	game, ok := GetObject(root, "props", "pageProps", "game")
	if !ok {
		return nil, types.NewMissingFieldError(source, "props.pageProps.game")
	}
	return game, nil
}

func decodeGame(source string, payload []byte) (Object, Object, error) {
	root, err := Decode(payload)
	if err != nil {
		return nil, nil, err
	}
	game, err := gameObject(source, root)
	if err != nil {
		return nil, nil, err
	}
	return root, game, nil
}

type rosterEntry struct {
	player   Object
	inactive bool
}

// roster lists a team's active players followed by its inactive ones.
func roster(team Object) []rosterEntry {
	var out []rosterEntry
	players, _ := GetArray(team, "players")
	for _, p := range objects(players) {
		out = append(out, rosterEntry{player: p})
	}
	inactives, _ := GetArray(team, "inactives")
	for _, p := range objects(inactives) {
		out = append(out, rosterEntry{player: p, inactive: true})
	}
	return out
}

func teams(game Object) []Object {
	var out []Object
	for _, side := range []string{"homeTeam", "awayTeam"} {
		if team, ok := GetObject(game, side); ok {
			out = append(out, team)
		}
	}
	return out
}

func requireHomePlayers(source string, game Object) ([]interface{}, error) {
	players, _ := GetArray(game, "homeTeam", "players")
	if len(players) == 0 {
		return nil, types.NewMissingFieldError(source, "homeTeam.players").
			WithDetail("game_id", Value(game, "gameId"))
	}
	return players, nil
}
