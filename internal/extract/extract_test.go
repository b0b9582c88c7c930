package extract

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"courtside/internal/types"
)

const source = "2023-10-24-lal-vs-den-0022300061"

func loadGame(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/game.json")
	require.NoError(t, err)
	return data
}

func TestClockSeconds(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"32:15", 1935, true},
		{"0:07", 7, true},
		{"48:00", 2880, true},
		{"PT32M15.00S", 1935, true},
		{"PT00M45.50S", 45, true},
		{"", 0, false},
		{"32", 0, false},
		{"32:75", 0, false},
		{"ab:cd", 0, false},
		{"PT", 0, false},
	}

	for _, tt := range tests {
		got, ok := ClockSeconds(tt.in)
		require.Equal(t, tt.ok, ok, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
}

func TestDurationMinutes(t *testing.T) {
	got, ok := DurationMinutes("2:05")
	require.True(t, ok)
	require.Equal(t, int64(125), got)

	_, ok = DurationMinutes("2h05")
	require.False(t, ok)

	require.Nil(t, minutesValue(nil))
	require.Nil(t, minutesValue(125.0))
	require.Nil(t, secondsValue("garbage"))
	require.Equal(t, int64(1935), secondsValue("32:15"))
}

func TestGameInfo(t *testing.T) {
	records, err := GameInfo{}.Extract(source, loadGame(t))
	require.NoError(t, err)

	want := []types.Record{{
		"game_id":               "0022300061",
		"game_date":             "2023-10-24T19:30:00-04:00",
		"season_year":           "2023-24",
		"season_type":           "Regular Season",
		"attendance":            float64(19812),
		"sellout":               "1",
		"duration":              int64(137),
		"game_label":            "",
		"game_sublabel":         "",
		"series_text":           "",
		"series_game_number":    "",
		"home_team_id":          float64(1610612743),
		"home_team_city":        "Denver",
		"home_team_name":        "Nuggets",
		"home_team_score":       float64(119),
		"away_team_id":          float64(1610612747),
		"away_team_city":        "Los Angeles",
		"away_team_name":        "Lakers",
		"away_team_score":       float64(107),
		"final_quarter":         float64(4),
		"national_tv_broadcast": "TNT",
		"source_file":           source,
	}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("game info mismatch (-want +got):\n%s", diff)
	}
}

func TestGameInfoWithoutBroadcastOrAnalytics(t *testing.T) {
	payload := []byte(`{"props":{"pageProps":{"game":{"gameId":"1","homeTeam":{},"awayTeam":{}}}}}`)
	records, err := GameInfo{}.Extract("x", payload)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Nil(t, records[0]["national_tv_broadcast"])
	require.Nil(t, records[0]["season_year"])
	require.Nil(t, records[0]["duration"])
}

func TestMissingGameObject(t *testing.T) {
	payload := []byte(`{"props":{"pageProps":{}}}`)
	for _, ex := range []Extractor{GameInfo{}, Players{}, BoxScore{}, PlayByPlay{}} {
		_, err := ex.Extract("x", payload)
		require.True(t, types.IsMissingField(err), ex.Table())
	}
}

func TestPlayers(t *testing.T) {
	records, err := Players{}.Extract(source, loadGame(t))
	require.NoError(t, err)

	want := []types.Record{
		{"game_id": "0022300061", "player_id": float64(203999), "first_name": "NIKOLA", "last_name": "JOKIĆ", "source_file": source},
		{"game_id": "0022300061", "player_id": float64(1631212), "first_name": "PEYTON", "last_name": "WATSON", "source_file": source},
		{"game_id": "0022300061", "player_id": float64(2544), "first_name": "LEBRON", "last_name": "JAMES", "source_file": source},
		{"game_id": "0022300061", "player_id": float64(1629216), "first_name": "GABE", "last_name": "VINCENT", "source_file": source},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("players mismatch (-want +got):\n%s", diff)
	}
}

func TestPlayersRequiresHomeRoster(t *testing.T) {
	payload := []byte(`{"props":{"pageProps":{"game":{"gameId":"1","homeTeam":{"players":[]},"awayTeam":{"players":[{"personId":1}]}}}}}`)
	_, err := Players{}.Extract("x", payload)
	require.True(t, types.IsMissingField(err))
}

func TestBoxScore(t *testing.T) {
	records, err := BoxScore{}.Extract(source, loadGame(t))
	require.NoError(t, err)
	require.Len(t, records, 4)

	jokic := records[0]
	require.Equal(t, StatusActive, jokic["status"])
	require.Equal(t, int64(2145), jokic["seconds"])
	require.Equal(t, float64(12), jokic["field_goals_made"])
	require.Equal(t, float64(13), jokic["rebounds_total"])
	require.Equal(t, float64(14), jokic["plus_minus_points"])
	require.NotContains(t, jokic, "minutes")
	require.NotContains(t, jokic, "field_goals_percentage")
	require.NotContains(t, jokic, "fieldGoalsPercentage")

	want := []types.Record{
		{"game_id": "0022300061", "player_id": float64(1631212), "status": StatusInactive, "seconds": nil, "source_file": source},
		{"game_id": "0022300061", "player_id": float64(1629216), "status": "DNP - Injury/Illness", "seconds": nil, "points": nil, "source_file": source},
	}
	if diff := cmp.Diff(want, []types.Record{records[1], records[3]}); diff != "" {
		t.Fatalf("inactive rows mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, StatusActive, records[2]["status"])
	require.Equal(t, int64(1740), records[2]["seconds"])
}

func TestBoxScoreRequiresStatistics(t *testing.T) {
	payload := []byte(`{"props":{"pageProps":{"game":{"gameId":"1","homeTeam":{"players":[{"personId":1}]},"awayTeam":{}}}}}`)
	_, err := BoxScore{}.Extract("x", payload)
	require.True(t, types.IsMissingField(err))
}

func TestPlayerStatus(t *testing.T) {
	require.Equal(t, StatusActive, PlayerStatus(Object{"comment": ""}, false))
	require.Equal(t, StatusActive, PlayerStatus(Object{"comment": "  "}, true))
	require.Equal(t, StatusActive, PlayerStatus(Object{}, false))
	require.Equal(t, StatusInactive, PlayerStatus(Object{}, true))
	require.Equal(t, "DND - Coach's Decision", PlayerStatus(Object{"comment": "DND - Coach's Decision"}, false))
}

func TestStatColumn(t *testing.T) {
	require.Equal(t, "three_pointers_attempted", StatColumn("threePointersAttempted"))
	require.Equal(t, "points", StatColumn("points"))
	require.Equal(t, "blocks_received", StatColumn("blocksReceived"))
}

func TestPlayByPlay(t *testing.T) {
	records, err := PlayByPlay{}.Extract(source, loadGame(t))
	require.NoError(t, err)
	require.Len(t, records, 2)

	start := records[0]
	require.Nil(t, start["shot_result"])
	require.Nil(t, start["location"])
	require.Equal(t, "Period Start", start["description"])
	require.Equal(t, "0022300061", start["game_id"])

	shot := records[1]
	require.Equal(t, float64(7), shot["action_id"])
	require.Equal(t, "Made", shot["shot_result"])
	require.Equal(t, 1.3, shot["shot_distance"])
	require.NotContains(t, shot, "qualifiers")

	cols := append(PlayByPlayColumns(), "source_file")
	require.Len(t, shot, len(cols))
	for _, c := range cols {
		require.Contains(t, shot, c)
	}
}

func TestPlayByPlayRequiresActions(t *testing.T) {
	payload := []byte(`{"props":{"pageProps":{"game":{"gameId":"1"},"playByPlay":{"actions":[]}}}}`)
	_, err := PlayByPlay{}.Extract("x", payload)
	require.True(t, types.IsMissingField(err))
}

func TestDecodeRejectsNonObjects(t *testing.T) {
	_, err := Decode([]byte(`[1,2]`))
	require.Error(t, err)
	_, err = Decode([]byte(`null`))
	require.Error(t, err)
}
