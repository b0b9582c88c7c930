package discovery

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type memReader map[string][]byte

func (m memReader) List() ([]string, error) {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m memReader) Read(id string) ([]byte, error) {
	data, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("no payload %s", id)
	}
	return data, nil
}

func seasonPage(duration string) []byte {
	return []byte(`<html><body><table class="infobox">
<tr><th>League</th><td>National Basketball Association</td></tr>
<tr><th scope="row">Duration</th><td>` + duration + `</td></tr>
</table></body></html>`)
}

func TestSeasonTags(t *testing.T) {
	require.Equal(t, []string{"1998-99_NBA_season", "1999-00_NBA_season", "2000-01_NBA_season"}, SeasonTags(1998, 2001))
	require.Equal(t, "1970-71_NBA_season", SeasonTag(1970))
	require.Empty(t, SeasonTags(2024, 2024))
}

func TestSeasonSpan(t *testing.T) {
	tests := []struct {
		name     string
		duration string
		first    string
		last     string
	}{
		{
			name:     "regular and playoffs",
			duration: "October 24, 2023 – April 14, 2024<br/>April 16–19, 2024 (Play-in)<br/>April 20 – June 17, 2024 (Playoffs)",
			first:    "2023-10-24",
			last:     "2024-06-17",
		},
		{
			name:     "ends with a day range",
			duration: "October 22, 2019 – March 11, 2020<br/>August 15–16, 2020 (Play-in)",
			first:    "2019-10-22",
			last:     "2020-08-16",
		},
		{
			name:     "starts with a day range",
			duration: "May 3–5, 2021",
			first:    "2021-05-03",
			last:     "2021-05-05",
		},
		{
			name:     "non-breaking spaces",
			duration: "October&nbsp;19,&nbsp;2021 – June&nbsp;16,&nbsp;2022",
			first:    "2021-10-19",
			last:     "2022-06-16",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last, err := SeasonSpan(seasonPage(tt.duration))
			require.NoError(t, err)
			require.Equal(t, tt.first, first.Format(DateLayout))
			require.Equal(t, tt.last, last.Format(DateLayout))
		})
	}
}

func TestSeasonSpanErrors(t *testing.T) {
	_, _, err := SeasonSpan([]byte(`<html><body><table><tr><th>League</th><td>NBA</td></tr></table></body></html>`))
	require.ErrorContains(t, err, "no Duration row")

	_, _, err = SeasonSpan(seasonPage("TBD"))
	require.ErrorContains(t, err, "no dates")
}

func TestDaysBetween(t *testing.T) {
	first := time.Date(2024, 2, 27, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	require.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"},
		DaysBetween(first, last, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	// today and later are excluded
	require.Equal(t, []string{"2024-02-27", "2024-02-28"},
		DaysBetween(first, last, time.Date(2024, 2, 29, 15, 30, 0, 0, time.UTC)))
}

func TestGameDates(t *testing.T) {
	seasons := memReader{
		"2022-23_NBA_season": seasonPage("October 18, 2022 – October 20, 2022"),
		"2023-24_NBA_season": seasonPage("October 24, 2023 – October 26, 2023"),
		"1999-00_NBA_season": seasonPage("November 2, 1999 – November 3, 1999"),
		"broken_NBA_season":  []byte("<html><body>no infobox</body></html>"),
	}

	dates, err := GameDates(seasons, 2000, time.Date(2023, 10, 26, 0, 0, 0, 0, time.UTC), discard)
	require.NoError(t, err)
	require.Equal(t, []string{"2022-10-18", "2022-10-19", "2022-10-20", "2023-10-24", "2023-10-25"}, dates)
}

const datePayload = `{"props":{"pageProps":{"gameCardFeed":{"modules":[{"cards":[
 {"cardData":{"actions":[
   {"resourceLocator":{"resourceUrl":"https://www.nba.com/watch"}},
   {"resourceLocator":{"resourceUrl":"https://www.nba.com/tickets"}},
   {"resourceLocator":{"resourceUrl":"https://www.nba.com/game/lal-vs-den-0022300061"}}]}},
 {"cardData":{"actions":[]}},
 {"cardData":{}},
 {"cardData":{"actions":[
   {"resourceLocator":{"resourceUrl":"https://www.nba.com/game/phx-vs-gsw-0022300062/box-score?tab=1"}}]}}
]}]}}}}`

func TestGameKeys(t *testing.T) {
	keys, err := GameKeys("2023-10-24", []byte(datePayload))
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"2023-10-24-lal-vs-den-0022300061", "2023-10-24-phx-vs-gsw-0022300062"}, keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestGameKeysWithoutModules(t *testing.T) {
	for _, payload := range []string{
		`{"props":{"pageProps":{"gameCardFeed":{"modules":[]}}}}`,
		`{"props":{"pageProps":{}}}`,
	} {
		keys, err := GameKeys("2023-07-01", []byte(payload))
		require.NoError(t, err)
		require.Empty(t, keys)
	}

	_, err := GameKeys("2023-07-01", []byte(`not json`))
	require.Error(t, err)
}

func TestAllGameKeys(t *testing.T) {
	dates := memReader{
		"2023-10-24": []byte(datePayload),
		"2023-10-25": []byte(`{"props":{"pageProps":{"gameCardFeed":{"modules":[]}}}}`),
		"2023-10-26": []byte(`{`),
		"latest":     []byte(datePayload),
	}

	keys, err := AllGameKeys(dates, discard)
	require.NoError(t, err)
	require.Equal(t, []string{"2023-10-24-lal-vs-den-0022300061", "2023-10-24-phx-vs-gsw-0022300062"}, keys)
}

func TestGameSegment(t *testing.T) {
	seg, err := GameSegment("2023-10-24-lal-vs-den-0022300061")
	require.NoError(t, err)
	require.Equal(t, "lal-vs-den-0022300061", seg)

	for _, bad := range []string{"", "2023-10-24", "2023-10-24-", "2023-13-24-x", "abcd-ef-gh-x"} {
		_, err := GameSegment(bad)
		require.Error(t, err, bad)
	}
}

func TestOnOrAfterMonth(t *testing.T) {
	keys := []string{"1996-07-30-a", "1996-08-01-b", "2001-01-01-c", "bad"}
	require.Equal(t, []string{"1996-08-01-b", "2001-01-01-c"}, OnOrAfterMonth(keys, "1996-08"))
	require.Equal(t, keys, OnOrAfterMonth(keys, ""))
}
