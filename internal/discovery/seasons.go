package discovery

import "fmt"

// SeasonTags lists season page identifiers for seasons starting in
// [start, end), e.g. 1999 -> "1999-00_NBA_season".
func SeasonTags(start, end int) []string {
	if end <= start {
		return nil
	}
	tags := make([]string, 0, end-start)
	for year := start; year < end; year++ {
		tags = append(tags, SeasonTag(year))
	}
	return tags
}

func SeasonTag(year int) string {
	return fmt.Sprintf("%d-%02d_NBA_season", year, (year+1)%100)
}
