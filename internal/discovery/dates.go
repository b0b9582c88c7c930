package discovery

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DateLayout = "2006-01-02"
	pageLayout = "January 2, 2006"
)

var (
	durationDate = regexp.MustCompile(`\w+\s\d{1,2}(?:[–-]\d{1,2})?,\s\d{4}`)
	rangeStart   = regexp.MustCompile(`\d{1,2}[–-]`)
	rangeEnd     = regexp.MustCompile(`[–-]\d{1,2}`)
)

// Reader is the read side of a raw payload store.
type Reader interface {
	List() ([]string, error)
	Read(id string) ([]byte, error)
}

// SeasonSpan reads the first and last day of a season from the "Duration"
// row of its page.
func SeasonSpan(page []byte) (time.Time, time.Time, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse page: %w", err)
	}

	th := doc.Find("th").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == "Duration"
	}).First()
	if th.Length() == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("no Duration row")
	}

	text := strings.ReplaceAll(th.NextAllFiltered("td").First().Text(), "\u00a0", " ")
	matches := durationDate.FindAllString(text, -1)
	if len(matches) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("no dates in Duration row %q", text)
	}

	first, err := time.Parse(pageLayout, rangeEnd.ReplaceAllString(matches[0], ""))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse start date: %w", err)
	}
	last, err := time.Parse(pageLayout, rangeStart.ReplaceAllString(matches[len(matches)-1], ""))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse end date: %w", err)
	}
	if last.Before(first) {
		return time.Time{}, time.Time{}, fmt.Errorf("season ends %s before it starts %s", last.Format(DateLayout), first.Format(DateLayout))
	}

	return first, last, nil
}

// DaysBetween lists every day in [first, last] that is strictly before today.
func DaysBetween(first, last, today time.Time) []string {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	var days []string
	for d := first; !d.After(last) && d.Before(today); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days
}

// GameDates discovers calendar dates from every stored season page.
// Pages that cannot be read or carry no usable Duration row are skipped.
func GameDates(seasons Reader, minYear int, today time.Time, logger *slog.Logger) ([]string, error) {
	ids, err := seasons.List()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var dates []string
	for _, id := range ids {
		page, err := seasons.Read(id)
		if err != nil {
			logger.Warn("Skipping unreadable season page", "season", id, "error", err)
			continue
		}

		first, last, err := SeasonSpan(page)
		if err != nil {
			logger.Warn("Skipping season page", "season", id, "error", err)
			continue
		}
		if first.Year() < minYear {
			continue
		}

		for _, d := range DaysBetween(first, last, today) {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			dates = append(dates, d)
		}
	}

	return dates, nil
}
