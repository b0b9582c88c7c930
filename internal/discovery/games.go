package discovery

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"courtside/internal/extract"
)

// GameKeys decodes the game keys listed on one date page. A page without
// game modules yields no keys.
func GameKeys(date string, payload []byte) ([]string, error) {
	root, err := extract.Decode(payload)
	if err != nil {
		return nil, err
	}

	modules, ok := extract.GetArray(root, "props", "pageProps", "gameCardFeed", "modules")
	if !ok || len(modules) == 0 {
		return nil, nil
	}
	module, ok := modules[0].(extract.Object)
	if !ok {
		return nil, nil
	}
	cards, _ := extract.GetArray(module, "cards")

	var keys []string
	seen := make(map[string]struct{})
	for _, c := range cards {
		card, ok := c.(extract.Object)
		if !ok {
			continue
		}
		segment := gameSegment(card)
		if segment == "" {
			continue
		}
		key := date + "-" + segment
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	return keys, nil
}

func gameSegment(card extract.Object) string {
	actions, _ := extract.GetArray(card, "cardData", "actions")
	for _, a := range actions {
		action, ok := a.(extract.Object)
		if !ok {
			continue
		}
		url, _ := extract.GetString(action, "resourceLocator", "resourceUrl")
		_, rest, found := strings.Cut(url, "game/")
		if !found {
			continue
		}
		rest, _, _ = strings.Cut(rest, "?")
		rest, _, _ = strings.Cut(rest, "#")
		segment, _, _ := strings.Cut(rest, "/")
		if segment != "" {
			return segment
		}
	}
	return ""
}

// GameSegment strips the leading date from a game key.
func GameSegment(key string) (string, error) {
	if len(key) < len(DateLayout)+2 || key[len(DateLayout)] != '-' {
		return "", fmt.Errorf("malformed game key %q", key)
	}
	if _, err := time.Parse(DateLayout, key[:len(DateLayout)]); err != nil {
		return "", fmt.Errorf("malformed game key %q: %w", key, err)
	}
	return key[len(DateLayout)+1:], nil
}

// AllGameKeys walks every stored date page.
func AllGameKeys(dates Reader, logger *slog.Logger) ([]string, error) {
	ids, err := dates.List()
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, date := range ids {
		if _, err := time.Parse(DateLayout, date); err != nil {
			logger.Warn("Skipping date payload with malformed name", "id", date)
			continue
		}
		payload, err := dates.Read(date)
		if err != nil {
			logger.Warn("Skipping unreadable date payload", "date", date, "error", err)
			continue
		}
		found, err := GameKeys(date, payload)
		if err != nil {
			logger.Warn("Skipping date payload", "date", date, "error", err)
			continue
		}
		keys = append(keys, found...)
	}

	return keys, nil
}

// OnOrAfterMonth keeps the game keys dated in month (YYYY-MM) or later.
func OnOrAfterMonth(keys []string, month string) []string {
	if month == "" {
		return keys
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if len(k) >= 7 && k[:7] >= month {
			out = append(out, k)
		}
	}
	return out
}
