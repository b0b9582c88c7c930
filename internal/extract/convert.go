package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var isoClock = regexp.MustCompile(`^PT(?:(\d+)M)?(?:(\d+)(?:\.\d+)?S)?$`)

// ClockSeconds converts a minutes:seconds string such as "32:15" into
// seconds. The ISO form "PT32M15.00S" is accepted as well.
func ClockSeconds(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if m := isoClock.FindStringSubmatch(s); m != nil {
		if m[1] == "" && m[2] == "" {
			return 0, false
		}
		mins, _ := strconv.ParseInt(orZero(m[1]), 10, 64)
		secs, _ := strconv.ParseInt(orZero(m[2]), 10, 64)
		return mins*60 + secs, true
	}

	return pair(s, 60)
}

// DurationMinutes converts an hours:minutes string such as "2:05" into minutes.
func DurationMinutes(s string) (int64, bool) {
	return pair(strings.TrimSpace(s), 60)
}

func pair(s string, base int64) (int64, bool) {
	hi, lo, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	h, err := strconv.ParseInt(hi, 10, 64)
	if err != nil || h < 0 {
		return 0, false
	}
	l, err := strconv.ParseInt(lo, 10, 64)
	if err != nil || l < 0 || l >= base {
		return 0, false
	}
	return h*base + l, true
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// secondsValue and minutesValue return nil for absent or unparseable input.
func secondsValue(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if n, ok := ClockSeconds(s); ok {
		return n
	}
	return nil
}

func minutesValue(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	if n, ok := DurationMinutes(s); ok {
		return n
	}
	return nil
}

// snakeCase turns a camelCase key into snake_case.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
