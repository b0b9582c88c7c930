package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"courtside/internal/schema"
	"courtside/internal/types"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// IsNull reports values that load as SQL NULL.
func IsNull(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(x)
		return s == "" || s == "None"
	}
	return false
}

// Coerce converts v to the Go value stored for a column of type t.
func Coerce(column string, t schema.ColumnType, v interface{}) (interface{}, error) {
	if IsNull(v) {
		return nil, nil
	}

	var (
		out interface{}
		err error
	)
	switch t {
	case schema.TypeInteger:
		out, err = toInt(v)
	case schema.TypeFloat:
		out, err = toFloat(v)
	case schema.TypeString, schema.TypeText:
		out, err = toString(v)
	case schema.TypeBoolean:
		out, err = toBool(v)
	case schema.TypeDate:
		var ts time.Time
		ts, err = toTime(v)
		if err == nil {
			out = time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		}
	case schema.TypeDateTime:
		out, err = toTime(v)
	default:
		err = fmt.Errorf("unsupported column type")
	}

	if err != nil {
		return nil, &types.CoercionError{Column: column, Value: v, Type: string(t), Err: err}
	}
	return out, nil
}

func toInt(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case float64:
		if math.Trunc(x) != x || math.IsInf(x, 0) {
			return 0, fmt.Errorf("not a whole number")
		}
		if x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, fmt.Errorf("out of int64 range")
		}
		return int64(x), nil
	case jsoniter.Number:
		return toInt(string(x))
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return toInt(f)
	}
	return 0, fmt.Errorf("unexpected %T", v)
}

func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case jsoniter.Number:
		return x.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	}
	return 0, fmt.Errorf("unexpected %T", v)
}

func toString(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case bool:
		return strconv.FormatBool(x), nil
	case jsoniter.Number:
		return string(x), nil
	}
	return "", fmt.Errorf("unexpected %T", v)
}

func toBool(v interface{}) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case float64:
		if x == 0 || x == 1 {
			return x == 1, nil
		}
	case int64:
		if x == 0 || x == 1 {
			return x == 1, nil
		}
	case int:
		if x == 0 || x == 1 {
			return x == 1, nil
		}
	case string:
		return strconv.ParseBool(strings.TrimSpace(x))
	}
	return false, fmt.Errorf("unexpected %v", v)
}

func toTime(v interface{}) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized time format")
	}
	return time.Time{}, fmt.Errorf("unexpected %T", v)
}
