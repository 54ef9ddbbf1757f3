package engine

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/syssam/chinook"
)

// maxExactFloat is the largest integer a float64 holds exactly.
const maxExactFloat = 1 << 53

// ParseID interprets an identifier argument of the given kind.
//
// Only canonical base-10 integers are accepted: "1", 1 and 1.0 are the same
// id, while "asdf", "+1", "01", " 1" and "1.5" are malformed. Nothing is
// coerced into an id that was not written as one.
func ParseID(kind chinook.Kind, v any) (int, error) {
	malformed := func(err error) error {
		return &chinook.MalformedInputError{Kind: kind, Arg: "id", Value: v, Err: err}
	}
	switch v := v.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		if int64(int(v)) != v {
			return 0, malformed(strconv.ErrRange)
		}
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > maxExactFloat {
			return 0, malformed(nil)
		}
		return int(v), nil
	case json.Number:
		return parseIDString(string(v), malformed)
	case string:
		return parseIDString(v, malformed)
	default:
		return 0, malformed(nil)
	}
}

func parseIDString(s string, malformed func(error) error) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, malformed(err)
	}
	if strconv.Itoa(n) != s {
		return 0, malformed(nil)
	}
	return n, nil
}
