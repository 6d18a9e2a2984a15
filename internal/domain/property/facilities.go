package property

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// FacilitySet is an ordered set of facility ids.
type FacilitySet []int64

// ParseFacilityIDs normalizes the shapes clients send for facilities: a
// JSON array string ("[1,2]"), a comma list ("1,2"), a scalar (3 or "3"),
// or a native array of numbers or numeric strings. Entries that are not
// positive integers are dropped; duplicates keep their first position.
func ParseFacilityIDs(raw any) FacilitySet {
	out := FacilitySet{}
	seen := map[int64]bool{}
	add := func(id int64, ok bool) {
		if ok && id > 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	collect(raw, add)
	return out
}

func collect(raw any, add func(int64, bool)) {
	switch v := raw.(type) {
	case nil:
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "[") {
			var items []any
			if err := json.Unmarshal([]byte(s), &items); err == nil {
				for _, item := range items {
					collectScalar(item, add)
				}
			}
			return
		}
		for _, part := range strings.Split(s, ",") {
			add(parseID(part))
		}
	case []string:
		for _, s := range v {
			collect(s, add)
		}
	case []any:
		for _, item := range v {
			collectScalar(item, add)
		}
	case []int64:
		for _, id := range v {
			add(id, true)
		}
	case []int:
		for _, id := range v {
			add(int64(id), true)
		}
	default:
		collectScalar(v, add)
	}
}

func collectScalar(v any, add func(int64, bool)) {
	switch n := v.(type) {
	case float64:
		add(floatID(n))
	case int:
		add(int64(n), true)
	case int64:
		add(n, true)
	case json.Number:
		add(parseID(n.String()))
	case string:
		add(parseID(n))
	}
}

func floatID(f float64) (int64, bool) {
	if f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return id, err == nil
}
