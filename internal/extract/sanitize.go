package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/na2kera/ai-rent-navi/constants"
)

var intFields = []string{
	"distance_from_station", "age", "structure", "layout",
	"rent", "management_fee", "total_units",
}

var stringFields = []string{
	"prefecture", "city", "address", "nearest_station",
}

// SanitizePropertyJSON normalizes the raw model output so the overall
// document can validate:
//   - trims strings and drops the ones that end up empty,
//   - reduces the postal code to digits and drops it unless 7 remain,
//   - strips a trailing 駅 from the station name,
//   - coerces numerics, dropping negatives and non-numbers,
//   - drops structure/layout codes outside their enumerations,
//   - drops nulls and unknown keys.
//
// It returns the cleaned JSON plus the list of keys that were dropped or
// rewritten, for logging.
func SanitizePropertyJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string
	drop := func(k, why string) {
		delete(m, k)
		dropped = append(dropped, k+"("+why+")")
	}

	// Nulls first: the prompt asks for null on unknown fields.
	for k, v := range m {
		if v == nil {
			drop(k, "null")
		}
	}

	for _, k := range stringFields {
		if v, ok := m[k]; ok {
			s, isStr := v.(string)
			if !isStr {
				drop(k, "type")
				continue
			}
			s = strings.TrimSpace(s)
			if k == "nearest_station" {
				s = strings.TrimSuffix(s, "駅")
			}
			if s == "" {
				drop(k, "empty")
			} else {
				m[k] = s
			}
		}
	}

	if v, ok := m["postal_code"]; ok {
		s, isStr := v.(string)
		if !isStr {
			// Models sometimes return the code as a number.
			if f, isNum := v.(float64); isNum {
				s = strconv.FormatInt(int64(f), 10)
			}
		}
		clean := keepDigits(s)
		if len(clean) == 7 {
			m["postal_code"] = clean
		} else {
			drop("postal_code", "not 7 digits")
		}
	}

	if v, ok := m["area"]; ok {
		f, err := asNumber(v)
		if err != nil || f < 0 {
			drop("area", "not a non-negative number")
		} else {
			m["area"] = f
		}
	}

	for _, k := range intFields {
		if v, ok := m[k]; ok {
			f, err := asNumber(v)
			if err != nil || f < 0 {
				drop(k, "not a non-negative number")
				continue
			}
			m[k] = int(math.Round(f))
		}
	}

	// Enumerated codes outside their range are dropped, never passed through.
	if v, ok := m["structure"].(int); ok && !constants.Structure(v).Valid() {
		drop("structure", "out of range")
	}
	if v, ok := m["layout"].(int); ok && !constants.Layout(v).Valid() {
		drop("layout", "out of range")
	}

	allowed := map[string]struct{}{"postal_code": {}, "area": {}}
	for _, k := range stringFields {
		allowed[k] = struct{}{}
	}
	for _, k := range intFields {
		allowed[k] = struct{}{}
	}
	for k := range m {
		if _, ok := allowed[k]; !ok {
			drop(k, "unknown")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("extract.sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func asNumber(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		s = strings.TrimSuffix(s, "円")
		return strconv.ParseFloat(s, 64)
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
