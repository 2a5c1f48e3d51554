// Package cronexpr validates and normalizes the 5-field cron-like
// recurrence expressions used for scheduled report submissions.
//
// Grammar per field: * | N | N-N | N,N,... | */N. The day-of-week field
// additionally accepts weekday names (SUN..SAT), including in ranges
// such as MON-FRI. 0 and 7 both mean Sunday.
package cronexpr

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type bounds struct {
	name string
	min  int
	max  int
}

var fieldBounds = [5]bounds{
	{"minute", 0, 59},
	{"hour", 0, 23},
	{"day-of-month", 1, 31},
	{"month", 1, 12},
	{"day-of-week", 0, 7},
}

var weekdayNames = map[string]int{
	"SUN": 0, "MON": 1, "TUE": 2, "WED": 3, "THU": 4, "FRI": 5, "SAT": 6,
}

type field struct {
	any    bool
	values map[int]bool
}

func (f field) match(v int) bool {
	if f.any {
		return true
	}
	return f.values[v]
}

// Spec is a parsed recurrence expression. Day-of-week 7 is stored as 0.
type Spec struct {
	minute field
	hour   field
	dom    field
	month  field
	dow    field
}

// Matches reports whether t (at minute resolution) satisfies the spec.
func (s *Spec) Matches(t time.Time) bool {
	return s.minute.match(t.Minute()) &&
		s.hour.match(t.Hour()) &&
		s.dom.match(t.Day()) &&
		s.month.match(int(t.Month())) &&
		s.dow.match(int(t.Weekday()))
}

// Parse parses a 5-field expression. It never panics; malformed input
// is reported as an error naming the offending field.
func Parse(expr string) (*Spec, error) {
	parts := strings.Fields(strings.TrimSpace(expr))
	if len(parts) != 5 {
		return nil, fmt.Errorf("expression must have 5 fields, got %d", len(parts))
	}

	var fields [5]field
	for i, raw := range parts {
		f, err := parseField(raw, fieldBounds[i], i == 4)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fieldBounds[i].name, err)
		}
		fields[i] = f
	}

	return &Spec{
		minute: fields[0],
		hour:   fields[1],
		dom:    fields[2],
		month:  fields[3],
		dow:    fields[4],
	}, nil
}

// Validate reports whether expr is a well-formed recurrence expression.
func Validate(expr string) error {
	_, err := Parse(expr)
	return err
}

func parseField(raw string, b bounds, isDow bool) (field, error) {
	if raw == "*" {
		return field{any: true}, nil
	}

	values := make(map[int]bool)
	for _, seg := range strings.Split(raw, ",") {
		if seg == "" {
			return field{}, fmt.Errorf("empty segment in %q", raw)
		}

		if strings.HasPrefix(seg, "*/") {
			step, err := strconv.Atoi(strings.TrimPrefix(seg, "*/"))
			if err != nil || step <= 0 {
				return field{}, fmt.Errorf("invalid step %q", seg)
			}
			for i := b.min; i <= b.max; i += step {
				values[normalize(i, isDow)] = true
			}
			continue
		}

		if strings.Contains(seg, "-") {
			r := strings.SplitN(seg, "-", 2)
			start, err1 := parseValue(r[0], isDow)
			end, err2 := parseValue(r[1], isDow)
			if err1 != nil || err2 != nil {
				return field{}, fmt.Errorf("invalid range %q", seg)
			}
			if start > end {
				return field{}, fmt.Errorf("descending range %q", seg)
			}
			if start < b.min || end > b.max {
				return field{}, fmt.Errorf("range %q out of bounds (%d-%d)", seg, b.min, b.max)
			}
			for i := start; i <= end; i++ {
				values[normalize(i, isDow)] = true
			}
			continue
		}

		v, err := parseValue(seg, isDow)
		if err != nil {
			return field{}, fmt.Errorf("invalid value %q", seg)
		}
		if v < b.min || v > b.max {
			return field{}, fmt.Errorf("value %d out of bounds (%d-%d)", v, b.min, b.max)
		}
		values[normalize(v, isDow)] = true
	}

	return field{values: values}, nil
}

func parseValue(s string, isDow bool) (int, error) {
	if isDow {
		if v, ok := weekdayNames[strings.ToUpper(s)]; ok {
			return v, nil
		}
	}
	return strconv.Atoi(s)
}

// normalize folds day-of-week 7 onto 0 (both mean Sunday).
func normalize(v int, isDow bool) int {
	if isDow && v == 7 {
		return 0
	}
	return v
}

// Canonical validates expr and returns its canonical form: fields joined
// by single spaces, weekday names uppercased and day-of-week 7 rewritten
// to 0 so every equivalent expression stores and compares identically.
func Canonical(expr string) (string, error) {
	if err := Validate(expr); err != nil {
		return "", err
	}

	parts := strings.Fields(strings.TrimSpace(expr))
	parts[4] = canonicalDow(parts[4])
	return strings.Join(parts, " "), nil
}

func canonicalDow(raw string) string {
	if raw == "*" {
		return raw
	}

	var out []string
	for _, seg := range strings.Split(raw, ",") {
		seg = strings.ToUpper(seg)
		switch {
		case strings.HasPrefix(seg, "*/"):
			out = append(out, seg)
		case strings.Contains(seg, "-"):
			r := strings.SplitN(seg, "-", 2)
			start, _ := parseValue(r[0], true)
			end, _ := parseValue(r[1], true)
			if end == 7 {
				// 7 only appears numerically; names stop at SAT.
				if start == 7 {
					out = append(out, "0")
				} else if start == 6 {
					out = append(out, "6", "0")
				} else {
					out = append(out, fmt.Sprintf("%s-6", r[0]), "0")
				}
			} else {
				out = append(out, seg)
			}
		case seg == "7":
			out = append(out, "0")
		default:
			out = append(out, seg)
		}
	}
	return strings.Join(out, ",")
}

// Next returns the first time strictly after the given instant that
// matches expr, at minute resolution. The scan is capped at one year.
func Next(expr string, after time.Time) (time.Time, error) {
	spec, err := Parse(expr)
	if err != nil {
		return time.Time{}, err
	}

	t := after.Truncate(time.Minute).Add(time.Minute)
	limit := t.Add(366 * 24 * time.Hour)
	for !t.After(limit) {
		if spec.Matches(t) {
			return t, nil
		}
		t = t.Add(time.Minute)
	}
	return time.Time{}, fmt.Errorf("no matching time within one year of %s", after.Format(time.RFC3339))
}

// Preset pairs a ready-made expression with a human-readable label so
// schedules can be offered without authoring raw cron syntax.
type Preset struct {
	Expression string
	Label      string
}

// Presets returns the built-in schedule choices. Every expression is
// already in canonical form.
func Presets() []Preset {
	return []Preset{
		{"0 9 * * MON-FRI", "Weekdays at 09:00"},
		{"0 9,15 * * MON-FRI", "Weekdays at 09:00 and 15:00"},
		{"0 0 * * *", "Every day at midnight"},
		{"0 0 * * 0", "Sundays at midnight"},
		{"0 */6 * * *", "Every 6 hours"},
	}
}
