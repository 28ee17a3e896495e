package models

import (
	"fmt"
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"SUN": time.Sunday,
	"MON": time.Monday,
	"TUE": time.Tuesday,
	"WED": time.Wednesday,
	"THU": time.Thursday,
	"FRI": time.Friday,
	"SAT": time.Saturday,
}

// ParseWindows reads the "MON-FRI 09:00-12:00;SAT,SUN 10:00-14:00" notation.
// A window without a day list applies every day.
func ParseWindows(spec string) ([]Window, error) {
	var out []Window
	for _, part := range strings.Split(spec, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		var (
			days []time.Weekday
			span string
			err  error
		)
		switch len(fields) {
		case 1:
			span = fields[0]
		case 2:
			days, err = parseDays(fields[0])
			if err != nil {
				return nil, err
			}
			span = fields[1]
		default:
			return nil, fmt.Errorf("invalid window %q", part)
		}
		from, to, ok := strings.Cut(span, "-")
		if !ok {
			return nil, fmt.Errorf("invalid window span %q", span)
		}
		w := Window{Days: days, From: from, To: to}
		if err := w.validate(); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func parseDays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, item := range strings.Split(strings.ToUpper(s), ",") {
		if first, last, isRange := strings.Cut(item, "-"); isRange {
			start, ok1 := weekdayNames[first]
			end, ok2 := weekdayNames[last]
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("invalid day range %q", item)
			}
			for d := start; ; d = (d + 1) % 7 {
				days = append(days, d)
				if d == end {
					break
				}
			}
			continue
		}
		d, ok := weekdayNames[item]
		if !ok {
			return nil, fmt.Errorf("invalid day %q", item)
		}
		days = append(days, d)
	}
	return days, nil
}
