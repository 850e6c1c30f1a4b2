package bulletin

import "time"

// BusinessDaysBetween returns every Monday-to-Friday date from from to to,
// both inclusive, at midnight in from's location. It returns an empty slice
// when to is before from.
func BusinessDaysBetween(from, to time.Time) []time.Time {
	start := truncateDay(from)
	end := truncateDay(to.In(from.Location()))

	days := []time.Time{}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}

		days = append(days, d)
	}

	return days
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
