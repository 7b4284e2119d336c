package service

import "time"

// WeekStart returns the Monday 00:00 that opens t's ISO week, in t's location.
// Sunday belongs to the week that started six days earlier.
func WeekStart(t time.Time) time.Time {
	day := int(t.Weekday())
	if day == 0 {
		day = 7
	}
	y, m, d := t.Date()
	return time.Date(y, m, d-(day-1), 0, 0, 0, 0, t.Location())
}
