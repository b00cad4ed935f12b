package deadline

import (
	"time"

	"csconfs/internal/model"
)

const daysInWeek = 7

// GridDay is one cell of a month calendar grid.
type GridDay struct {
	Date    time.Time `json:"-"`
	Day     string    `json:"date"`
	InMonth bool      `json:"in_month"`
	Today   bool      `json:"today"`
}

// DayEvents is a grid cell together with the events on that day.
type DayEvents struct {
	GridDay
	Events []model.CalendarEvent `json:"events"`
}

// MonthGrid lays out a month as whole weeks starting on weekStart, padding
// with days from the previous and next month.
func MonthGrid(year int, month time.Month, weekStart time.Weekday) []GridDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lead := (int(first.Weekday()) - int(weekStart) + daysInWeek) % daysInWeek
	n := daysIn(first)

	days := make([]GridDay, 0, 42)
	for i := lead; i > 0; i-- {
		days = append(days, gridDay(first.AddDate(0, 0, -i), false))
	}
	for i := 0; i < n; i++ {
		days = append(days, gridDay(first.AddDate(0, 0, i), true))
	}
	last := first.AddDate(0, 0, n-1)
	for i := 1; len(days)%daysInWeek != 0; i++ {
		days = append(days, gridDay(last.AddDate(0, 0, i), false))
	}
	return days
}

func gridDay(d time.Time, inMonth bool) GridDay {
	return GridDay{Date: d, Day: d.Format(DateLayout), InMonth: inMonth}
}

// MonthEvents builds the grid for a month and fills every cell with its
// events. today is the viewer's current civil date.
func MonthEvents(records []model.Conference, year int, month time.Month, weekStart time.Weekday, today time.Time) []DayEvents {
	todayStr := civil(today).Format(DateLayout)
	grid := MonthGrid(year, month, weekStart)

	// Bucketing the global event list gives the same result as calling
	// EventsOnDay per cell, without normalizing every record 42 times.
	byDay := make(map[string][]model.CalendarEvent)
	for _, ev := range Events(records) {
		byDay[ev.Day] = append(byDay[ev.Day], ev)
	}

	out := make([]DayEvents, 0, len(grid))
	for _, gd := range grid {
		gd.Today = gd.Day == todayStr
		evs := byDay[gd.Day]
		if evs == nil {
			evs = []model.CalendarEvent{}
		}
		out = append(out, DayEvents{GridDay: gd, Events: evs})
	}
	return out
}
