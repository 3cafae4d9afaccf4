package aocdata

import (
	"sync"
	"time"
)

// Puzzles unlock at midnight US Eastern during December; the event clock
// follows that timezone, not the caller's.
var (
	easternOnce sync.Once
	eastern     *time.Location
)

func easternTime() *time.Location {
	easternOnce.Do(func() {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			// No tzdata available; EST is close enough for availability
			// checks a few hours around midnight.
			loc = time.FixedZone("EST", -5*60*60)
		}
		eastern = loc
	})
	return eastern
}

// unlockTime returns the instant a puzzle becomes available.
func unlockTime(year Year, day Day) time.Time {
	return time.Date(int(year), time.December, int(day), 0, 0, 0, 0, easternTime())
}

// Years lists the event years with at least one published puzzle. The
// current year appears only once its December 1 puzzle has unlocked.
func (c *Client) Years() []Year {
	now := c.cfg.now().In(easternTime())

	last := Year(now.Year())
	if now.Before(unlockTime(last, 1)) {
		last--
	}

	var years []Year
	for y := Year(2015); y <= last; y++ {
		years = append(years, y)
	}
	return years
}

// Days lists the published puzzle days for a year. Nil is returned for a
// year without an event, whether it predates 2015 or has not started yet.
func (c *Client) Days(year Year) []Day {
	if !year.Valid() {
		return nil
	}
	now := c.cfg.now().In(easternTime())

	last := Day(25)
	switch {
	case now.Year() > int(year):
		// Past event; every day is out.
	case now.Year() < int(year) || now.Month() != time.December:
		return nil
	default:
		last = Day(now.Day())
		if last > 25 {
			last = 25
		}
	}

	days := make([]Day, 0, last)
	for d := Day(1); d <= last; d++ {
		days = append(days, d)
	}
	return days
}
