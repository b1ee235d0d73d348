package hours

import (
	"fmt"

	"github.com/goodsign/monday"

	"github.com/rendis/openinghours/internal/model"
)

// Numbering selects how slot indices are assigned within a weekday.
type Numbering int

const (
	// LegacyNumbering reproduces the stored layout existing installations
	// have: the first two periods of a weekday both land in slot 0 (the
	// second overwrites the first), then 1, 2, ...
	LegacyNumbering Numbering = iota
	// SequentialNumbering assigns 0, 1, 2, ... in arrival order.
	SequentialNumbering
)

// ParseNumbering maps a config value to a Numbering. Empty means legacy.
func ParseNumbering(s string) (Numbering, error) {
	switch s {
	case "", "legacy":
		return LegacyNumbering, nil
	case "sequential":
		return SequentialNumbering, nil
	}
	return LegacyNumbering, fmt.Errorf("unknown slot numbering %q", s)
}

func (n Numbering) String() string {
	if n == SequentialNumbering {
		return "sequential"
	}
	return "legacy"
}

// Slot is one write of a time range into a weekday bucket.
type Slot struct {
	Index int
	Range string // "HH:MM - HH:MM"
}

// Day is one weekday bucket.
type Day struct {
	Name  string
	Open  bool
	Slots []Slot // in write order; an index may repeat under LegacyNumbering
}

// Final returns the value each slot index ends up holding after all writes.
func (d Day) Final() map[int]string {
	out := make(map[int]string, len(d.Slots))
	for _, s := range d.Slots {
		out[s.Index] = s.Range
	}
	return out
}

// Schedule is the flattened week, indexed by day (Sunday=0).
type Schedule [DaysPerWeek]Day

// Flatten maps a Places periods list onto 7 weekday buckets in a single pass.
// Periods are taken in source order; nothing is sorted or deduplicated.
func Flatten(periods []model.Period, locale monday.Locale, numbering Numbering) Schedule {
	var sched Schedule
	for i := range sched {
		sched[i].Name = WeekdayName(i, locale)
	}

	var (
		counters [DaysPerWeek]int
		seen     [DaysPerWeek]int // periods encountered so far per day
	)
	for _, p := range periods {
		day := ((p.Open.Day % DaysPerWeek) + DaysPerWeek) % DaysPerWeek

		switch {
		case seen[day] == 0:
			counters[day] = 0
		case numbering == LegacyNumbering && seen[day] == 1:
			// second period keeps slot 0
		default:
			counters[day]++
		}
		seen[day]++

		sched[day].Open = true
		sched[day].Slots = append(sched[day].Slots, Slot{
			Index: counters[day],
			Range: FormatTime(p.Open.Time) + " - " + closeTime(p.Close),
		})
	}
	return sched
}

// closeTime handles periods without a close entry, which Places uses for
// places open around the clock.
func closeTime(c *model.DayTime) string {
	if c == nil {
		return "24:00"
	}
	return FormatTime(c.Time)
}
