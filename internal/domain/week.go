// Package domain defines the business logic for the report service.
package domain

import "strings"

// DayKey identifies one of the six reportable days of a work week.
type DayKey string

const (
	Monday    DayKey = "monday"
	Tuesday   DayKey = "tuesday"
	Wednesday DayKey = "wednesday"
	Thursday  DayKey = "thursday"
	Friday    DayKey = "friday"
	Saturday  DayKey = "saturday"
)

// DayOrder lists the day keys in calendar order. All week traversals use it.
var DayOrder = [6]DayKey{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// ParseDayKey validates a day key string, case-insensitively.
func ParseDayKey(s string) (DayKey, bool) {
	key := DayKey(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range DayOrder {
		if key == known {
			return key, true
		}
	}
	return "", false
}

// Teammate is one co-worker line within a day entry. Order is preserved;
// empty rows are allowed and only filtered for display.
type Teammate struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

// DayEntry holds everything reported for a single day.
type DayEntry struct {
	Work          string     `json:"work"`
	Meerwerk      string     `json:"meerwerk"`
	Location      string     `json:"location"`
	GoogleMapsURL string     `json:"googleMapsUrl,omitempty"`
	Hours         float64    `json:"hours"`
	Teammates     []Teammate `json:"teammates"`
	Uitvoerder    string     `json:"uitvoerder"`
}

// Empty reports whether the day carries no reportable content. Empty days
// contribute no row to the rendered report.
func (e DayEntry) Empty() bool {
	return e.Work == "" && e.Hours == 0
}

// WeeklyWork is a full week of day entries. All six day keys are always
// present; an unworked day is an entry with empty work and zero hours,
// never a missing key.
type WeeklyWork struct {
	Monday    DayEntry `json:"monday"`
	Tuesday   DayEntry `json:"tuesday"`
	Wednesday DayEntry `json:"wednesday"`
	Thursday  DayEntry `json:"thursday"`
	Friday    DayEntry `json:"friday"`
	Saturday  DayEntry `json:"saturday"`
}

// NewWeeklyWork returns a week with every day initialised to its defaults,
// including the single placeholder teammate row.
func NewWeeklyWork() WeeklyWork {
	var w WeeklyWork
	for _, key := range DayOrder {
		w.SetDay(key, emptyDay())
	}
	return w
}

func emptyDay() DayEntry {
	return DayEntry{Teammates: []Teammate{{}}}
}

// Day returns the entry for the given key.
func (w WeeklyWork) Day(key DayKey) DayEntry {
	switch key {
	case Monday:
		return w.Monday
	case Tuesday:
		return w.Tuesday
	case Wednesday:
		return w.Wednesday
	case Thursday:
		return w.Thursday
	case Friday:
		return w.Friday
	case Saturday:
		return w.Saturday
	}
	return DayEntry{}
}

// SetDay replaces the entry for the given key.
func (w *WeeklyWork) SetDay(key DayKey, entry DayEntry) {
	switch key {
	case Monday:
		w.Monday = entry
	case Tuesday:
		w.Tuesday = entry
	case Wednesday:
		w.Wednesday = entry
	case Thursday:
		w.Thursday = entry
	case Friday:
		w.Friday = entry
	case Saturday:
		w.Saturday = entry
	}
}

// TotalHours sums hours across all six days. Stored totals are a cache of
// this value and are recomputed whenever the raw entries are available.
func (w WeeklyWork) TotalHours() float64 {
	var total float64
	for _, key := range DayOrder {
		total += w.Day(key).Hours
	}
	return total
}

// ClampHours bounds a reported hour value to [0, 24].
func ClampHours(hours float64) float64 {
	if hours < 0 {
		return 0
	}
	if hours > 24 {
		return 24
	}
	return hours
}

// Uitvoerder returns the supervisor of the first populated day. The rendered
// report shows a single supervisor even though it is stored per day; this
// mirrors the record layout consumers already rely on.
func (w WeeklyWork) Uitvoerder() string {
	for _, key := range DayOrder {
		entry := w.Day(key)
		if entry.Empty() {
			continue
		}
		return entry.Uitvoerder
	}
	return ""
}
