package domain

import (
	"encoding/json"
	"strings"
)

// descriptionTypeWeekly tags the structured JSON envelope stored in the
// activity description column.
const descriptionTypeWeekly = "weekly"

// Description is the decoded form of a persisted description string. Exactly
// one mode is active: Weekly for the structured envelope, simple (Text) for
// legacy free-form records.
type Description struct {
	Weekly *WeeklyReport
	Text   string
}

// WeeklyReport couples a week of entries with its cached hour total.
type WeeklyReport struct {
	Days       WeeklyWork
	TotalHours float64
}

type descriptionEnvelope struct {
	Type       string      `json:"type"`
	Days       *WeeklyWork `json:"days"`
	TotalHours float64     `json:"totalHours"`
}

// IsWeekly reports whether the description is a structured weekly record.
func (d Description) IsWeekly() bool { return d.Weekly != nil }

// TotalHours returns the recomputed hour total for weekly records. The
// stored total is only trusted when raw entries are unavailable, which
// never happens for a successfully parsed weekly envelope.
func (d Description) TotalHours() float64 {
	if d.Weekly == nil {
		return 0
	}
	return d.Weekly.Days.TotalHours()
}

// ParseDescription decodes a persisted description string. It tries the
// weekly envelope first and falls back to simple mode on any parse or shape
// mismatch, carrying the raw text unchanged. Older weekly records may lack
// meerwerk, teammates or uitvoerder per day; those are backfilled with
// defaults so every parsed week is fully populated.
func ParseDescription(raw string) Description {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return Description{Text: raw}
	}

	var envelope descriptionEnvelope
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return Description{Text: raw}
	}
	if envelope.Type != descriptionTypeWeekly || envelope.Days == nil {
		return Description{Text: raw}
	}

	days := *envelope.Days
	for _, key := range DayOrder {
		entry := days.Day(key)
		if entry.Teammates == nil {
			entry.Teammates = []Teammate{{}}
		}
		days.SetDay(key, entry)
	}

	return Description{Weekly: &WeeklyReport{
		Days:       days,
		TotalHours: days.TotalHours(),
	}}
}

// Serialize encodes the description back to its persisted string form.
// Weekly records always emit a freshly recomputed total; simple records are
// written back byte for byte. Simple records are never upgraded to weekly.
func (d Description) Serialize() (string, error) {
	if d.Weekly == nil {
		return d.Text, nil
	}
	payload, err := json.Marshal(descriptionEnvelope{
		Type:       descriptionTypeWeekly,
		Days:       &d.Weekly.Days,
		TotalHours: d.Weekly.Days.TotalHours(),
	})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}
