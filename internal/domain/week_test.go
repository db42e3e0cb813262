package domain

import "testing"

func TestTotalHoursSumsAllDays(t *testing.T) {
	week := NewWeeklyWork()
	week.SetDay(Monday, DayEntry{Work: "metselen", Hours: 8})
	week.SetDay(Tuesday, DayEntry{Work: "voegen", Hours: 4.5})
	week.SetDay(Saturday, DayEntry{Work: "opruimen", Hours: 3})

	if got := week.TotalHours(); got != 15.5 {
		t.Fatalf("expected 15.5 total hours got %v", got)
	}
}

func TestTotalHoursEmptyWeek(t *testing.T) {
	if got := NewWeeklyWork().TotalHours(); got != 0 {
		t.Fatalf("expected 0 total hours got %v", got)
	}
}

func TestClampHours(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{8, 8},
		{24, 24},
		{25, 24},
	}
	for _, tc := range cases {
		if got := ClampHours(tc.in); got != tc.want {
			t.Fatalf("ClampHours(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestUitvoerderComesFromFirstPopulatedDay(t *testing.T) {
	week := NewWeeklyWork()
	week.SetDay(Monday, DayEntry{Uitvoerder: "ignored, monday is empty"})
	week.SetDay(Wednesday, DayEntry{Work: "straatwerk", Hours: 8, Uitvoerder: "J. de Vries"})
	week.SetDay(Friday, DayEntry{Work: "straatwerk", Hours: 8, Uitvoerder: "P. Bakker"})

	if got := week.Uitvoerder(); got != "J. de Vries" {
		t.Fatalf("expected supervisor from wednesday got %q", got)
	}
}

func TestUitvoerderEmptyWeek(t *testing.T) {
	if got := NewWeeklyWork().Uitvoerder(); got != "" {
		t.Fatalf("expected empty supervisor got %q", got)
	}
}

func TestDayEntryEmpty(t *testing.T) {
	if !(DayEntry{}).Empty() {
		t.Fatal("zero entry should be empty")
	}
	if (DayEntry{Work: "x"}).Empty() {
		t.Fatal("entry with work should not be empty")
	}
	if (DayEntry{Hours: 1}).Empty() {
		t.Fatal("entry with hours should not be empty")
	}
}

func TestParseDayKey(t *testing.T) {
	if key, ok := ParseDayKey("Monday"); !ok || key != Monday {
		t.Fatalf("expected monday got %q ok=%v", key, ok)
	}
	if _, ok := ParseDayKey("sunday"); ok {
		t.Fatal("sunday is not a reportable day")
	}
	if _, ok := ParseDayKey(""); ok {
		t.Fatal("empty key should not parse")
	}
}
