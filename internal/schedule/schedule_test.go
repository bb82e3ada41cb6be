package schedule

import (
	"testing"
	"time"
)

func TestClosedDates_SundaysAndMondaysOnly(t *testing.T) {
	ref := time.Date(2024, 1, 3, 15, 42, 7, 0, time.UTC) // a Wednesday, mid-day
	dates := ClosedDates(ref, HorizonDays, DefaultClosedWeekdays)

	if len(dates) == 0 {
		t.Fatal("expected closed dates over a 90-day horizon")
	}
	for _, d := range dates {
		if wd := d.Weekday(); wd != time.Sunday && wd != time.Monday {
			t.Errorf("unexpected weekday %s for %s", wd, d.Format("2006-01-02"))
		}
		if d.Hour() != 0 || d.Minute() != 0 || d.Second() != 0 {
			t.Errorf("date %v not normalized to midnight", d)
		}
		if d.Location() != time.UTC {
			t.Errorf("date %v not in UTC", d)
		}
	}
}

func TestClosedDates_IncludesDayZero(t *testing.T) {
	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // a Monday
	dates := ClosedDates(ref, HorizonDays, DefaultClosedWeekdays)

	if len(dates) == 0 || !dates[0].Equal(ref) {
		t.Fatalf("expected the reference Monday itself to be closed, got %v", dates)
	}
	// 12 full weeks contribute 24 closures, the 6-day remainder one more Monday.
	if len(dates) != 25 {
		t.Fatalf("expected 25 closures, got %d", len(dates))
	}
}

func TestClosedDates_IncludesLastDayOfHorizon(t *testing.T) {
	// Day 89 from this Tuesday is Sunday 2024-03-31; day 90 would be Monday
	// 2024-04-01 and must stay out.
	ref := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	dates := ClosedDates(ref, HorizonDays, DefaultClosedWeekdays)

	last := dates[len(dates)-1]
	want := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	if !last.Equal(want) {
		t.Fatalf("expected last closure %s, got %s", want.Format("2006-01-02"), last.Format("2006-01-02"))
	}
	for _, d := range dates {
		if !d.Before(ref.AddDate(0, 0, HorizonDays)) {
			t.Errorf("date %s outside the horizon", d.Format("2006-01-02"))
		}
	}
}

func TestClosedDates_NoClosedWeekdays(t *testing.T) {
	ref := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if dates := ClosedDates(ref, HorizonDays, nil); len(dates) != 0 {
		t.Fatalf("expected no closures, got %d", len(dates))
	}
}

func TestClosedDates_NormalizesNonUTCReference(t *testing.T) {
	loc := time.FixedZone("UTC+11", 11*3600)
	// 2024-01-01 09:00 +11 is 2023-12-31 22:00 UTC, a Sunday.
	ref := time.Date(2024, 1, 1, 9, 0, 0, 0, loc)
	dates := ClosedDates(ref, 1, DefaultClosedWeekdays)

	want := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	if len(dates) != 1 || !dates[0].Equal(want) {
		t.Fatalf("expected %s, got %v", want.Format("2006-01-02"), dates)
	}
}
