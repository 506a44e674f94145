package weather

import (
	"testing"
	"time"
)

func entry(day, hour int, temp float64) ForecastEntry {
	return ForecastEntry{
		Timestamp: time.Date(2024, time.May, day, hour, 0, 0, 0, time.UTC),
		Temp:      temp,
	}
}

func TestReduceToDailyFirstMatchWins(t *testing.T) {
	feed := []ForecastEntry{
		entry(1, 9, 12.0),
		entry(1, 12, 18.0),
		entry(1, 15, 20.0),
		entry(2, 9, 11.0),
		entry(2, 12, 17.0),
	}

	daily := ReduceToDaily(feed)
	if len(daily) != 2 {
		t.Fatalf("got %d entries, want 2", len(daily))
	}
	if daily[0].Temp != 12.0 {
		t.Errorf("day 1 temp = %v, want the first entry 12.0", daily[0].Temp)
	}
	if daily[1].Temp != 11.0 {
		t.Errorf("day 2 temp = %v, want the first entry 11.0", daily[1].Temp)
	}
}

func TestReduceToDailyCapsAtFiveDays(t *testing.T) {
	var feed []ForecastEntry
	for day := 1; day <= 8; day++ {
		for hour := 0; hour < 24; hour += 3 {
			feed = append(feed, entry(day, hour, float64(day)))
		}
	}

	daily := ReduceToDaily(feed)
	if len(daily) != 5 {
		t.Fatalf("got %d entries, want 5", len(daily))
	}
	for i, e := range daily {
		if e.Temp != float64(i+1) {
			t.Errorf("entry %d is from day %v, want day %d", i, e.Temp, i+1)
		}
	}
}

func TestReduceToDailyPreservesInputOrder(t *testing.T) {
	// Out-of-order feed: the reduction keeps input order, it does not sort.
	feed := []ForecastEntry{
		entry(3, 9, 3),
		entry(1, 9, 1),
		entry(2, 9, 2),
	}

	daily := ReduceToDaily(feed)
	if len(daily) != 3 {
		t.Fatalf("got %d entries, want 3", len(daily))
	}
	want := []float64{3, 1, 2}
	for i := range daily {
		if daily[i].Temp != want[i] {
			t.Fatalf("entry %d temp = %v, want %v", i, daily[i].Temp, want[i])
		}
	}
}

func TestReduceToDailyEmptyFeed(t *testing.T) {
	if got := ReduceToDaily(nil); len(got) != 0 {
		t.Fatalf("empty feed reduced to %d entries", len(got))
	}
}
