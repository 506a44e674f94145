package weather

// maxForecastDays caps the dashboard forecast.
const maxForecastDays = 5

// ReduceToDaily collapses a 3-hourly forecast feed to at most five entries,
// one per distinct calendar date, in input order, first match per date wins.
func ReduceToDaily(entries []ForecastEntry) []ForecastEntry {
	daily := make([]ForecastEntry, 0, maxForecastDays)
	seen := make(map[string]bool, maxForecastDays)

	for _, entry := range entries {
		day := entry.Timestamp.UTC().Format("2006-01-02")
		if seen[day] {
			continue
		}
		seen[day] = true
		daily = append(daily, entry)
		if len(daily) == maxForecastDays {
			break
		}
	}
	return daily
}
