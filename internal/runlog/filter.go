package runlog

import (
	"log/slog"
	"time"
)

// FilterDay returns a new Table holding only the records whose start time
// falls on the given calendar day in day's location. The input table is not
// modified. An empty result is a valid table; emptiness is the metrics
// engine's call, not the filter's.
func FilterDay(table *Table, day time.Time) *Table {
	filtered := &Table{SourcePath: table.SourcePath}

	y, m, d := day.Date()
	for _, rec := range table.Records {
		ry, rm, rd := rec.StartTime.In(day.Location()).Date()
		if ry == y && rm == m && rd == d {
			filtered.Records = append(filtered.Records, rec)
		}
	}

	slog.Debug("filtered run log to single day",
		slog.String("day", day.Format("2006-01-02")),
		slog.Int("before", len(table.Records)),
		slog.Int("after", len(filtered.Records)))

	return filtered
}
