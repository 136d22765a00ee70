package analysis

import "time"

// BatchRecord identifies the extreme-duration record of the batch set. The
// zero-value sentinel (Duration 0, ID "N/A", TotalTasks 0) stands in when no
// batch runs exist.
type BatchRecord struct {
	ID         string
	Duration   float64
	TotalTasks int
}

// sentinelBatch is reported when the batch set is empty.
var sentinelBatch = BatchRecord{ID: "N/A", Duration: 0, TotalTasks: 0}

// BatchStats summarizes completed runs that processed more than one task.
// Batch and individual sets are subsets of the completed set; completed runs
// with zero tasks belong to neither, so Count+IndividualCount can be less
// than the completed count.
type BatchStats struct {
	Count           int
	IndividualCount int
	AvgDuration     float64
	Min             BatchRecord
	Max             BatchRecord
}

// CategoryMetrics describes scheduled (or unscheduled) task activity among
// completed runs. RunCount, AvgTasksPerRun, MaxTasksInRun and AvgDuration
// cover only completed runs with a positive duration and at least one task
// of the category; TotalTasks sums over the whole completed set.
type CategoryMetrics struct {
	TotalTasks     int
	AvgTasksPerRun float64
	MaxTasksInRun  int
	RunCount       int
	AvgDuration    float64
}

// PeakHourStats is the optional hour-of-day enrichment. PeakHour is the mode
// of the completed runs' start hours; BestHour is the hour with the highest
// completed-to-total ratio across the whole table. Ties resolve to the
// smallest hour. Both are -1 when the table has no completed runs, rendered
// as N/A.
type PeakHourStats struct {
	PeakHour       int
	RunsInPeakHour int
	BestHour       int
	BestHourRate   float64
}

// Report is the computed metrics summary for one run-table snapshot. It is
// a single-use value object: built once by the engine, handed to a renderer,
// then discarded. Nothing mutates it after Compute returns.
//
// Classification note: SkippedRuns counts every record whose status is not
// the completed marker, so failed runs are counted in both SkippedRuns and
// FailedRuns. That matches the dashboard tooling this report replaces and is
// deliberate; see the overlap test in engine_test.go.
type Report struct {
	GeneratedAt time.Time

	TotalRuns      int
	CompletedRuns  int
	SkippedRuns    int
	FailedRuns     int
	CompletionRate float64

	Batch BatchStats

	TotalScheduled     int
	TotalUnscheduled   int
	TotalTasks         int
	ScheduledPercent   float64
	UnscheduledPercent float64

	Scheduled   CategoryMetrics
	Unscheduled CategoryMetrics

	SkippedIDs []string
	FailedIDs  []string

	Insights []string

	// PeakHours is nil unless the engine was configured to compute it.
	PeakHours *PeakHourStats

	// Body is the rendered text report: title line, date line, then named
	// sections of "label: value" lines.
	Body string
}
