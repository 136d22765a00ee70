package runlog

import "time"

// Status markers emitted by the scheduler dashboard. Anything other than the
// completed marker counts as skipped; the failed marker is a specific skip
// cause the report calls out separately.
const (
	StatusCompleted = "schedulerLogCompleted"
	StatusFailed    = "schedulerLogFailed"
)

// Required columns of the exported run log, in header order.
const (
	ColumnID          = "Id"
	ColumnStatus      = "Status"
	ColumnStartTime   = "Start Time"
	ColumnDuration    = "Duration"
	ColumnTotalTasks  = "Total Tasks"
	ColumnScheduled   = "# Scheduled Tasks"
	ColumnUnscheduled = "# Unscheduled Tasks"
)

// RequiredColumns lists every column the metrics engine reads.
var RequiredColumns = []string{
	ColumnID,
	ColumnStatus,
	ColumnStartTime,
	ColumnDuration,
	ColumnTotalTasks,
	ColumnScheduled,
	ColumnUnscheduled,
}

// Record is one logged scheduler execution. Duration is in minutes.
// TotalTasks is not required to equal ScheduledTasks + UnscheduledTasks;
// the export does not guarantee it and the engine does not check it.
type Record struct {
	ID               string
	Status           string
	StartTime        time.Time
	Duration         float64
	TotalTasks       int
	ScheduledTasks   int
	UnscheduledTasks int
}

// Table is one loaded run-log snapshot. Records keep file order; every
// computation over a Table is set-based, so order only matters for
// first-occurrence tie-breaking in the report.
type Table struct {
	SourcePath string
	Records    []Record
}

// Len returns the number of records in the table
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}
