package analysis

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"schedreport/internal/errors"
	"schedreport/internal/runlog"
)

// maxProblemIDs caps how many skipped/failed run ids the report lists.
const maxProblemIDs = 5

// Config holds configuration options for the metrics engine. The peak-hour
// section is optional so the two report variants the dashboard tooling used
// to maintain separately come out of one engine.
type Config struct {
	IncludePeakHours bool
	CompletedMarker  string
	FailedMarker     string
	// Now supplies the report timestamp; tests pin it for idempotence.
	Now func() time.Time
}

// DefaultConfig returns the engine configuration matching the dashboard's
// status markers, with peak-hour analysis enabled.
func DefaultConfig() Config {
	return Config{
		IncludePeakHours: true,
		CompletedMarker:  runlog.StatusCompleted,
		FailedMarker:     runlog.StatusFailed,
	}
}

// Engine computes a metrics Report from one run-table snapshot. It is
// stateless between invocations: Compute is a pure function of its input
// and the injected logger is observability only, never control flow.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine creates a metrics engine with the given configuration.
func NewEngine(logger *slog.Logger, cfg Config) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CompletedMarker == "" {
		cfg.CompletedMarker = runlog.StatusCompleted
	}
	if cfg.FailedMarker == "" {
		cfg.FailedMarker = runlog.StatusFailed
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Compute derives the full metrics report for the table. A table with zero
// records yields an empty-data error and no report; an empty completed set
// yields a report with zero defaults. All rates are 0 when their denominator
// is 0.
func (e *Engine) Compute(table *runlog.Table) (*Report, error) {
	if table.Len() == 0 {
		return nil, errors.NewEmptyDataError("run table has no records")
	}

	report := &Report{GeneratedAt: e.cfg.Now()}

	// Classification. Skipped is the complement of completed, so the failed
	// set is a subset of skipped.
	var completed, skipped, failed []runlog.Record
	for _, rec := range table.Records {
		if rec.Status == e.cfg.CompletedMarker {
			completed = append(completed, rec)
		} else {
			skipped = append(skipped, rec)
			if rec.Status == e.cfg.FailedMarker {
				failed = append(failed, rec)
			}
		}
	}

	report.TotalRuns = table.Len()
	report.CompletedRuns = len(completed)
	report.SkippedRuns = len(skipped)
	report.FailedRuns = len(failed)
	report.CompletionRate = percent(len(completed), report.TotalRuns)

	if len(completed) == 0 {
		e.logger.Warn("no completed runs in table",
			slog.String("source", table.SourcePath),
			slog.Int("total_runs", report.TotalRuns))
	}

	e.computeBatchStats(completed, report)
	e.computeTaskTotals(completed, report)
	report.Scheduled = categoryMetrics(completed, report.TotalScheduled,
		func(r runlog.Record) int { return r.ScheduledTasks })
	report.Unscheduled = categoryMetrics(completed, report.TotalUnscheduled,
		func(r runlog.Record) int { return r.UnscheduledTasks })

	report.SkippedIDs = problemIDs(skipped)
	report.FailedIDs = problemIDs(failed)

	report.Insights = e.buildInsights(report)

	if e.cfg.IncludePeakHours {
		report.PeakHours = computePeakHours(table.Records, completed)
	}

	report.Body = e.render(report)

	e.logger.Info("metrics report computed",
		slog.String("source", table.SourcePath),
		slog.Int("total_runs", report.TotalRuns),
		slog.Int("completed_runs", report.CompletedRuns),
		slog.Float64("completion_rate", report.CompletionRate))

	return report, nil
}

// computeBatchStats splits completed runs into batch (more than one task)
// and individual (exactly one task) sets and derives batch duration
// statistics. Extreme-duration ties break to the first occurrence in file
// order.
func (e *Engine) computeBatchStats(completed []runlog.Record, report *Report) {
	var batch []runlog.Record
	for _, rec := range completed {
		switch {
		case rec.TotalTasks > 1:
			batch = append(batch, rec)
		case rec.TotalTasks == 1:
			report.Batch.IndividualCount++
		}
	}
	report.Batch.Count = len(batch)

	if len(batch) == 0 {
		report.Batch.Min = sentinelBatch
		report.Batch.Max = sentinelBatch
		return
	}

	var sum float64
	minIdx, maxIdx := 0, 0
	for i, rec := range batch {
		sum += rec.Duration
		if rec.Duration < batch[minIdx].Duration {
			minIdx = i
		}
		if rec.Duration > batch[maxIdx].Duration {
			maxIdx = i
		}
	}

	report.Batch.AvgDuration = sum / float64(len(batch))
	report.Batch.Min = BatchRecord{ID: batch[minIdx].ID, Duration: batch[minIdx].Duration, TotalTasks: batch[minIdx].TotalTasks}
	report.Batch.Max = BatchRecord{ID: batch[maxIdx].ID, Duration: batch[maxIdx].Duration, TotalTasks: batch[maxIdx].TotalTasks}
}

// computeTaskTotals sums scheduled/unscheduled task counts over the
// completed set and derives their proportions.
func (e *Engine) computeTaskTotals(completed []runlog.Record, report *Report) {
	for _, rec := range completed {
		report.TotalScheduled += rec.ScheduledTasks
		report.TotalUnscheduled += rec.UnscheduledTasks
	}
	report.TotalTasks = report.TotalScheduled + report.TotalUnscheduled
	report.ScheduledPercent = percent(report.TotalScheduled, report.TotalTasks)
	report.UnscheduledPercent = percent(report.TotalUnscheduled, report.TotalTasks)
}

// categoryMetrics narrows the completed set to runs with a positive duration
// and at least one task of the category, then averages task counts and
// durations over that subset. Every mean defaults to 0 on an empty subset.
func categoryMetrics(completed []runlog.Record, categoryTotal int, tasks func(runlog.Record) int) CategoryMetrics {
	metrics := CategoryMetrics{TotalTasks: categoryTotal}

	var taskSum int
	var durationSum float64
	for _, rec := range completed {
		if rec.Duration <= 0 || tasks(rec) <= 0 {
			continue
		}
		metrics.RunCount++
		taskSum += tasks(rec)
		durationSum += rec.Duration
		if tasks(rec) > metrics.MaxTasksInRun {
			metrics.MaxTasksInRun = tasks(rec)
		}
	}

	if metrics.RunCount > 0 {
		metrics.AvgTasksPerRun = float64(taskSum) / float64(metrics.RunCount)
		metrics.AvgDuration = durationSum / float64(metrics.RunCount)
	}
	return metrics
}

// problemIDs returns up to the first maxProblemIDs record ids in file order,
// or the "N/A" placeholder when the set is empty.
func problemIDs(records []runlog.Record) []string {
	if len(records) == 0 {
		return []string{"N/A"}
	}
	ids := make([]string, 0, maxProblemIDs)
	for _, rec := range records {
		ids = append(ids, rec.ID)
		if len(ids) == maxProblemIDs {
			break
		}
	}
	return ids
}

// sameIDSet compares two id lists as sets, ignoring order and duplicates.
func sameIDSet(a, b []string) bool {
	setOf := func(ids []string) map[string]struct{} {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		return set
	}
	as, bs := setOf(a), setOf(b)
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if _, ok := bs[id]; !ok {
			return false
		}
	}
	return true
}

// buildInsights derives the fixed-order insight lines. Order is part of the
// report contract.
func (e *Engine) buildInsights(report *Report) []string {
	avgTasksPerRun := ratio(report.TotalTasks, report.CompletedRuns)
	avgScheduledPerRun := ratio(report.TotalScheduled, report.CompletedRuns)
	avgUnscheduledPerRun := ratio(report.TotalUnscheduled, report.CompletedRuns)

	return []string{
		fmt.Sprintf("Task Split: %.1f%% scheduled vs %.1f%% unscheduled",
			report.ScheduledPercent, report.UnscheduledPercent),
		fmt.Sprintf("Run Completion Rate: %.1f%%", report.CompletionRate),
		fmt.Sprintf("Average Tasks per Completed Run: %.1f", avgTasksPerRun),
		fmt.Sprintf("Average Batch Duration: %.2f minutes", report.Batch.AvgDuration),
		fmt.Sprintf("Average Scheduled Tasks per Completed Run: %.1f", avgScheduledPerRun),
		fmt.Sprintf("Average Unscheduled Tasks per Completed Run: %.1f", avgUnscheduledPerRun),
	}
}

// computePeakHours buckets completed runs by start hour and finds the mode,
// then rates every hour of the whole table by its completed-to-total ratio.
// Ties resolve to the smallest hour value. With no completed runs both hours
// stay -1 and the renderer prints N/A instead of a fabricated hour.
func computePeakHours(all, completed []runlog.Record) *PeakHourStats {
	stats := &PeakHourStats{PeakHour: -1, BestHour: -1}

	completedByHour := make(map[int]int)
	for _, rec := range completed {
		completedByHour[rec.StartTime.Hour()]++
	}

	for _, hour := range sortedHours(completedByHour) {
		if completedByHour[hour] > stats.RunsInPeakHour {
			stats.PeakHour = hour
			stats.RunsInPeakHour = completedByHour[hour]
		}
	}

	totalByHour := make(map[int]int)
	for _, rec := range all {
		totalByHour[rec.StartTime.Hour()]++
	}

	for _, hour := range sortedHours(totalByHour) {
		rate := percent(completedByHour[hour], totalByHour[hour])
		if rate > stats.BestHourRate {
			stats.BestHour = hour
			stats.BestHourRate = rate
		}
	}

	return stats
}

// sortedHours returns the map keys in ascending order so iteration is
// deterministic and ties break to the smallest hour.
func sortedHours(byHour map[int]int) []int {
	hours := make([]int, 0, len(byHour))
	for hour := range byHour {
		hours = append(hours, hour)
	}
	sort.Ints(hours)
	return hours
}

// percent returns part/whole*100, or 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// ratio returns num/den, or 0 when den is 0.
func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
