package analysis

import (
	"fmt"
	"strings"
)

// ReportTitle is the fixed first line of every rendered report body. The
// section parser in internal/report matches it exactly.
const ReportTitle = "Scheduler Log Analysis Report"

// Numeric rendering precision is fixed per metric kind and never re-derived:
// durations get two decimals, percentages and per-run averages get one.
const (
	durationFmt = "%.2f"
	percentFmt  = "%.1f"
	averageFmt  = "%.1f"
)

// Section names as they appear in the rendered body. Section header lines
// must not contain ':' so the section parser can tell them from value lines.
const (
	SectionLogDistribution  = "Log Distribution Details"
	SectionTaskDistribution = "Task Distribution Details"
	SectionScheduled        = "Scheduled Tasks Analysis"
	SectionUnscheduled      = "Unscheduled Tasks Analysis"
	SectionBatchSummary     = "Batch Processing Summary"
	SectionProblemRuns      = "Problem Runs"
	SectionInsights         = "Insights"
	SectionPeakHours        = "Peak Hour Analysis"
)

// render produces the full text body: title, date line, then sections of
// "label: value" lines separated by blank lines.
func (e *Engine) render(r *Report) string {
	var b strings.Builder

	b.WriteString(ReportTitle + "\n")
	fmt.Fprintf(&b, "Date: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("\n" + SectionLogDistribution + "\n")
	fmt.Fprintf(&b, "Total Logs: %d\n", r.TotalRuns)
	fmt.Fprintf(&b, "Completed Logs: %d\n", r.CompletedRuns)
	fmt.Fprintf(&b, "Skipped Logs: %d\n", r.SkippedRuns)
	if r.FailedRuns > 0 {
		fmt.Fprintf(&b, "Failed Logs: %d\n", r.FailedRuns)
	}
	fmt.Fprintf(&b, "Success Rate: "+percentFmt+"%%\n", r.CompletionRate)

	b.WriteString("\n" + SectionTaskDistribution + "\n")
	fmt.Fprintf(&b, "Total Tasks Processed: %d\n", r.TotalTasks)
	fmt.Fprintf(&b, "Scheduled Tasks: "+percentFmt+"%%\n", r.ScheduledPercent)
	fmt.Fprintf(&b, "Unscheduled Tasks: "+percentFmt+"%%\n", r.UnscheduledPercent)

	renderCategory(&b, SectionScheduled, "Scheduled", r.Scheduled)
	renderCategory(&b, SectionUnscheduled, "Unscheduled", r.Unscheduled)

	b.WriteString("\n" + SectionBatchSummary + "\n")
	fmt.Fprintf(&b, "Total Batch Runs: %d\n", r.Batch.Count)
	fmt.Fprintf(&b, "Individual Runs: %d\n", r.Batch.IndividualCount)
	fmt.Fprintf(&b, "Average Batch Duration: "+durationFmt+" minutes\n", r.Batch.AvgDuration)
	fmt.Fprintf(&b, "Maximum Batch Size: %d tasks (ID: %s)\n", r.Batch.Max.TotalTasks, r.Batch.Max.ID)
	fmt.Fprintf(&b, "Longest Batch Duration: "+durationFmt+" minutes (ID: %s)\n", r.Batch.Max.Duration, r.Batch.Max.ID)
	fmt.Fprintf(&b, "Shortest Batch Duration: "+durationFmt+" minutes (ID: %s)\n", r.Batch.Min.Duration, r.Batch.Min.ID)

	b.WriteString("\n" + SectionProblemRuns + "\n")
	if sameIDSet(r.SkippedIDs, r.FailedIDs) {
		fmt.Fprintf(&b, "Problem IDs: %s\n", strings.Join(r.SkippedIDs, ", "))
	} else {
		fmt.Fprintf(&b, "Skipped IDs: %s\n", strings.Join(r.SkippedIDs, ", "))
		fmt.Fprintf(&b, "Failed IDs: %s\n", strings.Join(r.FailedIDs, ", "))
	}

	b.WriteString("\n" + SectionInsights + "\n")
	for _, insight := range r.Insights {
		b.WriteString(insight + "\n")
	}

	if r.PeakHours != nil {
		b.WriteString("\n" + SectionPeakHours + "\n")
		if r.PeakHours.PeakHour >= 0 {
			fmt.Fprintf(&b, "Peak Hour: %02d:00\n", r.PeakHours.PeakHour)
		} else {
			b.WriteString("Peak Hour: N/A\n")
		}
		fmt.Fprintf(&b, "Completed Runs in Peak Hour: %d\n", r.PeakHours.RunsInPeakHour)
		if r.PeakHours.BestHour >= 0 {
			fmt.Fprintf(&b, "Best Performing Hour: %02d:00\n", r.PeakHours.BestHour)
			fmt.Fprintf(&b, "Best Hour Success Rate: "+percentFmt+"%%\n", r.PeakHours.BestHourRate)
		} else {
			b.WriteString("Best Performing Hour: N/A\n")
		}
	}

	return b.String()
}

// renderCategory writes one per-category task analysis section.
func renderCategory(b *strings.Builder, section, label string, m CategoryMetrics) {
	b.WriteString("\n" + section + "\n")
	fmt.Fprintf(b, "Total %s Tasks: %d\n", label, m.TotalTasks)
	fmt.Fprintf(b, "Average %s Tasks per Run: "+averageFmt+"\n", label, m.AvgTasksPerRun)
	fmt.Fprintf(b, "Maximum %s Tasks in a Run: %d\n", label, m.MaxTasksInRun)
	fmt.Fprintf(b, "Runs with %s Tasks: %d\n", label, m.RunCount)
	fmt.Fprintf(b, "Average Duration for %s Runs: "+durationFmt+" minutes\n", label, m.AvgDuration)
}
