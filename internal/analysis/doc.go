// Package analysis computes the scheduler run-log metrics report.
//
// It consolidates the report logic that previously existed as two
// near-duplicate generators (one with peak-hour analysis, one without) into
// a single configurable Engine. The optional sections are selected through
// Config rather than parallel implementations.
//
// # Usage
//
//	engine := analysis.NewEngine(logger, analysis.DefaultConfig())
//	report, err := engine.Compute(table)
//	if err != nil {
//	    // errors.IsEmptyData(err) for a zero-record table
//	}
//	fmt.Println(report.Body)
//
// # Classification semantics
//
// A record's status is evaluated exactly once: equal to the completed
// marker means completed, anything else means skipped. The failed marker is
// a specific skip cause, so the failed set overlaps the skipped set. The
// overlap is intentional and tested; see Report.
//
// All derived rates are defined as 0 when their denominator is 0, so the
// engine never divides by zero regardless of input shape.
package analysis
