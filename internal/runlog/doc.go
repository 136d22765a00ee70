// Package runlog loads scheduler run-log exports into an in-memory table.
//
// The dashboard exports the run log as CSV or xlsx; Load handles both and
// maps the required columns by header name, case-insensitively, so column
// reordering in the export does not break the loader. Numeric cells parse
// leniently: thousands separators are stripped and unparseable or negative
// values coerce to 0 rather than failing the whole file.
//
// Example usage:
//
//	table, err := runlog.Load("data/downloads/export.csv")
//	if err != nil {
//	    // errors.IsMissingColumn / errors.IsMalformedInput distinguish causes
//	}
//	today := runlog.FilterDay(table, time.Now())
//
// FilterDay narrows a table to one calendar day without modifying the
// input; an empty result is a valid table and emptiness is judged
// downstream by the metrics engine.
package runlog
