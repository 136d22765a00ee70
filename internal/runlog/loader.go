package runlog

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"schedreport/internal/errors"
)

// startTimeLayouts are the timestamp formats seen in dashboard exports.
var startTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-01-02",
}

// Load reads a delimited run-log export into a Table. CSV is the dashboard
// default; .xlsx exports are read with excelize. The header row is matched
// case-insensitively and every required column must be present.
func Load(path string) (*Table, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readExcelRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, errors.NewMalformedInputError("input file has no header row", nil).
			WithContext("path", path)
	}

	columnMap, err := mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	table := &Table{SourcePath: path}
	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		table.Records = append(table.Records, buildRecord(row, columnMap, i+2))
	}

	slog.Debug("run log loaded",
		slog.String("path", path),
		slog.Int("records", len(table.Records)))

	return table, nil
}

// readCSVRows reads all rows of a CSV file
func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewMalformedInputError("failed to open input file", err).
			WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil && err != io.EOF {
		return nil, errors.NewMalformedInputError("failed to parse CSV input", err).
			WithContext("path", path)
	}
	return rows, nil
}

// readExcelRows reads all rows of the first sheet of an xlsx file
func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.NewMalformedInputError("failed to open xlsx input", err).
			WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewMalformedInputError("xlsx input has no sheets", nil).
			WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewMalformedInputError("failed to read xlsx sheet", err).
			WithContext("path", path).
			WithContext("sheet", sheets[0])
	}
	return rows, nil
}

// mapColumns maps required column names to their positions in the header
// row. The first required column not found is reported; the check runs in
// RequiredColumns order so the error is deterministic.
func mapColumns(header []string) (map[string]int, error) {
	columnMap := make(map[string]int, len(RequiredColumns))
	for i, cell := range header {
		name := strings.TrimSpace(cell)
		for _, col := range RequiredColumns {
			if strings.EqualFold(name, col) {
				if _, exists := columnMap[col]; !exists {
					columnMap[col] = i
				}
			}
		}
	}

	for _, col := range RequiredColumns {
		if _, ok := columnMap[col]; !ok {
			return nil, errors.NewMissingColumnError(col)
		}
	}
	return columnMap, nil
}

// buildRecord converts one data row into a Record using the column map.
// Numeric cells parse leniently: thousands separators are stripped and
// unparseable or negative values become 0. An unparseable start time stays
// the zero time rather than failing the load.
func buildRecord(row []string, columnMap map[string]int, rowNum int) Record {
	cell := func(col string) string {
		idx := columnMap[col]
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	parseFloat := func(col string) float64 {
		val, err := strconv.ParseFloat(strings.ReplaceAll(cell(col), ",", ""), 64)
		if err != nil || val < 0 {
			return 0
		}
		return val
	}

	parseInt := func(col string) int {
		val, err := strconv.Atoi(strings.ReplaceAll(cell(col), ",", ""))
		if err != nil || val < 0 {
			return 0
		}
		return val
	}

	startTime, ok := parseStartTime(cell(ColumnStartTime))
	if !ok {
		slog.Warn("unable to parse start time",
			slog.Int("row", rowNum),
			slog.String("value", cell(ColumnStartTime)))
	}

	return Record{
		ID:               cell(ColumnID),
		Status:           cell(ColumnStatus),
		StartTime:        startTime,
		Duration:         parseFloat(ColumnDuration),
		TotalTasks:       parseInt(ColumnTotalTasks),
		ScheduledTasks:   parseInt(ColumnScheduled),
		UnscheduledTasks: parseInt(ColumnUnscheduled),
	}
}

// parseStartTime tries each known export layout in order
func parseStartTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// isEmptyRow reports whether every cell of the row is blank
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
