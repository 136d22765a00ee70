package report

import (
	"strings"

	"schedreport/internal/analysis"
	"schedreport/internal/errors"
)

// Line is one "label: value" entry of a report section.
type Line struct {
	Label string
	Value string
}

// Section is a named group of report lines.
type Section struct {
	Name  string
	Lines []Line
}

// Document is the structured form of a rendered report body: a title line,
// a date line, and ordered named sections. Renderers consume Documents, not
// raw bodies.
type Document struct {
	Title    string
	Date     string
	Sections []Section
}

// ParseBody splits a rendered report body into a Document. Blank lines are
// skipped, the title and "Date:" lines are special-cased, and any line
// without a ':' starts a new section; everything else is a label/value line
// of the current section.
func ParseBody(body string) (*Document, error) {
	doc := &Document{}
	var current *Section

	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case line == analysis.ReportTitle:
			doc.Title = line
		case strings.HasPrefix(line, "Date:"):
			doc.Date = line
		case !strings.Contains(line, ":"):
			doc.Sections = append(doc.Sections, Section{Name: line})
			current = &doc.Sections[len(doc.Sections)-1]
		default:
			if current == nil {
				return nil, errors.NewRenderError("report line outside any section: "+line, nil)
			}
			parts := strings.SplitN(line, ":", 2)
			current.Lines = append(current.Lines, Line{
				Label: strings.TrimSpace(parts[0]),
				Value: strings.TrimSpace(parts[1]),
			})
		}
	}

	if doc.Title == "" {
		return nil, errors.NewRenderError("report title not found", nil)
	}
	if doc.Date == "" {
		return nil, errors.NewRenderError("report date line not found", nil)
	}

	return doc, nil
}

// SectionByName returns the named section, or nil if absent.
func (d *Document) SectionByName(name string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			return &d.Sections[i]
		}
	}
	return nil
}
