// Package report turns a rendered report body into a structured document
// and writes it out through a pluggable Renderer.
//
// ParseBody splits the engine's text body on a simple rule: a non-blank
// line without ':' starts a new section, everything else is a label/value
// line of the current section. The title and "Date:" lines are
// special-cased. The resulting Document is what renderers consume.
//
// Two renderers ship in-tree:
//
// TextRenderer: styled plain-text document with ruled title, underlined
// section headers and aligned label columns. The CLI default.
//
// CSVRenderer: Section,Metric,Value rows with an optional UTF-8 BOM for
// Excel compatibility.
//
// Callers wanting another artifact format (a PDF, say) implement Renderer
// themselves; renderer failures surface as render errors, never panics.
package report
