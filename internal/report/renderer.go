package report

import "context"

// Renderer turns a parsed report Document into a document artifact at
// outputPath. Implementations own all layout and styling concerns; the PDF
// renderer used in production satisfies this interface from outside the
// module. Renderer errors are reported back as values and never interrupt
// metric computation, which is already finished by the time a renderer runs.
type Renderer interface {
	Render(ctx context.Context, doc *Document, outputPath string) error
}
