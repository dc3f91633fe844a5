package diag

import "corogen/internal/source"

// Reporter is the minimal sink phases report diagnostics to.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter writes into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// ReportError is a shortcut for SevError diagnostics.
func ReportError(r Reporter, code Code, primary source.Span, msg string) {
	if r == nil {
		return
	}
	r.Report(NewError(code, primary, msg))
}
