package ui

import "github.com/opensolutionsgroup/ddi/internal/imaging"

// renderer is the contract both operation displays implement. update
// feeds the newest sample and the error ranges collected so far;
// finish locks the display into its terminal state; invalidate drops
// any cached static content so the next view repaints everything.
type renderer interface {
	update(sample imaging.Sample, ranges []imaging.ErrorRange)
	finish(success bool, code int)
	invalidate()
	view(width, height int) string
}
