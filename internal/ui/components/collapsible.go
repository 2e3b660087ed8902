package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// NewDetailsSection wraps long text in an Accordion that starts collapsed.
func NewDetailsSection(title, text string) *widget.Accordion {
	label := widget.NewLabel(text)
	label.Wrapping = fyne.TextWrapWord
	label.TextStyle = fyne.TextStyle{Monospace: true}

	accordion := widget.NewAccordion(widget.NewAccordionItem(title, label))
	accordion.Close(0)
	return accordion
}
