package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/mattn/go-runewidth"
)

// Compile-time interface check.
var _ desktop.Hoverable = (*HintLabel)(nil)

// HintLabel truncates text wider than maxWidth cells with "…" and shows
// the full text in a popup on hover. Endpoint URLs in the history list use it.
type HintLabel struct {
	widget.BaseWidget

	fullText string
	maxWidth int
	label    *widget.Label
	popup    *widget.PopUp
}

// NewHintLabel creates a label that truncates text wider than maxWidth.
// Wide runes such as CJK count as two cells.
func NewHintLabel(text string, maxWidth int) *HintLabel {
	h := &HintLabel{maxWidth: max(maxWidth, 2)}
	h.label = widget.NewLabel("")
	h.ExtendBaseWidget(h)
	h.SetText(text)
	return h
}

// SetText replaces the text, keeping the truncation limit.
func (h *HintLabel) SetText(text string) {
	h.fullText = text
	h.label.SetText(truncateWidth(text, h.maxWidth))
}

// Text returns the untruncated text.
func (h *HintLabel) Text() string {
	return h.fullText
}

// truncateWidth returns s unchanged if it fits in width cells,
// otherwise cuts it so that s plus "…" fits.
func truncateWidth(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

// MouseIn shows a tooltip popup with the full text when the label is truncated.
func (h *HintLabel) MouseIn(_ *desktop.MouseEvent) {
	if !h.needsTooltip() {
		return
	}
	c := fyne.CurrentApp().Driver().CanvasForObject(h)
	if c == nil {
		return
	}
	tip := widget.NewLabel(h.fullText)
	h.popup = widget.NewPopUp(tip, c)
	h.popup.ShowAtRelativePosition(fyne.NewPos(0, h.Size().Height), h)
}

// MouseMoved is required by desktop.Hoverable but needs no action.
func (h *HintLabel) MouseMoved(_ *desktop.MouseEvent) {}

// MouseOut hides and discards the tooltip popup.
func (h *HintLabel) MouseOut() {
	if h.popup != nil {
		h.popup.Hide()
		h.popup = nil
	}
}

func (h *HintLabel) needsTooltip() bool {
	return runewidth.StringWidth(h.fullText) > h.maxWidth
}

// CreateRenderer implements fyne.Widget.
func (h *HintLabel) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(h.label)
}
