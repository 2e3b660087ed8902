package response

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// BodyView shows a raw response body. It keeps the look of an enabled
// multi-line entry so text can be selected and scrolled, but swallows every
// edit: stored bodies change only by re-sending.
type BodyView struct {
	widget.Entry
}

// NewBodyView creates an empty monospace body view.
func NewBodyView() *BodyView {
	v := &BodyView{}
	v.MultiLine = true
	v.Wrapping = fyne.TextWrapWord
	v.TextStyle = fyne.TextStyle{Monospace: true}
	v.ExtendBaseWidget(v)
	return v
}

// SetBody shows body with the cursor at the start. Rendering the same body
// again keeps the user's cursor and selection.
func (v *BodyView) SetBody(body string) {
	if v.Text == body {
		return
	}
	v.SetText(body)
	v.CursorRow = 0
	v.CursorColumn = 0
	v.Refresh()
}

// CopyBody puts the whole body on cb.
func (v *BodyView) CopyBody(cb fyne.Clipboard) {
	cb.SetContent(v.Text)
}

// CopySelection puts the selected text on cb; nothing happens without a selection.
func (v *BodyView) CopySelection(cb fyne.Clipboard) {
	if sel := v.SelectedText(); sel != "" {
		cb.SetContent(sel)
	}
}

// TypedRune blocks all character input.
func (v *BodyView) TypedRune(_ rune) {}

// TypedKey passes cursor movement through and drops editing keys.
func (v *BodyView) TypedKey(key *fyne.KeyEvent) {
	switch key.Name {
	case fyne.KeyLeft, fyne.KeyRight, fyne.KeyUp, fyne.KeyDown,
		fyne.KeyHome, fyne.KeyEnd, fyne.KeyPageUp, fyne.KeyPageDown:
		v.Entry.TypedKey(key)
	}
}

// TypedShortcut allows copy and select-all only.
func (v *BodyView) TypedShortcut(shortcut fyne.Shortcut) {
	switch shortcut.(type) {
	case *fyne.ShortcutCopy, *fyne.ShortcutSelectAll:
		v.Entry.TypedShortcut(shortcut)
	}
}

// TappedSecondary replaces the stock entry menu, whose Cut and Paste items
// edit the text without going through TypedShortcut.
func (v *BodyView) TappedSecondary(ev *fyne.PointEvent) {
	app := fyne.CurrentApp()
	c := app.Driver().CanvasForObject(v)
	if c == nil {
		return
	}
	cb := app.Clipboard()
	menu := fyne.NewMenu("",
		fyne.NewMenuItem("Copy", func() { v.CopySelection(cb) }),
		fyne.NewMenuItem("Copy Body", func() { v.CopyBody(cb) }),
		fyne.NewMenuItem("Select All", func() { v.Entry.TypedShortcut(&fyne.ShortcutSelectAll{}) }),
	)
	widget.ShowPopUpMenuAtPosition(menu, c, ev.AbsolutePosition)
}
