package errors

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	apperrors "github.com/shhac/interfere/internal/errors"
	"github.com/shhac/interfere/internal/ui/components"
)

// ShowError displays a rich error dialog with recovery suggestions and
// technical details.
func ShowError(err error, window fyne.Window) {
	if err == nil {
		return
	}
	ShowUIError(apperrors.ClassifyError(err), window)
}

// ShowUIError displays an already classified error.
func ShowUIError(uiErr *apperrors.UIError, window fyne.Window) {
	if uiErr == nil {
		return
	}

	// Word-wrapping labels prevent horizontal expansion
	msgLabel := widget.NewLabel(uiErr.Message)
	msgLabel.Wrapping = fyne.TextWrapWord
	content := container.NewVBox(msgLabel)

	if len(uiErr.Recovery) > 0 {
		content.Add(widget.NewSeparator())
		content.Add(widget.NewLabel("You can:"))
		for _, suggestion := range uiErr.Recovery {
			lbl := widget.NewLabel("• " + suggestion)
			lbl.Wrapping = fyne.TextWrapWord
			content.Add(lbl)
		}
	}

	if uiErr.Details != "" {
		content.Add(components.NewDetailsSection("Technical Details", uiErr.Details))
	}

	d := dialog.NewCustom(uiErr.Title, "Close", content, window)
	d.Resize(fyne.NewSize(500, 360))
	d.Show()
}
