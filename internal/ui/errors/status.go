package errors

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	apperrors "github.com/shhac/interfere/internal/errors"
)

// Banner shows the current error above the response panel. Each severity
// uses a distinct icon shape for accessibility (not color-only):
//   - Info: info icon (i)
//   - Warning: warning icon (triangle)
//   - Error: error icon (X shape)
type Banner struct {
	widget.BaseWidget

	indicator  *widget.Icon
	title      *widget.Label
	message    *widget.Label
	detailsBtn *widget.Button
	closeBtn   *widget.Button

	current *apperrors.UIError

	onDismiss func()
	onDetails func(*apperrors.UIError)
}

// NewBanner creates a hidden banner.
func NewBanner() *Banner {
	b := &Banner{
		indicator: widget.NewIcon(theme.ErrorIcon()),
		title:     widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		message:   widget.NewLabel(""),
	}
	b.message.Truncation = fyne.TextTruncateEllipsis

	b.detailsBtn = widget.NewButton("Details", func() {
		if b.current != nil && b.onDetails != nil {
			b.onDetails(b.current)
		}
	})
	b.detailsBtn.Importance = widget.LowImportance

	b.closeBtn = widget.NewButtonWithIcon("", theme.CancelIcon(), func() {
		if b.onDismiss != nil {
			b.onDismiss()
		}
	})
	b.closeBtn.Importance = widget.LowImportance

	b.ExtendBaseWidget(b)
	b.Hide()
	return b
}

// SetOnDismiss sets the callback for the close button
func (b *Banner) SetOnDismiss(fn func()) {
	b.onDismiss = fn
}

// SetOnDetails sets the callback for the details button
func (b *Banner) SetOnDetails(fn func(*apperrors.UIError)) {
	b.onDetails = fn
}

// SetError shows err, or hides the banner when err is nil.
func (b *Banner) SetError(err error) {
	uiErr := apperrors.ClassifyError(err)
	b.current = uiErr
	if uiErr == nil {
		b.Hide()
		return
	}

	switch uiErr.Severity {
	case apperrors.SeverityInfo:
		b.indicator.SetResource(theme.InfoIcon())
	case apperrors.SeverityWarning:
		b.indicator.SetResource(theme.WarningIcon())
	default:
		b.indicator.SetResource(theme.ErrorIcon())
	}
	b.title.SetText(uiErr.Title)
	b.message.SetText(uiErr.Message)

	if len(uiErr.Recovery) > 0 || uiErr.Details != "" {
		b.detailsBtn.Show()
	} else {
		b.detailsBtn.Hide()
	}
	b.Show()
	b.Refresh()
}

// Current returns the displayed error, nil when hidden.
func (b *Banner) Current() *apperrors.UIError {
	return b.current
}

// CreateRenderer implements fyne.Widget.
func (b *Banner) CreateRenderer() fyne.WidgetRenderer {
	content := container.NewBorder(
		nil, nil,
		container.NewHBox(b.indicator, b.title),
		container.NewHBox(b.detailsBtn, b.closeBtn),
		b.message,
	)
	return widget.NewSimpleRenderer(content)
}
