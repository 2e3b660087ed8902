package request

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/interfere/internal/domain"
)

// URLBar holds the method toggle, the URL entry and the send button
type URLBar struct {
	widget.BaseWidget

	methodBtn *widget.Button
	urlEntry  *widget.Entry
	sendBtn   *widget.Button

	// syncing suppresses OnChanged while Update writes the entry
	syncing bool

	onURLChange func(url string)
	onMethod    func()
	onSend      func()

	container *fyne.Container
}

// NewURLBar creates a new URL bar widget
func NewURLBar() *URLBar {
	b := &URLBar{}

	b.urlEntry = widget.NewEntry()
	b.urlEntry.SetPlaceHolder("https://example.com/api")
	b.urlEntry.OnChanged = func(text string) {
		if b.syncing || b.onURLChange == nil {
			return
		}
		b.onURLChange(text)
	}
	b.urlEntry.OnSubmitted = func(string) {
		if b.onSend != nil {
			b.onSend()
		}
	}

	b.methodBtn = widget.NewButton(domain.MethodGet.String(), func() {
		if b.onMethod != nil {
			b.onMethod()
		}
	})

	b.sendBtn = widget.NewButtonWithIcon("Send", theme.MailSendIcon(), func() {
		if b.onSend != nil {
			b.onSend()
		}
	})
	b.sendBtn.Importance = widget.HighImportance

	b.container = container.NewBorder(nil, nil, b.methodBtn, b.sendBtn, b.urlEntry)

	b.ExtendBaseWidget(b)
	return b
}

// SetOnURLChange sets the callback for edits to the URL entry
func (b *URLBar) SetOnURLChange(fn func(url string)) {
	b.onURLChange = fn
}

// SetOnMethod sets the callback for the method button
func (b *URLBar) SetOnMethod(fn func()) {
	b.onMethod = fn
}

// SetOnSend sets the callback for the send button and Enter in the entry
func (b *URLBar) SetOnSend(fn func()) {
	b.onSend = fn
}

// Update shows url and method. The entry is only rewritten when its text
// differs so the cursor survives while typing.
func (b *URLBar) Update(url string, method domain.Method, canSend bool) {
	b.syncing = true
	defer func() { b.syncing = false }()

	if b.urlEntry.Text != url {
		b.urlEntry.SetText(url)
	}
	if b.methodBtn.Text != method.String() {
		b.methodBtn.SetText(method.String())
	}

	if canSend {
		b.sendBtn.SetText("Send")
		b.sendBtn.Enable()
	} else {
		b.sendBtn.SetText("Sending...")
		b.sendBtn.Disable()
	}
}

// Entry returns the URL entry for focusing
func (b *URLBar) Entry() *widget.Entry {
	return b.urlEntry
}

// CreateRenderer creates the renderer for this widget
func (b *URLBar) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.container)
}
