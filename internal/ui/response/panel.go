package response

import (
	"fmt"
	"net/http"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/shhac/interfere/internal/format"
	"github.com/shhac/interfere/internal/model"
)

// ResponsePanel shows the displayed response of a State: the unsaved
// preview when present, otherwise the selected stored response.
type ResponsePanel struct {
	widget.BaseWidget

	statusBadge   *widget.Label
	positionLabel *widget.Label
	metaLabel     *widget.Label
	loadingBar    *widget.ProgressBarInfinite

	prevBtn      *widget.Button
	nextBtn      *widget.Button
	formatBtn    *widget.Button
	copyBtn      *widget.Button
	duplicateBtn *widget.Button
	deleteBtn    *widget.Button

	previewBar *fyne.Container

	body        *BodyView
	highlighted *widget.RichText
	placeholder *widget.Label

	// text currently shown, raw or formatted; the copy button copies it
	displayed string

	// Container for switching between content views
	contentContainer *fyne.Container
	rawContent       fyne.CanvasObject
	highlightContent fyne.CanvasObject
	emptyContent     fyne.CanvasObject

	// ID of the stored response the delete button removes
	responseID int64

	onPrev      func()
	onNext      func()
	onFormat    func()
	onDuplicate func()
	onDelete    func(id int64)
	onSave      func()
	onDiscard   func()
}

// NewResponsePanel creates an empty response panel.
func NewResponsePanel() *ResponsePanel {
	p := &ResponsePanel{}
	p.ExtendBaseWidget(p)
	p.initializeComponents()
	return p
}

// initializeComponents creates all UI components.
func (p *ResponsePanel) initializeComponents() {
	p.statusBadge = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	p.positionLabel = widget.NewLabel("")
	p.metaLabel = widget.NewLabel("")
	p.metaLabel.Importance = widget.LowImportance

	p.loadingBar = widget.NewProgressBarInfinite()
	p.loadingBar.Hide()
	p.loadingBar.Stop()

	p.prevBtn = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() { call(p.onPrev) })
	p.nextBtn = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() { call(p.onNext) })
	p.formatBtn = widget.NewButton("Format", func() { call(p.onFormat) })
	p.copyBtn = widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
		fyne.CurrentApp().Clipboard().SetContent(p.displayed)
	})
	p.duplicateBtn = widget.NewButtonWithIcon("Duplicate", theme.ContentAddIcon(), func() { call(p.onDuplicate) })
	p.deleteBtn = widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		if p.onDelete != nil && p.responseID != 0 {
			p.onDelete(p.responseID)
		}
	})
	p.deleteBtn.Importance = widget.DangerImportance

	saveBtn := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() { call(p.onSave) })
	saveBtn.Importance = widget.HighImportance
	discardBtn := widget.NewButton("Discard", func() { call(p.onDiscard) })
	previewLabel := widget.NewLabel("Unsaved response to the edited request")
	previewLabel.Importance = widget.WarningImportance
	p.previewBar = container.NewBorder(nil, nil, nil, container.NewHBox(saveBtn, discardBtn), previewLabel)
	p.previewBar.Hide()

	p.body = NewBodyView()
	p.highlighted = widget.NewRichText()
	p.highlighted.Wrapping = fyne.TextWrapWord

	p.placeholder = widget.NewLabel("Send a request to see the response")
	p.placeholder.Alignment = fyne.TextAlignCenter
	p.placeholder.Importance = widget.LowImportance

	p.rawContent = p.body
	p.highlightContent = container.NewVScroll(p.highlighted)

	p.emptyContent = container.NewCenter(p.placeholder)
	p.contentContainer = container.NewStack(p.emptyContent)
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// SetOnPrev sets the callback for the previous-response button
func (p *ResponsePanel) SetOnPrev(fn func()) { p.onPrev = fn }

// SetOnNext sets the callback for the next-response button
func (p *ResponsePanel) SetOnNext(fn func()) { p.onNext = fn }

// SetOnFormat sets the callback for the format toggle
func (p *ResponsePanel) SetOnFormat(fn func()) { p.onFormat = fn }

// SetOnDuplicate sets the callback for the duplicate button
func (p *ResponsePanel) SetOnDuplicate(fn func()) { p.onDuplicate = fn }

// SetOnDelete sets the callback for deleting the displayed stored response
func (p *ResponsePanel) SetOnDelete(fn func(id int64)) { p.onDelete = fn }

// SetOnSave sets the callback for saving the unsaved preview
func (p *ResponsePanel) SetOnSave(fn func()) { p.onSave = fn }

// SetOnDiscard sets the callback for discarding the unsaved preview
func (p *ResponsePanel) SetOnDiscard(fn func()) { p.onDiscard = fn }

// Update renders s.
func (p *ResponsePanel) Update(s *model.State) {
	p.setLoading(s.Pending != nil)

	endpoint := s.Endpoint()
	stored := s.Response()
	preview := s.DraftResponse

	if preview == nil && stored == nil {
		p.showEmpty(endpoint != nil)
		return
	}

	code := s.DisplayedCode()
	text := s.DisplayedText()
	var received time.Time
	if preview != nil {
		received = preview.ReceivedAt
	} else {
		received = stored.ReceivedAt
	}

	p.statusBadge.SetText(StatusText(code))
	p.statusBadge.Importance = StatusImportance(code)
	p.statusBadge.Refresh()
	p.metaLabel.SetText(describe(len(text), received))

	total := len(endpoint.Responses)
	if preview != nil {
		p.positionLabel.SetText("preview")
		p.previewBar.Show()
		p.responseID = 0
		p.deleteBtn.Hide()
	} else {
		p.positionLabel.SetText(fmt.Sprintf("%d of %d", s.SelectedResponseIndex+1, total))
		p.previewBar.Hide()
		p.responseID = stored.ID
		p.deleteBtn.Show()
	}
	setEnabled(p.prevBtn, preview == nil && s.SelectedResponseIndex > 0)
	setEnabled(p.nextBtn, preview == nil && s.SelectedResponseIndex < total-1)
	p.duplicateBtn.Show()
	p.copyBtn.Show()

	kind := format.Detect(text)
	switch {
	case s.Formatted != nil:
		p.formatBtn.SetText("Raw")
		p.formatBtn.Enable()
	case kind == format.Plain:
		p.formatBtn.SetText("Format")
		p.formatBtn.Disable()
	default:
		p.formatBtn.SetText("Format " + kind.String())
		p.formatBtn.Enable()
	}
	p.formatBtn.Show()

	if s.Formatted != nil {
		if p.displayed != *s.Formatted || p.contentContainer.Objects[0] != p.highlightContent {
			p.highlighted.Segments = highlightBody(*s.Formatted, kind)
			p.highlighted.Refresh()
		}
		p.displayed = *s.Formatted
		p.showContent(p.highlightContent)
		return
	}
	p.displayed = text
	p.body.SetBody(text)
	p.showContent(p.rawContent)
}

func (p *ResponsePanel) showEmpty(endpointSelected bool) {
	p.statusBadge.SetText("")
	p.positionLabel.SetText("")
	p.metaLabel.SetText("")
	p.previewBar.Hide()
	p.responseID = 0
	p.displayed = ""
	for _, btn := range []*widget.Button{p.prevBtn, p.nextBtn, p.formatBtn, p.deleteBtn, p.copyBtn, p.duplicateBtn} {
		btn.Hide()
	}
	if endpointSelected {
		p.placeholder.SetText("No responses stored for this endpoint")
	} else {
		p.placeholder.SetText("Send a request to see the response")
	}
	p.showContent(p.emptyContent)
}

func (p *ResponsePanel) showContent(obj fyne.CanvasObject) {
	if len(p.contentContainer.Objects) == 1 && p.contentContainer.Objects[0] == obj {
		return
	}
	p.contentContainer.Objects = []fyne.CanvasObject{obj}
	p.contentContainer.Refresh()
}

func (p *ResponsePanel) setLoading(loading bool) {
	if loading {
		p.loadingBar.Start()
		p.loadingBar.Show()
	} else {
		p.loadingBar.Stop()
		p.loadingBar.Hide()
	}
}

func setEnabled(btn *widget.Button, enabled bool) {
	btn.Show()
	if enabled {
		btn.Enable()
	} else {
		btn.Disable()
	}
}

// StatusText renders a code as "404 Not Found".
func StatusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return fmt.Sprintf("%d %s", code, text)
	}
	return fmt.Sprintf("%d", code)
}

// StatusImportance colors a status badge by class.
func StatusImportance(code int) widget.Importance {
	switch {
	case code >= 500:
		return widget.DangerImportance
	case code >= 400:
		return widget.WarningImportance
	case code >= 300:
		return widget.MediumImportance
	case code >= 200:
		return widget.SuccessImportance
	default:
		return widget.LowImportance
	}
}

func describe(size int, received time.Time) string {
	s := humanize.Bytes(uint64(size))
	if received.IsZero() {
		return s
	}
	return s + ", received " + humanize.Time(received)
}

// CreateRenderer implements fyne.Widget.
func (p *ResponsePanel) CreateRenderer() fyne.WidgetRenderer {
	toolbar := container.NewBorder(
		nil, nil,
		container.NewHBox(p.statusBadge, p.metaLabel),
		container.NewHBox(p.prevBtn, p.positionLabel, p.nextBtn, p.formatBtn, p.copyBtn, p.duplicateBtn, p.deleteBtn),
	)

	content := container.NewBorder(
		container.NewVBox(toolbar, p.previewBar, widget.NewSeparator()),
		p.loadingBar,
		nil,
		nil,
		p.contentContainer,
	)

	return widget.NewSimpleRenderer(content)
}

// MinSize implements fyne.Widget (optional, provides reasonable defaults).
func (p *ResponsePanel) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}
