package history

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/shhac/interfere/internal/domain"
	"github.com/shhac/interfere/internal/ui/components"
)

const urlMaxWidth = 48

// HistoryPanel lists stored endpoints, newest first, with a URL search
type HistoryPanel struct {
	widget.BaseWidget

	// UI components
	listWidget  *widget.List
	statusLabel *widget.Label
	searchEntry *widget.Entry

	endpoints []domain.Endpoint
	selected  int64

	// syncing suppresses callbacks while Update writes widgets
	syncing bool

	// Callbacks
	onSelect func(id int64)
	onDelete func(id int64)
	onSearch func(query string)

	// Content container
	content *fyne.Container
}

// NewHistoryPanel creates a new history panel
func NewHistoryPanel() *HistoryPanel {
	p := &HistoryPanel{}

	p.ExtendBaseWidget(p)
	p.buildUI()

	return p
}

// buildUI creates the panel UI
func (p *HistoryPanel) buildUI() {
	p.statusLabel = widget.NewLabel("History (0)")

	p.searchEntry = widget.NewEntry()
	p.searchEntry.SetPlaceHolder("Search URLs...")
	p.searchEntry.OnChanged = func(query string) {
		if p.syncing || p.onSearch == nil {
			return
		}
		p.onSearch(query)
	}

	p.listWidget = widget.NewList(
		func() int {
			return len(p.endpoints)
		},
		func() fyne.CanvasObject {
			// Template for list items
			methodLabel := widget.NewLabel("")
			methodLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
			urlLabel := components.NewHintLabel("", urlMaxWidth)
			detailLabel := widget.NewLabel("")
			detailLabel.Importance = widget.LowImportance
			deleteButton := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			deleteButton.Importance = widget.LowImportance

			return container.NewBorder(
				nil,          // top
				nil,          // bottom
				methodLabel,  // left
				deleteButton, // right
				container.NewVBox(urlLabel, detailLabel),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(p.endpoints) {
				return
			}
			endpoint := p.endpoints[id]

			border := obj.(*fyne.Container)
			centerBox := border.Objects[0].(*fyne.Container)
			methodLabel := border.Objects[1].(*widget.Label)
			deleteButton := border.Objects[2].(*widget.Button)
			urlLabel := centerBox.Objects[0].(*components.HintLabel)
			detailLabel := centerBox.Objects[1].(*widget.Label)

			methodLabel.SetText(endpoint.Method.String())
			urlLabel.SetText(endpoint.URL)
			detailLabel.SetText(describe(endpoint))

			endpointID := endpoint.ID
			deleteButton.OnTapped = func() {
				if p.onDelete != nil {
					p.onDelete(endpointID)
				}
			}
		},
	)

	// Tapping a row selects the endpoint
	p.listWidget.OnSelected = func(id widget.ListItemID) {
		if p.syncing || p.onSelect == nil || id < 0 || id >= len(p.endpoints) {
			return
		}
		p.onSelect(p.endpoints[id].ID)
	}

	header := container.NewVBox(p.statusLabel, p.searchEntry)

	p.content = container.NewBorder(
		header,       // top
		nil,          // bottom
		nil,          // left
		nil,          // right
		p.listWidget, // center
	)
}

// describe summarises an endpoint's responses for its list row
func describe(e domain.Endpoint) string {
	switch len(e.Responses) {
	case 0:
		return "no responses"
	case 1:
		return fmt.Sprintf("1 response, %s", humanize.Time(e.Responses[0].ReceivedAt))
	default:
		return fmt.Sprintf("%d responses, latest %s", len(e.Responses), humanize.Time(e.Responses[0].ReceivedAt))
	}
}

// CreateRenderer implements the fyne.Widget interface
func (p *HistoryPanel) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.content)
}

// Update shows endpoints and mirrors the selection and search text.
// selected is nil when no endpoint is selected.
func (p *HistoryPanel) Update(endpoints []domain.Endpoint, selected *int64, search string) {
	p.syncing = true
	defer func() { p.syncing = false }()

	p.endpoints = endpoints
	p.listWidget.Refresh()

	if p.searchEntry.Text != search {
		p.searchEntry.SetText(search)
	}
	if search != "" {
		p.statusLabel.SetText(fmt.Sprintf("History (%d matching)", len(endpoints)))
	} else {
		p.statusLabel.SetText(fmt.Sprintf("History (%d)", len(endpoints)))
	}

	index := -1
	if selected != nil {
		for i := range endpoints {
			if endpoints[i].ID == *selected {
				index = i
				break
			}
		}
	}
	if index < 0 {
		p.selected = 0
		p.listWidget.UnselectAll()
		return
	}
	p.listWidget.Select(index)
	if p.selected != *selected {
		p.selected = *selected
		p.listWidget.ScrollTo(index)
	}
}

// SetOnSelect sets the callback when the user clicks an endpoint
func (p *HistoryPanel) SetOnSelect(fn func(id int64)) {
	p.onSelect = fn
}

// SetOnDelete sets the callback for an endpoint's delete button
func (p *HistoryPanel) SetOnDelete(fn func(id int64)) {
	p.onDelete = fn
}

// SetOnSearch sets the callback for edits to the search entry
func (p *HistoryPanel) SetOnSearch(fn func(query string)) {
	p.onSearch = fn
}

// SearchEntry returns the search entry for focusing
func (p *HistoryPanel) SearchEntry() *widget.Entry {
	return p.searchEntry
}
