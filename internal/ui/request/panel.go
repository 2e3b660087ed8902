package request

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/interfere/internal/domain"
	"github.com/shhac/interfere/internal/model"
	"github.com/shhac/interfere/internal/ui/components"
)

// RequestPanel edits the pairs of whichever request is authoritative:
// the draft, the edited copy, or the stored request (which forks a copy
// on the first edit).
type RequestPanel struct {
	widget.BaseWidget

	modeLabel *widget.Label
	query     *PairsEditor
	headers   *PairsEditor
	tabs      *components.ModeTabs

	// syncing suppresses tab callbacks while Update selects the tab
	syncing bool

	onEdit func(model.Pair)
	onTab  func(model.Tab)
}

// NewRequestPanel creates a new request panel
func NewRequestPanel() *RequestPanel {
	p := &RequestPanel{}

	p.modeLabel = widget.NewLabel("")
	p.modeLabel.Importance = widget.LowImportance

	p.query = NewPairsEditor(domain.QueryParam)
	p.headers = NewPairsEditor(domain.Header)
	for _, editor := range []*PairsEditor{p.query, p.headers} {
		editor.SetOnEdit(func(ev model.Pair) {
			if p.onEdit != nil {
				p.onEdit(ev)
			}
		})
	}

	p.tabs = components.NewModeTabs(
		components.ModeTab{Label: "Query", Content: p.query},
		components.ModeTab{Label: "Headers", Content: p.headers},
	)
	p.tabs.SetOnModeChange(func(index int) {
		if !p.syncing && p.onTab != nil {
			p.onTab(model.Tab(index))
		}
	})

	p.ExtendBaseWidget(p)
	return p
}

// SetOnEdit sets the callback for pair edits on either tab
func (p *RequestPanel) SetOnEdit(fn func(model.Pair)) {
	p.onEdit = fn
}

// SetOnTab sets the callback for tab switches
func (p *RequestPanel) SetOnTab(fn func(model.Tab)) {
	p.onTab = fn
}

// Update shows the authoritative request of s
func (p *RequestPanel) Update(s *model.State) {
	p.syncing = true
	defer func() { p.syncing = false }()

	req := s.Request()
	p.query.SetPairs(req.QueryParams)
	p.headers.SetPairs(req.Headers)
	p.tabs.SetMode(int(s.ActiveTab))
	p.modeLabel.SetText(modeDescription(s.Mode()))
}

func modeDescription(mode model.Mode) string {
	switch mode {
	case model.ModeCopy:
		return "Editing a copy of the stored request"
	case model.ModeStored:
		return "Stored request (edits create a copy)"
	default:
		return "New request"
	}
}

// CreateRenderer implements fyne.Widget.
func (p *RequestPanel) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewBorder(p.modeLabel, nil, nil, nil, p.tabs))
}
