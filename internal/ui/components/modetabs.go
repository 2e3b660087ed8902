package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// ModeTab is one labelled view of a ModeTabs
type ModeTab struct {
	Label   string
	Content fyne.CanvasObject
}

// ModeTabs switches between views using a horizontal RadioGroup.
// This visually distinguishes the switch from content-level AppTabs.
type ModeTabs struct {
	widget.BaseWidget

	tabs         []ModeTab
	modeSelect   *widget.RadioGroup
	contentStack *fyne.Container // container.NewStack, holds active content
	current      int

	onModeChange func(index int)
}

// NewModeTabs creates a ModeTabs showing the first tab.
func NewModeTabs(tabs ...ModeTab) *ModeTabs {
	m := &ModeTabs{tabs: tabs}

	labels := make([]string, len(tabs))
	for i, tab := range tabs {
		labels[i] = tab.Label
	}

	m.modeSelect = widget.NewRadioGroup(labels, func(selected string) {
		index := m.indexOf(selected)
		if index < 0 || index == m.current {
			return
		}
		m.current = index
		m.updateContent()
		if m.onModeChange != nil {
			m.onModeChange(index)
		}
	})
	m.modeSelect.Horizontal = true
	m.modeSelect.Required = true

	m.contentStack = container.NewStack()
	if len(tabs) > 0 {
		m.modeSelect.Selected = labels[0]
		m.contentStack.Objects = []fyne.CanvasObject{tabs[0].Content}
	}

	m.ExtendBaseWidget(m)
	return m
}

// SetOnModeChange sets the callback invoked with the new tab index.
func (m *ModeTabs) SetOnModeChange(fn func(index int)) {
	m.onModeChange = fn
}

// SetMode switches to the tab at index. Out of range indexes and the
// current tab are ignored, so the callback only fires on a real change.
func (m *ModeTabs) SetMode(index int) {
	if index < 0 || index >= len(m.tabs) || index == m.current {
		return
	}
	m.modeSelect.SetSelected(m.tabs[index].Label)
}

// GetMode returns the index of the visible tab.
func (m *ModeTabs) GetMode() int {
	return m.current
}

func (m *ModeTabs) indexOf(label string) int {
	for i, tab := range m.tabs {
		if tab.Label == label {
			return i
		}
	}
	return -1
}

func (m *ModeTabs) updateContent() {
	m.contentStack.Objects = []fyne.CanvasObject{m.tabs[m.current].Content}
	m.contentStack.Refresh()
}

// CreateRenderer implements fyne.Widget.
func (m *ModeTabs) CreateRenderer() fyne.WidgetRenderer {
	content := container.NewBorder(m.modeSelect, nil, nil, nil, m.contentStack)
	return widget.NewSimpleRenderer(content)
}
