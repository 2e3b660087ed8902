package components

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
)

func newQueryHeaderTabs() (*ModeTabs, *widget.Label, *widget.Label) {
	query := widget.NewLabel("Query Content")
	headers := widget.NewLabel("Headers Content")
	return NewModeTabs(
		ModeTab{Label: "Query", Content: query},
		ModeTab{Label: "Headers", Content: headers},
	), query, headers
}

func TestNewModeTabs(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	modeTabs, query, _ := newQueryHeaderTabs()

	assert.NotNil(t, modeTabs)
	assert.Equal(t, 0, modeTabs.GetMode(), "first tab should be active")
	assert.Equal(t, "Query", modeTabs.modeSelect.Selected)
	assert.Equal(t, query, modeTabs.contentStack.Objects[0])
}

func TestModeTabs_SetMode(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	modeTabs, query, headers := newQueryHeaderTabs()

	tests := []struct {
		name    string
		index   int
		want    int
		content *widget.Label
	}{
		{"switch to headers", 1, 1, headers},
		{"switch back to query", 0, 0, query},
		{"out of range is ignored", 5, 0, query},
		{"negative is ignored", -1, 0, query},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modeTabs.SetMode(tt.index)
			assert.Equal(t, tt.want, modeTabs.GetMode())
			assert.Equal(t, tt.content, modeTabs.contentStack.Objects[0])
		})
	}
}

func TestModeTabs_OnModeChange(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	modeTabs, _, _ := newQueryHeaderTabs()

	var calls []int
	modeTabs.SetOnModeChange(func(index int) {
		calls = append(calls, index)
	})

	modeTabs.SetMode(0)
	assert.Empty(t, calls, "callback should not fire for the current tab")

	modeTabs.SetMode(1)
	modeTabs.SetMode(1)
	modeTabs.SetMode(0)
	assert.Equal(t, []int{1, 0}, calls)
}

func TestModeTabs_TappingRadioSwitches(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	modeTabs, _, headers := newQueryHeaderTabs()

	modeTabs.modeSelect.SetSelected("Headers")
	assert.Equal(t, 1, modeTabs.GetMode())
	assert.Equal(t, headers, modeTabs.contentStack.Objects[0])
}

func TestModeTabs_CreateRenderer(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	modeTabs, _, _ := newQueryHeaderTabs()

	renderer := modeTabs.CreateRenderer()
	assert.NotNil(t, renderer)

	minSize := modeTabs.MinSize()
	assert.Greater(t, minSize.Width, float32(0))
	assert.Greater(t, minSize.Height, float32(0))
}
