package request

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shhac/interfere/internal/domain"
	"github.com/shhac/interfere/internal/model"
)

func TestURLBar_UpdateDoesNotEcho(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	bar := NewURLBar()
	var changes []string
	bar.SetOnURLChange(func(url string) { changes = append(changes, url) })

	bar.Update("http://example.com", domain.MethodPost, true)
	assert.Empty(t, changes, "programmatic updates must not emit edits")
	assert.Equal(t, "POST", bar.methodBtn.Text)
	assert.Equal(t, "http://example.com", bar.urlEntry.Text)

	bar.Update("", domain.MethodGet, true)
	test.Type(bar.urlEntry, "http://b")
	require.NotEmpty(t, changes)
	assert.Equal(t, "http://b", changes[len(changes)-1])
}

func TestURLBar_SendDisabledWhilePending(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	bar := NewURLBar()
	sends := 0
	bar.SetOnSend(func() { sends++ })

	bar.Update("http://a", domain.MethodGet, false)
	assert.True(t, bar.sendBtn.Disabled())
	test.Tap(bar.sendBtn)
	assert.Equal(t, 0, sends)

	bar.Update("http://a", domain.MethodGet, true)
	test.Tap(bar.sendBtn)
	assert.Equal(t, 1, sends)
}

func TestPairsEditor_ReusesRows(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	editor := NewPairsEditor(domain.Header)
	editor.SetPairs([]domain.KeyValue{
		{ID: 1, Key: "Accept", Value: "json", On: true},
		{ID: 2, Key: "X-Trace", Value: "1"},
	})
	require.Len(t, editor.rows, 2)
	first := editor.rows[0]
	assert.Equal(t, "Accept", first.key.Text)
	assert.True(t, first.on.Checked)
	assert.False(t, editor.rows[1].on.Checked)

	editor.SetPairs([]domain.KeyValue{{ID: 1, Key: "Accept", Value: "xml", On: true}})
	require.Len(t, editor.rows, 1)
	assert.Same(t, first, editor.rows[0])
	assert.Equal(t, "xml", first.value.Text)

	editor.SetPairs(nil)
	assert.Empty(t, editor.rows)
	assert.Equal(t, editor.empty, editor.list.Objects[0])
}

func TestPairsEditor_EmitsEdits(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	editor := NewPairsEditor(domain.QueryParam)
	var got []model.Pair
	editor.SetOnEdit(func(ev model.Pair) { got = append(got, ev) })

	editor.SetPairs([]domain.KeyValue{{ID: 7, Key: "q"}})
	assert.Empty(t, got, "SetPairs must not emit edits")

	row := editor.rows[0]
	test.Type(row.value, "x")
	test.Tap(row.on)
	test.Tap(row.del)
	test.Tap(editor.addBtn)

	require.Len(t, got, 4)
	assert.Equal(t, model.Pair{Kind: domain.QueryParam, Op: model.PairSetValue, ID: 7, Text: "x"}, got[0])
	assert.Equal(t, model.PairToggle, got[1].Op)
	assert.Equal(t, model.PairDelete, got[2].Op)
	assert.Equal(t, model.PairAdd, got[3].Op)
}

func TestRequestPanel_TabSwitch(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	p := NewRequestPanel()
	var tabs []model.Tab
	p.SetOnTab(func(tab model.Tab) { tabs = append(tabs, tab) })

	s := model.NewState()
	s.ActiveTab = model.TabHeaders
	s.DraftRequest.Headers = []domain.KeyValue{{ID: 1, Key: "A", On: true}}
	p.Update(&s)

	assert.Equal(t, int(model.TabHeaders), p.tabs.GetMode())
	assert.Len(t, p.headers.rows, 1)
	assert.Equal(t, "New request", p.modeLabel.Text)
	assert.Empty(t, tabs, "Update must not emit tab switches")

	p.tabs.SetMode(int(model.TabQuery))
	assert.Equal(t, []model.Tab{model.TabQuery}, tabs)
}
