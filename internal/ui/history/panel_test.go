package history

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"github.com/shhac/interfere/internal/domain"
)

func sampleEndpoints() []domain.Endpoint {
	now := time.Now()
	return []domain.Endpoint{
		{ID: 3, URL: "http://b", Method: domain.MethodPost, Responses: []domain.Response{
			{ID: 9, Code: 201, ReceivedAt: now.Add(-time.Minute)},
			{ID: 8, Code: 500, ReceivedAt: now.Add(-time.Hour)},
		}},
		{ID: 1, URL: "http://a", Method: domain.MethodGet, Responses: []domain.Response{
			{ID: 2, Code: 200, ReceivedAt: now.Add(-2 * time.Hour)},
		}},
	}
}

func TestHistoryPanel_UpdateDoesNotEcho(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	p := NewHistoryPanel()
	selects, searches := 0, 0
	p.SetOnSelect(func(int64) { selects++ })
	p.SetOnSearch(func(string) { searches++ })

	id := int64(1)
	p.Update(sampleEndpoints(), &id, "http")

	assert.Equal(t, 0, selects)
	assert.Equal(t, 0, searches)
	assert.Equal(t, "http", p.searchEntry.Text)
	assert.Equal(t, "History (2 matching)", p.statusLabel.Text)
	assert.Equal(t, 2, p.listWidget.Length())
}

func TestHistoryPanel_SelectEmitsID(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	p := NewHistoryPanel()
	var got []int64
	p.SetOnSelect(func(id int64) { got = append(got, id) })

	p.Update(sampleEndpoints(), nil, "")
	assert.Equal(t, "History (2)", p.statusLabel.Text)

	p.listWidget.Select(1)
	assert.Equal(t, []int64{1}, got)
}

func TestHistoryPanel_SearchEmits(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	p := NewHistoryPanel()
	var queries []string
	p.SetOnSearch(func(q string) { queries = append(queries, q) })

	test.Type(p.searchEntry, "ab")
	assert.Equal(t, []string{"a", "ab"}, queries)
}

func TestDescribe(t *testing.T) {
	endpoints := sampleEndpoints()

	assert.Equal(t, "no responses", describe(domain.Endpoint{}))
	assert.Contains(t, describe(endpoints[0]), "2 responses, latest 1 minute ago")
	assert.Contains(t, describe(endpoints[1]), "1 response, 2 hours ago")
}
