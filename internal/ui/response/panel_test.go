package response

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"

	"github.com/shhac/interfere/internal/domain"
	"github.com/shhac/interfere/internal/model"
)

func stateWithResponses() model.State {
	s := model.NewState()
	id := int64(1)
	s.Endpoints = []domain.Endpoint{{
		ID:     id,
		URL:    "http://example.com",
		Method: domain.MethodGet,
		Responses: []domain.Response{
			{ID: 11, Code: 404, Text: "missing", ReceivedAt: time.Now().Add(-time.Minute)},
			{ID: 10, Code: 200, Text: `{"a":1}`, ReceivedAt: time.Now().Add(-time.Hour)},
		},
	}}
	s.SelectedEndpoint = &id
	return s
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "200 OK", StatusText(200))
	assert.Equal(t, "404 Not Found", StatusText(404))
	assert.Equal(t, "599", StatusText(599))
}

func TestStatusImportance(t *testing.T) {
	tests := []struct {
		code int
		want widget.Importance
	}{
		{100, widget.LowImportance},
		{204, widget.SuccessImportance},
		{301, widget.MediumImportance},
		{404, widget.WarningImportance},
		{503, widget.DangerImportance},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusImportance(tt.code), "code %d", tt.code)
	}
}

func TestResponsePanel_Empty(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	p := NewResponsePanel()
	s := model.NewState()
	p.Update(&s)

	assert.Equal(t, "Send a request to see the response", p.placeholder.Text)
	assert.False(t, p.deleteBtn.Visible())
	assert.Equal(t, p.emptyContent, p.contentContainer.Objects[0])
	assert.False(t, p.copyBtn.Visible())
}

func TestResponsePanel_StoredResponse(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	p := NewResponsePanel()
	var deleted int64
	p.SetOnDelete(func(id int64) { deleted = id })

	s := stateWithResponses()
	p.Update(&s)

	assert.Equal(t, "404 Not Found", p.statusBadge.Text)
	assert.Equal(t, widget.WarningImportance, p.statusBadge.Importance)
	assert.Equal(t, "1 of 2", p.positionLabel.Text)
	assert.Equal(t, "missing", p.body.Text)
	assert.True(t, p.prevBtn.Disabled())
	assert.False(t, p.nextBtn.Disabled())
	assert.True(t, p.formatBtn.Disabled(), "plain text cannot be formatted")
	assert.False(t, p.previewBar.Visible())

	test.Tap(p.deleteBtn)
	assert.Equal(t, int64(11), deleted)

	s.SelectedResponseIndex = 1
	p.Update(&s)
	assert.Equal(t, "2 of 2", p.positionLabel.Text)
	assert.Equal(t, "Format JSON", p.formatBtn.Text)
	assert.True(t, p.nextBtn.Disabled())
}

func TestResponsePanel_Formatted(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	p := NewResponsePanel()
	s := stateWithResponses()
	s.SelectedResponseIndex = 1
	pretty := "{\n  \"a\": 1\n}"
	s.Formatted = &pretty
	p.Update(&s)

	assert.Equal(t, "Raw", p.formatBtn.Text)
	assert.Equal(t, p.highlightContent, p.contentContainer.Objects[0])
	assert.NotEmpty(t, p.highlighted.Segments)

	test.Tap(p.copyBtn)
	assert.Equal(t, pretty, app.Clipboard().Content())

	s.Formatted = nil
	p.Update(&s)
	test.Tap(p.copyBtn)
	assert.Equal(t, `{"a":1}`, app.Clipboard().Content())
}

func TestResponsePanel_Preview(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	p := NewResponsePanel()
	saved := false
	p.SetOnSave(func() { saved = true })

	s := stateWithResponses()
	s.CopyRequest = &domain.Request{}
	s.DraftResponse = &model.DraftResponse{Code: 500, Text: "boom", ReceivedAt: time.Now()}
	p.Update(&s)

	assert.Equal(t, "500 Internal Server Error", p.statusBadge.Text)
	assert.Equal(t, "preview", p.positionLabel.Text)
	assert.True(t, p.previewBar.Visible())
	assert.False(t, p.deleteBtn.Visible())
	assert.True(t, p.prevBtn.Disabled())

	p.onSave()
	assert.True(t, saved)
}

func TestResponsePanel_Loading(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	p := NewResponsePanel()
	s := model.NewState()
	s.Pending = &model.Flight{Token: "t"}
	p.Update(&s)
	assert.True(t, p.loadingBar.Visible())

	s.Pending = nil
	p.Update(&s)
	assert.False(t, p.loadingBar.Visible())
}
