package components

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short", "http://a", 10, "http://a"},
		{"exact", "abcde", 5, "abcde"},
		{"long", "https://example.com/path", 10, "https://e…"},
		{"multibyte", "ünïcödé", 4, "ünï…"},
		{"wide runes", "日本語のURL", 6, "日本…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncateWidth(tt.in, tt.max))
		})
	}
}

func TestHintLabel_SetText(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	h := NewHintLabel("http://localhost:8080/a/very/long/path", 12)
	assert.Equal(t, "http://loca…", h.label.Text)
	assert.True(t, h.needsTooltip())

	h.SetText("http://a")
	assert.Equal(t, "http://a", h.label.Text)
	assert.Equal(t, "http://a", h.Text())
	assert.False(t, h.needsTooltip())
}
