package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThemeLabelRoundTrip(t *testing.T) {
	for _, mode := range []string{ThemeSystem, ThemeLight, ThemeDark} {
		assert.Equal(t, mode, ThemeMode(ThemeLabel(mode)))
	}
}

func TestThemeFallbacks(t *testing.T) {
	assert.Equal(t, "System Default", ThemeLabel("neon"))
	assert.Equal(t, ThemeSystem, ThemeMode("Neon"))
}
