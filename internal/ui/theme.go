package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/shhac/interfere/internal/ui/settings"
)

// forcedVariant wraps a theme to force a specific variant (light/dark)
type forcedVariant struct {
	fyne.Theme
	variant fyne.ThemeVariant
}

// Color returns the color for the forced variant, ignoring the passed variant
func (f *forcedVariant) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return f.Theme.Color(name, f.variant)
}

// ApplyTheme sets the application theme. configured comes from the config
// file, environment or flags; "system" there defers to the saved preference.
func ApplyTheme(a fyne.App, configured string) {
	mode := configured
	if mode == "" || mode == settings.ThemeSystem {
		mode = a.Preferences().StringWithFallback(settings.PrefTheme, settings.ThemeSystem)
	}
	setTheme(a, mode)
}

// SaveThemePreference saves and applies the theme preference
func SaveThemePreference(a fyne.App, mode string) {
	a.Preferences().SetString(settings.PrefTheme, mode)
	setTheme(a, mode)
}

func setTheme(a fyne.App, mode string) {
	switch mode {
	case settings.ThemeDark:
		a.Settings().SetTheme(&forcedVariant{
			Theme:   theme.DefaultTheme(),
			variant: theme.VariantDark,
		})
	case settings.ThemeLight:
		a.Settings().SetTheme(&forcedVariant{
			Theme:   theme.DefaultTheme(),
			variant: theme.VariantLight,
		})
	default:
		a.Settings().SetTheme(theme.DefaultTheme())
	}
}
