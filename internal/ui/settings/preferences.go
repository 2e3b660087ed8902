package settings

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// PrefTheme is the fyne preference key holding the theme mode.
const PrefTheme = "appTheme"

// Theme modes as stored in preferences.
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

var themeLabels = []struct{ mode, label string }{
	{ThemeSystem, "System Default"},
	{ThemeLight, "Light"},
	{ThemeDark, "Dark"},
}

// ThemeLabel returns the selector label for mode.
func ThemeLabel(mode string) string {
	for _, t := range themeLabels {
		if t.mode == mode {
			return t.label
		}
	}
	return themeLabels[0].label
}

// ThemeMode returns the mode for a selector label.
func ThemeMode(label string) string {
	for _, t := range themeLabels {
		if t.label == label {
			return t.mode
		}
	}
	return ThemeSystem
}

// Info is the read-only configuration shown on the General tab.
type Info struct {
	ConfigFile string
	Database   string
	Timeout    string
	LogLevel   string
}

// PreferencesCallbacks provides hooks for the preferences dialog to apply changes.
type PreferencesCallbacks struct {
	OnThemeChange func(mode string) // Called with "system", "dark", or "light"
}

// ShowPreferencesDialog displays the preferences dialog with General and Appearance tabs.
func ShowPreferencesDialog(a fyne.App, window fyne.Window, info Info, callbacks PreferencesCallbacks) {
	prefs := a.Preferences()

	// --- General tab ---

	configFile := info.ConfigFile
	if configFile == "" {
		configFile = "none (defaults and environment)"
	}
	generalTab := container.NewTabItem("General", container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Config file", wrapped(configFile)),
			widget.NewFormItem("Database", wrapped(info.Database)),
			widget.NewFormItem("Request timeout", widget.NewLabel(info.Timeout)),
			widget.NewFormItem("Log level", widget.NewLabel(info.LogLevel)),
		),
		widget.NewLabel("Change these in config.yaml, INTERFERE_* variables or flags."),
	))

	// --- Appearance tab ---

	labels := make([]string, len(themeLabels))
	for i, t := range themeLabels {
		labels[i] = t.label
	}
	themeSelector := widget.NewSelect(labels, nil)
	themeSelector.SetSelected(ThemeLabel(prefs.StringWithFallback(PrefTheme, ThemeSystem)))

	appearanceTab := container.NewTabItem("Appearance", container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Theme", themeSelector),
		),
	))

	// --- Build dialog ---

	tabs := container.NewAppTabs(generalTab, appearanceTab)

	dlg := dialog.NewCustomConfirm("Preferences", "Save", "Cancel", tabs, func(save bool) {
		if !save {
			return
		}
		mode := ThemeMode(themeSelector.Selected)
		prefs.SetString(PrefTheme, mode)
		if callbacks.OnThemeChange != nil {
			callbacks.OnThemeChange(mode)
		}
	}, window)

	dlg.Resize(fyne.NewSize(520, 360))
	dlg.Show()
}

func wrapped(text string) *widget.Label {
	l := widget.NewLabel(text)
	l.Wrapping = fyne.TextWrapBreak
	return l
}
