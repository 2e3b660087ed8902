package ui

import (
	"runtime"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/interfere/internal/app"
)

// ShowAboutDialog displays information about the Interfere application.
func ShowAboutDialog(parent fyne.Window) {
	content := container.NewVBox(
		widget.NewLabelWithStyle("Interfere", fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabel("A desktop HTTP client that remembers every response"),
		widget.NewLabel("Version "+app.Version),
		widget.NewSeparator(),
		widget.NewLabel("Built with Fyne and Go ("+runtime.Version()+")"),
	)
	dialog.ShowCustom("About Interfere", "Close", content, parent)
}

// modifierLabel renders the platform shortcut modifier
func modifierLabel() string {
	if runtime.GOOS == "darwin" {
		return "⌘ "
	}
	return "Ctrl+"
}

// ShowShortcutDialog displays a reference of all keyboard shortcuts.
func ShowShortcutDialog(parent fyne.Window) {
	grid := container.NewGridWithColumns(2)
	for _, s := range shortcutDefs {
		grid.Add(widget.NewLabel(s.action))
		grid.Add(widget.NewLabelWithStyle(modifierLabel()+s.label, fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true}))
	}
	grid.Add(widget.NewLabel("Back / Dismiss"))
	grid.Add(widget.NewLabelWithStyle("Escape", fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true}))

	dialog.ShowCustom("Keyboard Shortcuts", "Close", container.NewVScroll(grid), parent)
}
