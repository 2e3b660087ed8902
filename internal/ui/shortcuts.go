package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/shhac/interfere/internal/model"
)

// shortcutDef binds a key chord to the event it dispatches
type shortcutDef struct {
	key    fyne.KeyName
	mod    fyne.KeyModifier
	action string
	label  string
	event  model.Event
}

// shortcutDefs lists every window shortcut. Cmd on macOS, Ctrl elsewhere.
var shortcutDefs = []shortcutDef{
	{fyne.KeyReturn, fyne.KeyModifierShortcutDefault, "Send Request", "Return", model.Send{}},
	{fyne.KeyLeft, fyne.KeyModifierShortcutDefault, "Previous Response", "←", model.DecrementSelectedResponseIndex{}},
	{fyne.KeyRight, fyne.KeyModifierShortcutDefault, "Next Response", "→", model.IncrementSelectedResponseIndex{}},
	{fyne.KeyUp, fyne.KeyModifierShortcutDefault, "Previous Endpoint", "↑", model.DecrementSelectedEndpoint{}},
	{fyne.KeyDown, fyne.KeyModifierShortcutDefault, "Next Endpoint", "↓", model.IncrementSelectedEndpoint{}},
	{fyne.KeyF, fyne.KeyModifierShortcutDefault, "Search History", "F", model.Focus{Target: model.FocusSearch}},
	{fyne.KeyL, fyne.KeyModifierShortcutDefault, "Focus URL Bar", "L", model.Focus{Target: model.FocusURL}},
	{fyne.KeyF, fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift, "Format Response", "⇧ F", model.FormatResponse{}},
}

// setupKeyboardShortcuts configures all keyboard shortcuts for the main window
func (w *MainWindow) setupKeyboardShortcuts() {
	canvas := w.window.Canvas()

	for _, def := range shortcutDefs {
		ev := def.event
		action := def.action
		canvas.AddShortcut(&desktop.CustomShortcut{
			KeyName:  def.key,
			Modifier: def.mod,
		}, func(fyne.Shortcut) {
			w.logger.Debug("keyboard shortcut", slog.String("action", action))
			w.loop.Dispatch(ev)
		})
	}

	// Escape steps back: preview/copy, then endpoint, then error banner
	canvas.SetOnTypedKey(func(key *fyne.KeyEvent) {
		if key.Name == fyne.KeyEscape {
			w.logger.Debug("keyboard shortcut", slog.String("action", "back"))
			w.loop.Dispatch(model.Back{})
		}
	})

	w.logger.Info("keyboard shortcuts configured", slog.Int("count", len(shortcutDefs)+1))
}
