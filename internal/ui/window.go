package ui

import (
	"context"
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/shhac/interfere/internal/app"
	apperrors "github.com/shhac/interfere/internal/errors"
	"github.com/shhac/interfere/internal/model"
	"github.com/shhac/interfere/internal/storage"
	uierrors "github.com/shhac/interfere/internal/ui/errors"
	"github.com/shhac/interfere/internal/ui/history"
	"github.com/shhac/interfere/internal/ui/request"
	"github.com/shhac/interfere/internal/ui/response"
	"github.com/shhac/interfere/internal/ui/settings"
)

// AppController defines the interface for app-level operations needed by the UI
type AppController interface {
	Sender
	FyneApp() fyne.App
	Logger() *slog.Logger
	Reducer() *model.Reducer
	Storage() storage.Repository
	Config() *app.Config
}

// MainWindow manages the main application window and its layout.
type MainWindow struct {
	window fyne.Window
	logger *slog.Logger
	app    AppController
	loop   *Loop

	// Panel widgets
	urlBar        *request.URLBar
	historyPanel  *history.HistoryPanel
	requestPanel  *request.RequestPanel
	responsePanel *response.ResponsePanel
	banner        *uierrors.Banner
}

// NewMainWindow creates the main window and loads history.
// The window is split horizontally with:
//   - Left side: endpoint history with search
//   - Right side: URL bar, error banner, request editor (top) and response (bottom)
func NewMainWindow(ctrl AppController) *MainWindow {
	window := ctrl.FyneApp().NewWindow("Interfere")

	mw := &MainWindow{
		window: window,
		logger: ctrl.Logger(),
		app:    ctrl,
		loop:   NewLoop(context.Background(), ctrl.Reducer(), ctrl, ctrl.Logger()),
	}

	mw.urlBar = request.NewURLBar()
	mw.historyPanel = history.NewHistoryPanel()
	mw.requestPanel = request.NewRequestPanel()
	mw.responsePanel = response.NewResponsePanel()
	mw.banner = uierrors.NewBanner()

	mw.wireCallbacks()
	mw.SetContent()
	mw.setupMainMenu()
	mw.setupKeyboardShortcuts()

	window.Resize(fyne.NewSize(1200, 800))

	mw.loop.Dispatch(model.Start{})
	return mw
}

// wireCallbacks turns widget callbacks into events
func (w *MainWindow) wireCallbacks() {
	dispatch := w.loop.Dispatch

	w.loop.SetOnRender(w.render)
	w.loop.SetOnFocus(w.focus)

	w.urlBar.SetOnURLChange(func(url string) { dispatch(model.SetDraft{URL: url}) })
	w.urlBar.SetOnMethod(func() { dispatch(model.ClickMethod{}) })
	w.urlBar.SetOnSend(func() { dispatch(model.Send{}) })

	w.historyPanel.SetOnSelect(func(id int64) { dispatch(model.ClickEndpoint{ID: id}) })
	w.historyPanel.SetOnSearch(func(query string) { dispatch(model.SetSearch{Query: query}) })
	w.historyPanel.SetOnDelete(w.confirmDeleteEndpoint)

	w.requestPanel.SetOnEdit(func(ev model.Pair) { dispatch(ev) })
	w.requestPanel.SetOnTab(func(tab model.Tab) { dispatch(model.SetTab{Tab: tab}) })

	w.responsePanel.SetOnPrev(func() { dispatch(model.DecrementSelectedResponseIndex{}) })
	w.responsePanel.SetOnNext(func() { dispatch(model.IncrementSelectedResponseIndex{}) })
	w.responsePanel.SetOnFormat(func() { dispatch(model.FormatResponse{}) })
	w.responsePanel.SetOnDuplicate(w.showDuplicateDialog)
	w.responsePanel.SetOnDelete(func(id int64) { dispatch(model.ClickDeleteResponse{ID: id}) })
	w.responsePanel.SetOnSave(func() { dispatch(model.SaveDraftResponse{}) })
	w.responsePanel.SetOnDiscard(func() { dispatch(model.DiscardDraftResponse{}) })

	w.banner.SetOnDismiss(func() { dispatch(model.ClearErrorMessage{}) })
	w.banner.SetOnDetails(func(uiErr *apperrors.UIError) { uierrors.ShowUIError(uiErr, w.window) })
}

// render pushes the state into every panel
func (w *MainWindow) render(s *model.State) {
	w.urlBar.Update(s.Draft, s.Method(), s.CanSend)
	w.historyPanel.Update(s.Endpoints, s.SelectedEndpoint, s.Search)
	w.requestPanel.Update(s)
	w.responsePanel.Update(s)
	w.banner.SetError(s.Error)

	title := "Interfere"
	if e := s.Endpoint(); e != nil {
		title = fmt.Sprintf("Interfere - %s %s", e.Method, e.URL)
	}
	w.window.SetTitle(title)
}

func (w *MainWindow) focus(target model.FocusTarget) {
	switch target {
	case model.FocusSearch:
		w.window.Canvas().Focus(w.historyPanel.SearchEntry())
	default:
		w.window.Canvas().Focus(w.urlBar.Entry())
	}
}

// confirmDeleteEndpoint asks before removing an endpoint and its responses
func (w *MainWindow) confirmDeleteEndpoint(id int64) {
	dialog.ShowConfirm("Delete Endpoint",
		"Delete this endpoint and all of its stored responses?",
		func(confirmed bool) {
			if confirmed {
				w.loop.Dispatch(model.ClickDeleteEndpoint{ID: id})
			}
		},
		w.window,
	)
}

// showDuplicateDialog asks for the URL of the new draft
func (w *MainWindow) showDuplicateDialog() {
	entry := widget.NewEntry()
	entry.SetText(w.loop.State().Outgoing().URL)

	dialog.ShowForm("Duplicate Request", "Create", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("URL", entry)},
		func(ok bool) {
			if ok {
				w.loop.Dispatch(model.Duplicate{URL: entry.Text})
			}
		},
		w.window,
	)
}

// exportHistory writes the whole history to a JSON file chosen by the user
func (w *MainWindow) exportHistory() {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			uierrors.ShowError(err, w.window)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		_ = writer.Close()

		go func() {
			n, err := storage.ExportJSON(context.Background(), w.app.Storage(), path)
			fyne.Do(func() {
				if err != nil {
					w.logger.Error("export failed", slog.String("path", path), slog.Any("error", err))
					uierrors.ShowError(err, w.window)
					return
				}
				w.logger.Info("history exported", slog.String("path", path), slog.Int("endpoints", n))
				dialog.ShowInformation("Export Complete",
					fmt.Sprintf("Exported %d endpoints to %s", n, path), w.window)
			})
		}()
	}, w.window)
}

func (w *MainWindow) showPreferences() {
	cfg := w.app.Config()
	info := settings.Info{
		ConfigFile: cfg.ConfigFile,
		Timeout:    cfg.Timeout.String(),
		LogLevel:   "info",
	}
	if cfg.Debug {
		info.LogLevel = "debug"
	}
	if db, err := cfg.DatabasePath(); err == nil {
		info.Database = db
	}

	settings.ShowPreferencesDialog(w.app.FyneApp(), w.window, info, settings.PreferencesCallbacks{
		OnThemeChange: func(mode string) {
			SaveThemePreference(w.app.FyneApp(), mode)
		},
	})
}

func (w *MainWindow) setupMainMenu() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Export History...", w.exportHistory),
		fyne.NewMenuItem("Preferences...", w.showPreferences),
	)
	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("Keyboard Shortcuts", func() { ShowShortcutDialog(w.window) }),
		fyne.NewMenuItem("About Interfere", func() { ShowAboutDialog(w.window) }),
	)
	w.window.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))
}

// SetContent builds and sets the main window layout.
// Layout structure:
//
//	┌─────────────────┬──────────────────────────────┐
//	│  History        │  URL Bar / Error Banner      │
//	│  (search +      ├──────────────────────────────┤
//	│   endpoints)    │  Request Panel (query/hdrs)  │
//	│                 ├──────────────────────────────┤
//	│                 │  Response Panel              │
//	└─────────────────┴──────────────────────────────┘
func (w *MainWindow) SetContent() {
	rightPanel := container.NewBorder(
		container.NewVBox(w.urlBar, w.banner), // top
		nil,                                   // bottom
		nil,                                   // left
		nil,                                   // right
		container.NewVSplit(
			w.requestPanel,  // top
			w.responsePanel, // bottom
		),
	)

	mainSplit := container.NewHSplit(
		w.historyPanel,
		rightPanel,
	)

	// 28% for history, the rest for the request and response
	mainSplit.SetOffset(0.28)

	w.window.SetContent(mainSplit)
}

// Window returns the underlying Fyne window.
func (w *MainWindow) Window() fyne.Window {
	return w.window
}
