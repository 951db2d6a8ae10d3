package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opensolutionsgroup/ddi/internal/config"
	"github.com/opensolutionsgroup/ddi/internal/device"
	"github.com/opensolutionsgroup/ddi/internal/imaging"
	"github.com/opensolutionsgroup/ddi/internal/logger"
)

// deviceChangedMsg reports hotplug activity under /dev.
type deviceChangedMsg struct{}

// mainMenuItems is the top-level operation list.
var mainMenuItems = []string{
	"Backup device to image",
	"Restore image to device",
	"Clone device to device",
	"Wipe device",
	"Check device health",
	"Exit",
}

// App is the root bubbletea model. At any moment exactly one of
// dialog, overlay or monitor owns the content window; the main menu
// is just the dialog shown when no flow is active.
type App struct {
	cfg     *config.Config
	log     *logger.Logger
	buffer  *LogBuffer
	chrome  *Chrome
	colors  palette
	watcher *device.Watcher

	version string
	commit  string
	date    string

	width    int
	height   int
	ready    bool
	quitting bool

	flow    flow
	dialog  dialog
	overlay overlayModel
	monitor *monitor

	logFocused bool
}

// NewApp assembles the application model. The watcher may be nil when
// /dev cannot be watched.
func NewApp(cfg *config.Config, log *logger.Logger, buffer *LogBuffer,
	watcher *device.Watcher, version, commit, date string) *App {
	app := &App{
		cfg:     cfg,
		log:     log.WithComponent("ui"),
		buffer:  buffer,
		chrome:  NewChrome(version, cfg.UI.LogPaneHeight),
		colors:  defaultPalette(),
		watcher: watcher,
		version: version,
		commit:  commit,
		date:    date,
	}
	app.showMainMenu()
	return app
}

func (a *App) showMainMenu() {
	a.flow = nil
	a.dialog = newMenu("Main Menu", mainMenuItems)
	a.chrome.SetScreen("Main Menu", "1-9 select · Enter confirm · Tab log · F1 help · F12 about · q quit")
}

// Init starts the hotplug listener.
func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, a.waitForHotplug())
}

func (a *App) waitForHotplug() tea.Cmd {
	if a.watcher == nil {
		return nil
	}
	changes := a.watcher.Changes()
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return deviceChangedMsg{}
	}
}

// Update dispatches messages to whichever component owns the screen.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.chrome.Resize(msg.Width, msg.Height)
		if a.overlay != nil {
			a.overlay.resize(msg.Width, a.chrome.ContentHeight())
		}
		if a.monitor != nil {
			a.monitor.active().invalidate()
		}
		return a, nil

	case deviceChangedMsg:
		a.log.Info("device change detected")
		if refresher, ok := a.flow.(deviceRefresher); ok && a.dialog != nil {
			if menu, refreshed := refresher.refreshDevices(); refreshed {
				a.dialog = menu
			}
		}
		return a, a.waitForHotplug()

	case opLineMsg:
		if a.monitor == nil {
			return a, nil
		}
		return a, a.monitor.handleLine(string(msg))

	case opExitMsg:
		if a.monitor == nil {
			return a, nil
		}
		a.monitor.handleExit(imaging.ExitResult(msg))
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		if a.monitor != nil {
			a.monitor.terminate()
		}
		a.quitting = true
		return a, tea.Quit
	}

	// The log pane swallows everything while focused; Tab hands the
	// keyboard back and snaps the log to the newest line.
	if a.logFocused {
		a.handleLogKey(key)
		return a, nil
	}
	if key == "tab" {
		a.logFocused = true
		a.chrome.SetLogFocused(true)
		return a, nil
	}

	// Overlays trump everything else on screen.
	if a.overlay != nil {
		if a.overlay.handleKey(msg) {
			a.overlay = nil
			// A flow-owned overlay (the smartctl viewer) advances its
			// flow on close; the help and about pages just go away.
			if a.flow != nil && a.dialog == nil && a.monitor == nil {
				return a.applyAction(a.flow.advance(&dialogResult{}))
			}
		}
		return a, nil
	}

	if key == "f1" || (key == "?" && !a.inTextEntry()) {
		a.overlay = newOverlay("Help", helpText,
			"↑/↓ scroll · Esc close", a.width, a.chrome.ContentHeight())
		return a, nil
	}
	if key == "f12" {
		a.overlay = newOverlay("About", aboutText(a.version, a.commit, a.date),
			"↑/↓ scroll · Esc close", a.width, a.chrome.ContentHeight())
		return a, nil
	}

	if a.monitor != nil {
		if a.monitor.handleKey(msg) {
			return a.finishOperation()
		}
		return a, nil
	}

	if a.dialog != nil {
		var result *dialogResult
		a.dialog, result = a.dialog.handleKey(msg)
		if result == nil {
			return a, nil
		}
		return a.dialogClosed(result)
	}
	return a, nil
}

// handleLogKey scrolls the focused log pane.
func (a *App) handleLogKey(key string) {
	h := a.chrome.LogPaneHeight()
	switch key {
	case "tab", "esc":
		a.logFocused = false
		a.chrome.SetLogFocused(false)
		a.buffer.ScrollToBottom()
	case "up", "k":
		a.buffer.ScrollUp(1, h)
	case "down", "j":
		a.buffer.ScrollDown(1, h)
	case "pgup":
		a.buffer.ScrollUp(h, h)
	case "pgdown":
		a.buffer.ScrollDown(h, h)
	case "home":
		a.buffer.ScrollToTop()
	case "end":
		a.buffer.ScrollToBottom()
	}
}

func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	// Wheel input scrolls the log pane while it has focus.
	if a.logFocused {
		h := a.chrome.LogPaneHeight()
		if msg.Action == tea.MouseActionPress {
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				a.buffer.ScrollUp(1, h)
			case tea.MouseButtonWheelDown:
				a.buffer.ScrollDown(1, h)
			}
		}
		return a, nil
	}

	if a.overlay != nil {
		if a.overlay.handleMouse(msg) {
			a.overlay = nil
			if a.flow != nil && a.dialog == nil && a.monitor == nil {
				return a.applyAction(a.flow.advance(&dialogResult{}))
			}
		}
		return a, nil
	}

	if a.monitor != nil {
		// The monitor has no mouse interactions.
		return a, nil
	}

	if a.dialog != nil {
		var result *dialogResult
		a.dialog, result = a.dialog.handleMouse(msg)
		if result == nil {
			return a, nil
		}
		return a.dialogClosed(result)
	}
	return a, nil
}

// dialogClosed routes a dialog result either to the active flow or,
// at the main menu, to flow selection.
func (a *App) dialogClosed(result *dialogResult) (tea.Model, tea.Cmd) {
	if a.flow != nil {
		return a.applyAction(a.flow.advance(result))
	}

	// Main menu.
	if result.canceled || result.index == len(mainMenuItems)-1 {
		a.quitting = true
		return a, tea.Quit
	}
	switch result.index {
	case 0:
		a.flow = newBackupFlow(a.cfg, a.log)
	case 1:
		a.flow = newRestoreFlow(a.cfg, a.log)
	case 2:
		a.flow = newCloneFlow(a.cfg, a.log)
	case 3:
		a.flow = newWipeFlow(a.cfg, a.log)
	case 4:
		a.flow = newCheckFlow(a.log, a.width, a.chrome.ContentHeight())
	default:
		return a, nil
	}
	a.chrome.SetScreen(a.flow.title(), "Esc back · Tab log · F1 help")
	return a.applyAction(a.flow.advance(nil))
}

// applyAction installs whatever the flow asked for next.
func (a *App) applyAction(action flowAction) (tea.Model, tea.Cmd) {
	a.dialog = nil

	switch {
	case action.dialog != nil:
		a.dialog = action.dialog
		return a, nil

	case action.overlay != nil:
		a.overlay = action.overlay
		return a, nil

	case action.operation != nil:
		mon, cmd, err := startMonitor(*action.operation, a.log, a.colors)
		if err != nil {
			a.log.Error("failed to start operation: %v", err)
			a.dialog = newMessage("Start Failed", err.Error())
			return a, nil
		}
		a.monitor = mon
		a.chrome.SetScreen(action.operation.Name, "v view · Tab log")
		return a, cmd

	default:
		a.showMainMenu()
		return a, nil
	}
}

// finishOperation tears down an acknowledged monitor and lets the
// flow decide what comes next (wipe schedules chain passes here).
func (a *App) finishOperation() (tea.Model, tea.Cmd) {
	success := a.monitor.success
	a.monitor = nil
	if a.flow == nil {
		a.showMainMenu()
		return a, nil
	}
	a.chrome.SetScreen(a.flow.title(), "Esc back · Tab log · F1 help")
	return a.applyAction(a.flow.advance(&dialogResult{yes: success}))
}

// inTextEntry reports whether the current dialog consumes printable
// keys.
func (a *App) inTextEntry() bool {
	switch a.dialog.(type) {
	case *textDialog, *finalWarningDialog:
		return true
	}
	return false
}

// View renders the whole screen.
func (a *App) View() string {
	if !a.ready {
		return "Initializing..."
	}
	if a.quitting {
		return ""
	}

	var content string
	switch {
	case a.overlay != nil:
		content = a.overlay.view(a.colors)
	case a.monitor != nil:
		content = a.monitor.view(a.chrome.ContentWidth(), a.chrome.ContentHeight())
	case a.dialog != nil:
		content = a.dialog.view(a.chrome.ContentWidth(), a.colors)
	}
	return a.chrome.Render(content, a.buffer)
}

// Run drives the application to completion.
func Run(cfg *config.Config, log *logger.Logger, buffer *LogBuffer,
	watcher *device.Watcher, version, commit, date string) error {
	app := NewApp(cfg, log, buffer, watcher, version, commit, date)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
