package main

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goscope/pkg/config"
	"github.com/itohio/goscope/pkg/scope"
	"github.com/itohio/goscope/pkg/snapshot"
	"github.com/itohio/goscope/pkg/window"
	"go.uber.org/zap"
)

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	opts        options
	logger      *zap.Logger
	ctx         context.Context
	outputs     *outputs
	window      fyne.Window
	toolbar     fyne.CanvasObject
	scopeWidget *scope.ScopeWidget
	connectBtn  *widget.Button
	chain       *acquisitionChain // Current acquisition chain (nil if not connected)
}

// runGUI shows the scope window and connects to the board. It returns when the window is closed.
func runGUI(cfg *config.Config, opts options, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create Fyne application
	application := app.NewWithID("com.itohio.goscope")

	// Create main window
	win := application.NewWindow("Arduino Voltage Scope")
	win.Resize(fyne.NewSize(1000, 600))
	win.CenterOnScreen()

	state := &appState{
		cfg:     cfg,
		opts:    opts,
		logger:  logger,
		ctx:     ctx,
		outputs: newOutputs(ctx, cfg, logger),
		window:  win,
	}
	defer state.outputs.close()

	state.toolbar = createToolbar(state)
	state.rebuildScope()

	if err := state.connect(); err != nil {
		logger.Fatal("failed to start acquisition", zap.Error(err))
	}

	win.SetOnClosed(func() {
		state.disconnect()
	})
	win.ShowAndRun()

	// Window close already disconnected; this covers a quit from the app menu
	state.disconnect()
}

// createToolbar creates the application toolbar with Connect, Settings and Snapshot buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("Disconnect", theme.LogoutIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	snapshotBtn := widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), func() {
		showSnapshotDialog(state)
	})

	// Connect and settings on the left, snapshot aligned to the right
	return container.NewBorder(nil, nil, container.NewHBox(connectBtn, settingsBtn), snapshotBtn)
}

// rebuildScope creates a scope widget for the current window and display settings.
func (state *appState) rebuildScope() {
	state.scopeWidget = scope.New(state.cfg)
	state.window.SetContent(container.NewBorder(
		state.toolbar,
		nil,
		nil,
		nil,
		state.scopeWidget,
	))
}

// connect starts a new acquisition chain drawing into the scope widget.
func (state *appState) connect() error {
	device := newDevice(state.cfg, state.opts.useMock, state.logger, state.outputs.observer())

	scopeWidget := state.scopeWidget
	display := window.RendererFunc(func(history []float64) {
		// Update scope widget on main thread
		fyne.Do(func() {
			scopeWidget.UpdateData(history)
		})
	})

	chain, err := startChain(state.ctx, state.cfg, device, state.outputs.renderer(display), state.logger)
	if err != nil {
		return err
	}
	state.chain = chain

	go func() {
		<-chain.Done()
		fyne.Do(func() {
			// A chain that ended on its own (board unplugged) leaves the UI disconnected
			if state.chain == chain {
				state.disconnect()
			}
		})
	}()

	state.setConnected(true)
	return nil
}

// disconnect stops the current chain and writes the exit snapshot if requested.
func (state *appState) disconnect() {
	if state.chain == nil {
		return
	}
	chain := state.chain
	state.chain = nil

	if err := chain.stop(); err != nil {
		state.logger.Warn("failed to close device", zap.Error(err))
	}
	state.logger.Info("acquisition stopped")
	saveSnapshot(state.opts.snapshotPath, chain.History(), state.cfg, state.logger)
	state.setConnected(false)
}

func (state *appState) setConnected(connected bool) {
	if state.connectBtn == nil {
		return
	}
	if connected {
		state.connectBtn.SetText("Disconnect")
		state.connectBtn.SetIcon(theme.LogoutIcon())
		return
	}
	state.connectBtn.SetText("Connect")
	state.connectBtn.SetIcon(theme.LoginIcon())
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.chain != nil {
		state.disconnect()
		return
	}

	state.rebuildScope()
	if err := state.connect(); err != nil {
		dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.portName(), err), state.window)
	}
}

func (state *appState) portName() string {
	if state.opts.useMock {
		return "mocked board"
	}
	return state.cfg.Serial.Port
}

// showSnapshotDialog asks for a file and writes the current window as PNG.
func showSnapshotDialog(state *appState) {
	if state.chain == nil {
		dialog.ShowInformation("Snapshot", "Connect to a board first", state.window)
		return
	}
	history := state.chain.History()

	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		if w == nil {
			return // cancelled
		}
		defer w.Close()

		if err := snapshot.Write(w, "png", history, state.cfg); err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		state.logger.Info("snapshot written", zap.String("path", w.URI().Path()))
	}, state.window)
	d.SetFileName("goscope.png")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	d.Show()
}
