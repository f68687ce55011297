package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/goscope/pkg/board"
	"github.com/itohio/goscope/pkg/config"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createSamplingTab(state),
		createDisplayTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 450))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 450))
	d.Show()
}

// applySettings applies edit to a copy of the configuration, validates and
// saves it. When edit reports a change that needs it and the board is
// connected, the acquisition chain is restarted with the new values.
func applySettings(state *appState, edit func(cfg *config.Config) (restart bool)) {
	next := *state.cfg
	restart := edit(&next)

	if err := next.Validate(); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	if err := next.Save(state.opts.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return
	}
	*state.cfg = next

	if restart && state.chain != nil {
		state.disconnect()
		handleConnect(state)
	}
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	// Get available serial ports
	ports, err := board.Ports()
	portOptions := []string{config.AutodetectPort}
	portMap := map[string]string{config.AutodetectPort: config.AutodetectPort} // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			applySettings(state, func(cfg *config.Config) bool {
				changed := false
				if portSelect.Selected != "" {
					selectedPort := portMap[portSelect.Selected]
					if selectedPort == "" {
						selectedPort = portSelect.Selected // Fallback to selected text
					}
					changed = cfg.Serial.Port != selectedPort
					cfg.Serial.Port = selectedPort
				}
				if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud != cfg.Serial.BaudRate {
					cfg.Serial.BaudRate = baud
					changed = true
				}
				return changed && !state.opts.useMock
			})
		},
	}

	return container.NewTabItem("Serial", form)
}

// createSamplingTab creates the Sampling, Window and Filter configuration tab.
func createSamplingTab(state *appState) *container.TabItem {
	rateEntry := widget.NewEntry()
	rateEntry.SetText(strconv.Itoa(state.cfg.Sampling.RateHz))

	channelEntry := widget.NewEntry()
	channelEntry.SetText(strconv.Itoa(state.cfg.Sampling.Channel))

	sizeEntry := widget.NewEntry()
	sizeEntry.SetText(strconv.Itoa(state.cfg.Window.Size))

	refreshEntry := widget.NewEntry()
	refreshEntry.SetText(state.cfg.Window.RefreshInterval.String())

	averageSamplesEntry := widget.NewEntry()
	averageSamplesEntry.SetText(strconv.Itoa(state.cfg.Filter.AverageSamples))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Sampling Rate (Hz)", Widget: rateEntry},
			{Text: "Analog Channel", Widget: channelEntry},
			{Text: "Window (samples)", Widget: sizeEntry},
			{Text: "Refresh Interval", Widget: refreshEntry},
			{Text: "Average Samples (0=disabled)", Widget: averageSamplesEntry},
		},
		OnSubmit: func() {
			applySettings(state, func(cfg *config.Config) bool {
				if rate, err := strconv.Atoi(rateEntry.Text); err == nil {
					cfg.Sampling.RateHz = rate
				}
				if ch, err := strconv.Atoi(channelEntry.Text); err == nil {
					cfg.Sampling.Channel = ch
				}
				if size, err := strconv.Atoi(sizeEntry.Text); err == nil {
					cfg.Window.Size = size
				}
				if ri, err := time.ParseDuration(refreshEntry.Text); err == nil {
					cfg.Window.RefreshInterval = ri
				}
				if avg, err := strconv.Atoi(averageSamplesEntry.Text); err == nil {
					cfg.Filter.AverageSamples = avg
				}
				return true
			})
		},
	}

	return container.NewTabItem("Sampling", form)
}

// createDisplayTab creates the Display configuration tab.
func createDisplayTab(state *appState) *container.TabItem {
	vrefEntry := widget.NewEntry()
	vrefEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Display.VRef))

	yMaxEntry := widget.NewEntry()
	yMaxEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Display.YMax))

	marksEntry := widget.NewEntry()
	marksEntry.SetText(formatMarks(state.cfg.Display.Marks))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "VRef (V)", Widget: vrefEntry},
			{Text: "Y Max (normalized)", Widget: yMaxEntry},
			{Text: "Reference Marks (V)", Widget: marksEntry},
		},
		OnSubmit: func() {
			applySettings(state, func(cfg *config.Config) bool {
				if vref, err := strconv.ParseFloat(vrefEntry.Text, 64); err == nil {
					cfg.Display.VRef = vref
				}
				if yMax, err := strconv.ParseFloat(yMaxEntry.Text, 64); err == nil {
					cfg.Display.YMax = yMax
				}
				if marks, err := parseMarks(marksEntry.Text); err == nil {
					cfg.Display.Marks = marks
				}
				return true
			})
		},
	}

	return container.NewTabItem("Display", form)
}

// createMockTab creates the Mock device configuration tab.
func createMockTab(state *appState) *container.TabItem {
	waveformSelect := widget.NewSelect([]string{"sine", "square"}, nil)
	waveformSelect.SetSelected(state.cfg.Mock.Waveform)

	frequencyEntry := widget.NewEntry()
	frequencyEntry.SetText(fmt.Sprintf("%.2f", state.cfg.Mock.Frequency))

	amplitudeEntry := widget.NewEntry()
	amplitudeEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.Amplitude))

	offsetEntry := widget.NewEntry()
	offsetEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Mock.Offset))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.4f", state.cfg.Mock.Noise))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Waveform", Widget: waveformSelect},
			{Text: "Frequency (Hz)", Widget: frequencyEntry},
			{Text: "Amplitude (V)", Widget: amplitudeEntry},
			{Text: "Offset (V)", Widget: offsetEntry},
			{Text: "Noise (V)", Widget: noiseEntry},
		},
		OnSubmit: func() {
			applySettings(state, func(cfg *config.Config) bool {
				if waveformSelect.Selected != "" {
					cfg.Mock.Waveform = waveformSelect.Selected
				}
				if f, err := strconv.ParseFloat(frequencyEntry.Text, 64); err == nil {
					cfg.Mock.Frequency = f
				}
				if a, err := strconv.ParseFloat(amplitudeEntry.Text, 64); err == nil {
					cfg.Mock.Amplitude = a
				}
				if o, err := strconv.ParseFloat(offsetEntry.Text, 64); err == nil {
					cfg.Mock.Offset = o
				}
				if n, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil {
					cfg.Mock.Noise = n
				}
				return state.opts.useMock
			})
		},
	}

	return container.NewTabItem("Mock", form)
}
