//go:build tinygo

//go:generate tinygo flash -target=arduino

package main

import (
	"machine"
	"time"

	"github.com/itohio/goscope/pkg/firmata"
)

var (
	serial = machine.Serial
	adcs   [len(analogPins)]machine.ADC

	// Reporting state
	reporting [len(analogPins)]bool
	interval  = firmata.DefaultSamplingInterval

	// Timing
	lastReport time.Time

	decoder firmata.Decoder
	out     []byte
)

func main() {
	serial.Configure(machine.UARTConfig{BaudRate: BAUD_RATE})

	// Configure ADC pins
	machine.InitADC()
	for i, pin := range analogPins {
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
		adcs[i] = machine.ADC{Pin: pin}
		adcs[i].Configure(machine.ADCConfig{})
	}

	// StandardFirmata announces itself on reset
	reportVersion()
	reportFirmware()

	lastReport = time.Now()

	// Main loop
	for {
		processSerial()

		now := time.Now()
		if now.Sub(lastReport) >= interval {
			reportAnalog()
			lastReport = now
		}

		// Small delay to prevent tight loop (but still allow precise timing)
		time.Sleep(100 * time.Microsecond)
	}
}

func processSerial() {
	for serial.Buffered() > 0 {
		b, err := serial.ReadByte()
		if err != nil {
			break
		}

		// A bare version query carries no data bytes
		if b == firmata.ReportVersion {
			reportVersion()
			continue
		}

		msg, ok := decoder.Feed(b)
		if !ok {
			continue
		}
		handle(msg)
	}
}

func handle(msg firmata.Message) {
	switch msg.Command {
	case firmata.ReportAnalog:
		if msg.Channel < len(reporting) && len(msg.Data) > 0 {
			reporting[msg.Channel] = msg.Data[0] != 0
		}
	case firmata.SystemReset:
		reporting = [len(analogPins)]bool{}
		interval = firmata.DefaultSamplingInterval
	case firmata.StartSysex:
		switch msg.Sysex {
		case firmata.ReportFirmware:
			reportFirmware()
		case firmata.SamplingInterval:
			ms := msg.Value()
			if ms > 0 {
				interval = time.Duration(ms) * time.Millisecond
			}
		}
	}
}

func reportAnalog() {
	for ch, enabled := range reporting {
		if !enabled {
			continue
		}
		// ADC.Get returns a left-aligned 16-bit value
		value := adcs[ch].Get() >> (16 - ADC_RESOLUTION)
		write(firmata.AppendAnalog(out[:0], ch, value))
	}
}

func reportVersion() {
	write(firmata.AppendVersion(out[:0], VERSION_MAJOR, VERSION_MINOR))
}

func reportFirmware() {
	write(firmata.AppendFirmware(out[:0], VERSION_MAJOR, VERSION_MINOR, FIRMWARE_NAME))
}

func write(b []byte) {
	out = b
	serial.Write(b)
}
