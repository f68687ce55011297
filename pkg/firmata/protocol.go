// Package firmata implements the subset of the Firmata protocol needed to
// stream analog inputs: version and firmware reports, sampling interval,
// analog reporting and analog messages.
//
// The package has no dependencies beyond the standard library so that it can
// be shared with the TinyGo firmware.
package firmata

import (
	"math"
	"time"
)

// Command bytes.
const (
	DigitalMessage byte = 0x90 // 0x90-0x9F, low nibble is the port
	ReportAnalog   byte = 0xC0 // 0xC0-0xCF, low nibble is the analog channel
	ReportDigital  byte = 0xD0 // 0xD0-0xDF, low nibble is the port
	AnalogMessage  byte = 0xE0 // 0xE0-0xEF, low nibble is the analog channel
	StartSysex     byte = 0xF0
	SetPinMode     byte = 0xF4
	EndSysex       byte = 0xF7
	ReportVersion  byte = 0xF9
	SystemReset    byte = 0xFF
)

// Sysex commands.
const (
	StringData       byte = 0x71
	ReportFirmware   byte = 0x79
	SamplingInterval byte = 0x7A
)

const (
	// DefaultBaudRate is the baud rate used by StandardFirmata.
	DefaultBaudRate = 57600
	// AnalogMax is the full-scale value of a 10-bit analog reading.
	AnalogMax = 1023
	// MaxChannel is the highest addressable analog channel.
	MaxChannel = 15
	// MaxSysexSize bounds the sysex payload kept by the decoder.
	MaxSysexSize = 256

	// DefaultSamplingInterval is the StandardFirmata power-on sampling interval.
	DefaultSamplingInterval = 19 * time.Millisecond
	// MinSamplingInterval and MaxSamplingInterval bound the 14-bit interval field.
	MinSamplingInterval = time.Millisecond
	MaxSamplingInterval = 16383 * time.Millisecond
)

// Normalize converts a raw 10-bit reading to the 0.0-1.0 scale, rounded to
// four decimals like the reference host libraries.
func Normalize(raw uint16) float64 {
	return math.Round(float64(raw)/AnalogMax*10000) / 10000
}

// ClampInterval limits d to the range the protocol can express and returns it
// in whole milliseconds.
func ClampInterval(d time.Duration) int {
	if d < MinSamplingInterval {
		d = MinSamplingInterval
	}
	if d > MaxSamplingInterval {
		d = MaxSamplingInterval
	}
	return int(d / time.Millisecond)
}
