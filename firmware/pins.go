//go:build tinygo

package main

import "machine"

const (
	// Firmware identification sent in REPORT_VERSION and REPORT_FIRMWARE
	VERSION_MAJOR = 2
	VERSION_MINOR = 5
	FIRMWARE_NAME = "goscope"

	// Serial configuration (StandardFirmata rate; USB CDC boards ignore it)
	BAUD_RATE = 57600

	// ADC configuration
	ADC_RESOLUTION = 10 // Bits reported over Firmata (0-1023)
)

// Analog inputs in channel order (A0 = channel 0)
var analogPins = [...]machine.Pin{
	machine.ADC0,
	machine.ADC1,
	machine.ADC2,
	machine.ADC3,
	machine.ADC4,
	machine.ADC5,
}
