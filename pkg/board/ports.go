package board

import (
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
	USB         bool
	VID         string
	PID         string
}

// knownVendors maps USB vendor IDs of Arduino-compatible boards and common
// USB-serial bridges to a display name.
var knownVendors = map[string]string{
	"2341": "Arduino",
	"2A03": "Arduino",
	"1B4F": "SparkFun",
	"239A": "Adafruit",
	"2886": "Seeed",
	"1A86": "CH340",
	"0403": "FTDI",
	"10C4": "CP210x",
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(details))
	for _, p := range details {
		port := Port{
			Name:        p.Name,
			Description: p.Name,
			USB:         p.IsUSB,
			VID:         strings.ToUpper(p.VID),
			PID:         strings.ToUpper(p.PID),
		}
		if vendor, ok := knownVendors[port.VID]; ok {
			port.Description = vendor
		}
		if p.Product != "" {
			port.Description = p.Product
		}
		result = append(result, port)
	}

	return result, nil
}

// Autodetect returns the name of the most likely board port.
func Autodetect() (string, error) {
	ports, err := Ports()
	if err != nil {
		return "", err
	}
	return pickPort(ports)
}

// pickPort prefers a USB port with a known vendor, then any USB port.
func pickPort(ports []Port) (string, error) {
	for _, p := range ports {
		if _, ok := knownVendors[p.VID]; ok && p.USB {
			return p.Name, nil
		}
	}
	for _, p := range ports {
		if p.USB {
			return p.Name, nil
		}
	}
	return "", ErrNoPort
}
