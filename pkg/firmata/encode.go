package firmata

// AppendReportVersion appends a protocol version query.
func AppendReportVersion(dst []byte) []byte {
	return append(dst, ReportVersion)
}

// AppendVersion appends a protocol version report.
func AppendVersion(dst []byte, major, minor byte) []byte {
	return append(dst, ReportVersion, major&0x7F, minor&0x7F)
}

// AppendFirmwareQuery appends a firmware name and version query.
func AppendFirmwareQuery(dst []byte) []byte {
	return append(dst, StartSysex, ReportFirmware, EndSysex)
}

// AppendFirmware appends a firmware report. The name is sent as 7-bit pairs.
func AppendFirmware(dst []byte, major, minor byte, name string) []byte {
	dst = append(dst, StartSysex, ReportFirmware, major&0x7F, minor&0x7F)
	for i := 0; i < len(name); i++ {
		dst = append(dst, name[i]&0x7F, name[i]>>7)
	}
	return append(dst, EndSysex)
}

// AppendReportAnalog appends a command enabling or disabling reporting of an
// analog channel.
func AppendReportAnalog(dst []byte, channel int, enable bool) []byte {
	var state byte
	if enable {
		state = 1
	}
	return append(dst, ReportAnalog|byte(channel&0x0F), state)
}

// AppendSamplingInterval appends a sampling interval command in milliseconds.
func AppendSamplingInterval(dst []byte, ms int) []byte {
	return append(dst, StartSysex, SamplingInterval, byte(ms&0x7F), byte((ms>>7)&0x7F), EndSysex)
}

// AppendAnalog appends an analog message for a channel.
func AppendAnalog(dst []byte, channel int, value uint16) []byte {
	return append(dst, AnalogMessage|byte(channel&0x0F), byte(value&0x7F), byte((value>>7)&0x7F))
}

// AppendSystemReset appends a system reset.
func AppendSystemReset(dst []byte) []byte {
	return append(dst, SystemReset)
}
