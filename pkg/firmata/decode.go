package firmata

// Message is a decoded Firmata message.
type Message struct {
	Command byte // Command with the channel nibble cleared for channel messages
	Channel int  // Channel or port for channel messages
	Sysex   byte // Sysex command when Command == StartSysex
	Data    []byte
}

// Value joins the first two data bytes as a 14-bit LSB/MSB pair.
func (m Message) Value() int {
	if len(m.Data) < 2 {
		return 0
	}
	return int(m.Data[0]&0x7F) | int(m.Data[1]&0x7F)<<7
}

// DecodeString decodes 7-bit pair encoded text, as used by firmware reports
// and string data.
func DecodeString(data []byte) string {
	out := make([]byte, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		out = append(out, data[i]&0x7F|data[i+1]<<7)
	}
	return string(out)
}

// Decoder is a byte-at-a-time Firmata parser. The zero value is ready to use.
type Decoder struct {
	command byte
	channel int
	want    int // data bytes expected for the pending command, -1 while in sysex
	buf     []byte
	active  bool
}

// Feed consumes one byte and returns a message when one is complete.
// Any command byte resynchronizes the parser; unknown commands are skipped.
func (d *Decoder) Feed(b byte) (Message, bool) {
	if b&0x80 != 0 {
		return d.startCommand(b)
	}

	if !d.active {
		return Message{}, false
	}

	if d.want < 0 {
		if len(d.buf) >= MaxSysexSize {
			d.reset()
			return Message{}, false
		}
		d.buf = append(d.buf, b)
		return Message{}, false
	}

	d.buf = append(d.buf, b)
	if len(d.buf) < d.want {
		return Message{}, false
	}
	return d.emit(), true
}

func (d *Decoder) startCommand(b byte) (Message, bool) {
	if b == EndSysex {
		if !d.active || d.want >= 0 || len(d.buf) == 0 {
			d.reset()
			return Message{}, false
		}
		msg := Message{
			Command: StartSysex,
			Sysex:   d.buf[0],
			Data:    append([]byte(nil), d.buf[1:]...),
		}
		d.reset()
		return msg, true
	}

	d.reset()

	command, channel := b, 0
	if b < 0xF0 {
		command, channel = b&0xF0, int(b&0x0F)
	}

	switch command {
	case StartSysex:
		d.want = -1
	case AnalogMessage, DigitalMessage, ReportVersion, SetPinMode:
		d.want = 2
	case ReportAnalog, ReportDigital:
		d.want = 1
	case SystemReset:
		return Message{Command: SystemReset}, true
	default:
		return Message{}, false
	}

	d.command = command
	d.channel = channel
	d.active = true
	return Message{}, false
}

func (d *Decoder) emit() Message {
	msg := Message{
		Command: d.command,
		Channel: d.channel,
		Data:    append([]byte(nil), d.buf...),
	}
	d.reset()
	return msg
}

func (d *Decoder) reset() {
	d.command = 0
	d.channel = 0
	d.want = 0
	d.buf = d.buf[:0]
	d.active = false
}
