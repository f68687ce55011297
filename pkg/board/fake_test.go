package board

import (
	"errors"
	"io"
	"sync"

	"github.com/itohio/goscope/pkg/firmata"
)

// pipeConn is the host side of an in-memory serial link.
type pipeConn struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (c *pipeConn) Close() error {
	var errs []error
	for _, cl := range c.closers {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}

// fakeBoard answers the host like StandardFirmata does.
type fakeBoard struct {
	silent bool     // Never answer the version query
	values []uint16 // Sent on every enabled channel once reporting starts

	mu       sync.Mutex
	commands []firmata.Message
	queries  int

	hostR  *io.PipeReader
	boardW *io.PipeWriter
	conn   *pipeConn
	done   chan struct{}
}

func newFakeBoard(values ...uint16) *fakeBoard {
	hostR, hostW := io.Pipe()
	boardR, boardW := io.Pipe()

	b := &fakeBoard{
		values: values,
		hostR:  hostR,
		boardW: boardW,
		conn: &pipeConn{
			Reader:  boardR,
			Writer:  hostW,
			closers: []io.Closer{hostW, boardR},
		},
		done: make(chan struct{}),
	}
	return b
}

func (b *fakeBoard) open(name string, baudRate int) (io.ReadWriteCloser, error) {
	go b.run()
	return b.conn, nil
}

func (b *fakeBoard) run() {
	defer close(b.done)
	defer b.boardW.Close()

	var dec firmata.Decoder
	buf := make([]byte, 64)
	for {
		n, err := b.hostR.Read(buf)
		for _, c := range buf[:n] {
			if c == firmata.ReportVersion {
				b.mu.Lock()
				b.queries++
				b.mu.Unlock()
				if !b.silent && !b.reply(firmata.AppendFirmware(firmata.AppendVersion(nil, 2, 5), 2, 5, "Fake")) {
					return
				}
				continue
			}

			msg, ok := dec.Feed(c)
			if !ok {
				continue
			}
			b.mu.Lock()
			b.commands = append(b.commands, msg)
			b.mu.Unlock()

			if msg.Command == firmata.ReportAnalog && len(msg.Data) == 1 && msg.Data[0] == 1 {
				var out []byte
				for _, v := range b.values {
					out = firmata.AppendAnalog(out, msg.Channel, v)
				}
				if !b.reply(out) {
					return
				}
			}
		}
		if err != nil {
			return
		}
	}
}

func (b *fakeBoard) reply(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	_, err := b.boardW.Write(data)
	return err == nil
}

func (b *fakeBoard) received() []firmata.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]firmata.Message(nil), b.commands...)
}

func (b *fakeBoard) has(command, sysex byte, channel int, data ...byte) bool {
	for _, msg := range b.received() {
		if msg.Command != command || msg.Channel != channel {
			continue
		}
		if command == firmata.StartSysex && msg.Sysex != sysex {
			continue
		}
		if string(msg.Data) == string(data) {
			return true
		}
	}
	return false
}
