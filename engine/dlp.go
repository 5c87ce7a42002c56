package engine

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.bug.st/serial"
)

const (
	dlpPing   = 0x27 // '
	dlpPong   = 'Q'
	dlpBinary = 0x5C // \
)

// DLPIO8G drives the TTL lines of a DLP-IO8-G trigger box. It implements
// scene.Trigger.
type DLPIO8G struct {
	port   io.ReadWriteCloser
	logger *slog.Logger
}

func NewDLPIO8G(device string, baudrate int, logger *slog.Logger) (*DLPIO8G, error) {
	mode := &serial.Mode{
		BaudRate: baudrate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, err
	}
	if err := port.SetReadTimeout(time.Second); err != nil {
		port.Close()
		return nil, err
	}
	return newDLP(port, logger)
}

// newDLP pings the device and switches it to binary mode.
func newDLP(port io.ReadWriteCloser, logger *slog.Logger) (*DLPIO8G, error) {
	d := &DLPIO8G{port: port, logger: logger}
	if !d.Ping() {
		port.Close()
		return nil, fmt.Errorf("device did not respond to ping correctly")
	}
	if _, err := port.Write([]byte{dlpBinary}); err != nil {
		port.Close()
		return nil, err
	}
	return d, nil
}

func (d *DLPIO8G) Close() {
	if d.port != nil {
		d.port.Close()
	}
}

func (d *DLPIO8G) Ping() bool {
	if _, err := d.port.Write([]byte{dlpPing}); err != nil {
		return false
	}

	buf := make([]byte, 1)
	n, err := d.port.Read(buf)
	return err == nil && n == 1 && buf[0] == dlpPong
}

// Set raises the numbered lines, e.g. "13" for lines 1 and 3.
func (d *DLPIO8G) Set(lines string) {
	if _, err := d.port.Write([]byte(lines)); err != nil {
		d.logger.Warn("dlp set failed", "lines", lines, "error", err)
	}
}

func (d *DLPIO8G) Unset(lines string) {
	if _, err := d.port.Write(unsetCommand(lines)); err != nil {
		d.logger.Warn("dlp unset failed", "lines", lines, "error", err)
	}
}

// Pulse raises lines for ms milliseconds.
func (d *DLPIO8G) Pulse(lines string, ms int) {
	d.Set(lines)
	time.Sleep(time.Duration(ms) * time.Millisecond)
	d.Unset(lines)
}

// unsetCommand maps line digits to the device's clear letters.
func unsetCommand(lines string) []byte {
	cmd := []byte(lines)
	for i := range cmd {
		switch cmd[i] {
		case '1':
			cmd[i] = 'Q'
		case '2':
			cmd[i] = 'W'
		case '3':
			cmd[i] = 'E'
		case '4':
			cmd[i] = 'R'
		case '5':
			cmd[i] = 'T'
		case '6':
			cmd[i] = 'Y'
		case '7':
			cmd[i] = 'U'
		case '8':
			cmd[i] = 'I'
		}
	}
	return cmd
}
