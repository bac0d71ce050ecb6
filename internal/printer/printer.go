// Package printer delivers encoded ESC/POS byte streams to a physical
// printer as a raw job - no driver reinterpretation, which control-code
// protocols require. Failures are always returned to the caller, never
// fatal: the caller falls back to on-screen review of the sale.
package printer

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"
)

// DefaultDevice is the printer used when no target is configured.
const DefaultDevice = "/dev/usb/lp0"

// DefaultDialTimeout bounds the TCP connect to a network printer.
const DefaultDialTimeout = 10 * time.Second

// Dispatcher sends one raw job to a printer.
type Dispatcher interface {
	Print(ctx context.Context, data []byte) error
}

// TCPPrinter sends raw jobs to a network printer's JetDirect-style
// port (9100 class).
type TCPPrinter struct {
	Addr    string
	Timeout time.Duration
}

// Print writes the whole buffer over one connection.
func (p *TCPPrinter) Print(ctx context.Context, data []byte) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return fmt.Errorf("print to %s: %w", p.Addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
	} else {
		conn.SetWriteDeadline(time.Now().Add(timeout))
	}

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("print to %s: write: %w", p.Addr, err)
	}
	return nil
}

// DevicePrinter writes raw jobs straight to a character device.
type DevicePrinter struct {
	Path string
}

// Print appends the buffer to the device node.
func (p *DevicePrinter) Print(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(p.Path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("print to %s: %w", p.Path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("print to %s: write: %w", p.Path, err)
	}
	return nil
}

// Resolve picks a dispatcher for a configured target:
//
//	"tcp://host:port" - network printer
//	anything else     - device path
//	""                - the default device
func Resolve(target string) Dispatcher {
	switch {
	case target == "":
		return &DevicePrinter{Path: DefaultDevice}
	case strings.HasPrefix(target, "tcp://"):
		return &TCPPrinter{Addr: strings.TrimPrefix(target, "tcp://")}
	default:
		return &DevicePrinter{Path: target}
	}
}
