/*Package comm provides the line-oriented channel to the gantry
controller.  Each request is one JSON object terminated by a newline;
each reply comes back the same way.  The channel may be an RS232/USB
serial device or a TCP socket (e.g. a serial-over-ethernet adapter); both
look identical above Open.
*/
package comm

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

// Terminator frames both directions of the protocol.
const Terminator = '\n'

// ErrNotConnected is generated when Send or Recv is called before Open.
var ErrNotConnected = errors.New("comm: not connected to device")

// Device is one gantry controller on the far end of a line channel.  The
// connection is held open for the life of the owner; SendRecv serializes
// callers so request/response pairs never interleave on the wire.
type Device struct {
	// Addr is the serial device path or TCP host:port
	Addr string

	// IsSerial selects RS232/USB over TCP
	IsSerial bool

	// Baud is the serial line rate; ignored for TCP
	Baud int

	mu   sync.Mutex
	conn io.ReadWriteCloser
	rdr  *bufio.Reader
}

// NewDevice returns an unopened Device.
func NewDevice(addr string, isSerial bool, baud int) *Device {
	return &Device{Addr: addr, IsSerial: isSerial, Baud: baud}
}

// FromConn wraps an already-established connection, e.g. a net.Pipe end
// in tests or a stdio pair.
func FromConn(conn io.ReadWriteCloser) *Device {
	return &Device{conn: conn, rdr: bufio.NewReader(conn)}
}

// Open establishes the connection with exponential backoff; freshly
// reset microcontrollers drop the first connection attempts while their
// bootloader runs.
func (d *Device) Open() error {
	op := func() error {
		err := d.open()
		if err == nil {
			return nil
		}
		// a refused connection means the device is still booting; retry.
		// anything else (bad path, no adapter) will not fix itself
		if strings.Contains(strings.ToLower(err.Error()), "refused") {
			return err
		}
		return backoff.Permanent(err)
	}
	err := backoff.Retry(op, &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      5 * time.Second,
		Clock:               backoff.SystemClock})
	return errors.Wrapf(err, "opening %s", d.Addr)
}

// OpenSerial opens a serial port with the protocol's 8N1 framing.
func OpenSerial(addr string, baud int) (io.ReadWriteCloser, error) {
	return serial.OpenPort(&serial.Config{
		Name:     addr,
		Baud:     baud,
		Size:     8,
		Parity:   serial.ParityNone,
		StopBits: serial.Stop1})
}

func (d *Device) open() error {
	var (
		conn io.ReadWriteCloser
		err  error
	)
	if d.IsSerial {
		conn, err = OpenSerial(d.Addr, d.Baud)
	} else {
		conn, err = net.DialTimeout("tcp", d.Addr, 3*time.Second)
	}
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.conn = conn
	d.rdr = bufio.NewReader(conn)
	d.mu.Unlock()
	return nil
}

// Close closes the connection.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	if err == nil {
		d.conn = nil
		d.rdr = nil
	}
	return err
}

// Send writes one request line, appending the terminator.
func (d *Device) Send(b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.send(b)
}

func (d *Device) send(b []byte) error {
	if d.conn == nil {
		return ErrNotConnected
	}
	// frame into a fresh buffer; appending to b could write the
	// terminator into the caller's spare capacity
	buf := make([]byte, 0, len(b)+1)
	buf = append(buf, b...)
	buf = append(buf, Terminator)
	_, err := d.conn.Write(buf)
	return errors.Wrap(err, "comm: send")
}

// Recv reads one reply line with the terminator stripped.
func (d *Device) Recv() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recv()
}

func (d *Device) recv() ([]byte, error) {
	if d.conn == nil {
		return nil, ErrNotConnected
	}
	buf, err := d.rdr.ReadBytes(Terminator)
	if err != nil {
		return nil, errors.Wrap(err, "comm: recv")
	}
	return bytes.TrimRight(buf, "\n"), nil
}

// SendRecv writes one request line and returns the reply line.  The
// whole round trip holds the channel, so concurrent callers cannot
// interleave their traffic.
func (d *Device) SendRecv(b []byte) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.send(b); err != nil {
		return nil, err
	}
	return d.recv()
}
