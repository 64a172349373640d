// Package ioport implements the machine's one memory-mapped device: a
// synchronous serial port occupying page 0xFF. It is deliberately a thin,
// synchronous wrapper rather than the goroutine/channel device shape used
// by KTStephano-GVM's consoleIO (see DESIGN.md's "Rejected pattern" note)
// — the executor is single-threaded and the host polls this port once per
// frame, so there is nothing here that needs to run concurrently.
package ioport

// Register addresses within page 0xFF, per spec.md §6.
const (
	SerialOutData   uint16 = 0xFF00
	SerialOutStrobe uint16 = 0xFF01
	SerialInData    uint16 = 0xFF08
	SerialInStrobe  uint16 = 0xFF09
	SerialInAck     uint16 = 0xFF0A
)

// Memory is the subset of *exec.CPU's behavior the port needs: raw byte
// access to the shared address space. The port never owns memory itself —
// page 0xFF is ordinary CPU memory that happens to carry I/O meaning.
type Memory interface {
	Read(addr uint16) byte
	Write(addr uint16, v byte)
}

// Port is a host-side handle for polling and driving the serial registers
// after each executor Step. It holds no state of its own beyond a
// reference to the CPU's memory.
type Port struct {
	mem Memory
}

// New wraps mem for serial I/O access.
func New(mem Memory) *Port {
	return &Port{mem: mem}
}

// OutputReady reports whether the CPU has new output data waiting to be
// consumed (the serial-out strobe register is non-zero).
func (p *Port) OutputReady() bool {
	return p.mem.Read(SerialOutStrobe) != 0
}

// ConsumeOutput reads the pending output byte and clears the strobe, as
// the host is expected to do once per frame.
func (p *Port) ConsumeOutput() byte {
	b := p.mem.Read(SerialOutData)
	p.mem.Write(SerialOutStrobe, 0)
	return b
}

// Busy reports whether the CPU has not yet acknowledged the last input
// byte (the serial-in ack register is non-zero).
func (p *Port) Busy() bool {
	return p.mem.Read(SerialInAck) != 0
}

// SendInput writes a byte into the serial-in data register and raises the
// serial-in strobe so the running program can observe it.
func (p *Port) SendInput(b byte) {
	p.mem.Write(SerialInData, b)
	p.mem.Write(SerialInStrobe, 1)
}

// AckInput clears the serial-in ack register, mirroring how a program
// signals it has finished consuming the pending input byte.
func (p *Port) AckInput() {
	p.mem.Write(SerialInAck, 0)
}
