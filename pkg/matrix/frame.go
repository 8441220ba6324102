package matrix

import (
	"errors"
	"fmt"
)

// Sync opens every frame.
const Sync = 0xA5

// Op is a controller operation.
type Op byte

const (
	OpReset  Op = 0x01 // open every relay
	OpClose  Op = 0x02 // close the relays of one component
	OpCommit Op = 0x03 // latch the staged relay state
)

// Status codes of an acknowledgement.
const (
	StatusOK          = 0x00
	StatusBadFrame    = 0x01
	StatusUnknownCard = 0x02
)

var (
	// ErrFrame means a frame could not be decoded.
	ErrFrame = errors.New("matrix: malformed frame")

	// ErrNack means the controller refused a frame.
	ErrNack = errors.New("matrix: controller rejected frame")
)

// Frame is one controller request.
//
// Wire layout: Sync, op, card, len(id), id..., len(busses), busses..., xor
// of every byte after Sync.
type Frame struct {
	Op     Op
	Card   int
	ID     string
	Busses []int
}

// Encode serializes f.
func (f Frame) Encode() ([]byte, error) {
	if f.Card < 0 || f.Card > 255 {
		return nil, fmt.Errorf("%w: card %d", ErrFrame, f.Card)
	}
	if len(f.ID) > 255 || len(f.Busses) > 255 {
		return nil, fmt.Errorf("%w: payload too long", ErrFrame)
	}
	buf := make([]byte, 0, 6+len(f.ID)+len(f.Busses))
	buf = append(buf, Sync, byte(f.Op), byte(f.Card), byte(len(f.ID)))
	buf = append(buf, f.ID...)
	buf = append(buf, byte(len(f.Busses)))
	for _, b := range f.Busses {
		if b < 0 || b > MaxBus {
			return nil, fmt.Errorf("%w: bus %d", ErrFrame, b)
		}
		buf = append(buf, byte(b))
	}
	return append(buf, checksum(buf[1:])), nil
}

// DecodeFrame parses one frame. Trailing bytes after the checksum, such as
// transport padding, are ignored.
func DecodeFrame(data []byte) (Frame, error) {
	if len(data) < 6 || data[0] != Sync {
		return Frame{}, fmt.Errorf("%w: bad header", ErrFrame)
	}
	f := Frame{Op: Op(data[1]), Card: int(data[2])}
	idLen := int(data[3])
	pos := 4 + idLen
	if len(data) < pos+2 {
		return Frame{}, fmt.Errorf("%w: short id", ErrFrame)
	}
	f.ID = string(data[4:pos])
	n := int(data[pos])
	pos++
	if len(data) < pos+n+1 {
		return Frame{}, fmt.Errorf("%w: short bus list", ErrFrame)
	}
	for _, b := range data[pos : pos+n] {
		f.Busses = append(f.Busses, int(b))
	}
	pos += n
	if checksum(data[1:pos]) != data[pos] {
		return Frame{}, fmt.Errorf("%w: checksum", ErrFrame)
	}
	return f, nil
}

// Ack builds the controller reply to op.
func Ack(op Op, status byte) []byte {
	return []byte{Sync, byte(op) | 0x80, status}
}

func checkAck(op Op, resp []byte) error {
	if len(resp) < 3 || resp[0] != Sync || resp[1] != byte(op)|0x80 {
		return fmt.Errorf("%w: unexpected reply % X", ErrNack, resp)
	}
	if resp[2] != StatusOK {
		return fmt.Errorf("%w: status 0x%02X", ErrNack, resp[2])
	}
	return nil
}

func checksum(b []byte) byte {
	var x byte
	for _, v := range b {
		x ^= v
	}
	return x
}

// Frames returns the frames that apply p: a reset, one close per command,
// then a commit.
func (p *Program) Frames() []Frame {
	out := make([]Frame, 0, len(p.Commands)+2)
	out = append(out, Frame{Op: OpReset})
	for _, cmd := range p.Commands {
		out = append(out, Frame{Op: OpClose, Card: cmd.Card, ID: cmd.Component, Busses: cmd.Busses})
	}
	return append(out, Frame{Op: OpCommit})
}
