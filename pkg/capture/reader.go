// Package capture reads network capture files (pcapng and legacy pcap)
// block by block through a growable buffer.
//
// The cursor protocol is explicit: Next parses one block from buffered
// bytes and reports how many bytes it spans, Consume advances past it,
// and ErrIncomplete asks the caller to Refill before retrying.
package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// DefaultBufferSize is the initial buffer capacity.
	DefaultBufferSize = 65536
	// MaxBufferSize bounds buffer growth for oversized blocks.
	MaxBufferSize = 64 << 20
)

var (
	// ErrIncomplete means the buffer does not yet hold a whole block.
	ErrIncomplete = errors.New("incomplete block")
	// ErrUnexpectedEOF means the input ended inside a block.
	ErrUnexpectedEOF = errors.New("capture truncated inside a block")
	// ErrUnknownFormat means the input is neither pcapng nor pcap.
	ErrUnknownFormat = errors.New("unknown capture format")
	// ErrBlockTooLarge means a block exceeds MaxBufferSize.
	ErrBlockTooLarge = errors.New("capture block too large")
	// ErrMalformedBlock means a block header is inconsistent.
	ErrMalformedBlock = errors.New("malformed capture block")
)

// Format is the detected container format.
type Format int

const (
	FormatPcapNG Format = iota + 1
	FormatPcap
)

func (f Format) String() string {
	switch f {
	case FormatPcapNG:
		return "pcapng"
	case FormatPcap:
		return "pcap"
	default:
		return "unknown"
	}
}

// BlockKind groups block types by what their data holds.
type BlockKind int

const (
	KindHeader BlockKind = iota // file or section header
	KindPacket                  // captured packet bytes
	KindOther                   // any other block; Data is the raw body
)

// Block is one parsed unit of a capture file. Data aliases the reader's
// buffer and is only valid until the next Consume or Refill.
type Block struct {
	Type uint32 // pcapng block type, or a Pcap* pseudo type
	Kind BlockKind
	Data []byte
}

// Reader is a buffered block cursor over a capture stream.
type Reader struct {
	r      io.Reader
	buf    []byte
	start  int
	end    int
	eof    bool
	need   int // bytes the pending block needs, set on ErrIncomplete
	format Format

	order         binary.ByteOrder
	headerPending bool // legacy pcap global header not yet yielded
}

// NewReader detects the capture format from the first bytes of r.
func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderSize(r, DefaultBufferSize)
}

// NewReaderSize is NewReader with an explicit initial buffer capacity.
func NewReaderSize(r io.Reader, size int) (*Reader, error) {
	if size < 64 {
		size = 64
	}
	cr := &Reader{r: r, buf: make([]byte, size)}

	for cr.buffered() < 4 && !cr.eof {
		cr.need = 4
		if err := cr.fill(); err != nil {
			return nil, err
		}
	}
	if cr.buffered() < 4 {
		return nil, fmt.Errorf("%w: input too short", ErrUnknownFormat)
	}

	magic := cr.buf[cr.start : cr.start+4]
	switch le := binary.LittleEndian.Uint32(magic); le {
	case blockSectionHeader:
		cr.format = FormatPcapNG
	case pcapMagicMicros, pcapMagicNanos:
		cr.format, cr.order, cr.headerPending = FormatPcap, binary.LittleEndian, true
	case pcapMagicMicrosSwapped, pcapMagicNanosSwapped:
		cr.format, cr.order, cr.headerPending = FormatPcap, binary.BigEndian, true
	default:
		return nil, fmt.Errorf("%w: magic %#08x", ErrUnknownFormat, le)
	}
	return cr, nil
}

// Format returns the detected container format.
func (r *Reader) Format() Format {
	return r.format
}

// Next parses the block at the cursor. It returns the number of bytes the
// block spans, to be passed to Consume. At the end of input it returns
// io.EOF; when more bytes are needed it returns ErrIncomplete.
func (r *Reader) Next() (int, Block, error) {
	if r.buffered() == 0 && r.eof {
		return 0, Block{}, io.EOF
	}

	var (
		n     int
		block Block
		err   error
	)
	switch r.format {
	case FormatPcapNG:
		n, block, err = r.nextPcapNG()
	default:
		n, block, err = r.nextPcap()
	}

	if errors.Is(err, ErrIncomplete) && r.eof {
		return 0, Block{}, ErrUnexpectedEOF
	}
	return n, block, err
}

// Consume advances the cursor by n bytes.
func (r *Reader) Consume(n int) {
	if n > r.buffered() {
		n = r.buffered()
	}
	r.start += n
	r.need = 0
	if r.start == r.end {
		r.start, r.end = 0, 0
	}
}

// Refill reads more input into the buffer, growing it when the pending
// block does not fit.
func (r *Reader) Refill() error {
	if r.eof {
		if r.buffered() > 0 {
			return ErrUnexpectedEOF
		}
		return nil
	}
	return r.fill()
}

func (r *Reader) fill() error {
	if r.start > 0 {
		copy(r.buf, r.buf[r.start:r.end])
		r.end -= r.start
		r.start = 0
	}

	if r.need > len(r.buf) || r.end == len(r.buf) {
		size := max(2*len(r.buf), r.need)
		if size > MaxBufferSize {
			if r.need > MaxBufferSize {
				return fmt.Errorf("%w: %d bytes", ErrBlockTooLarge, r.need)
			}
			size = MaxBufferSize
		}
		grown := make([]byte, size)
		copy(grown, r.buf[:r.end])
		r.buf = grown
	}

	n, err := io.ReadAtLeast(r.r, r.buf[r.end:], 1)
	r.end += n
	if errors.Is(err, io.EOF) {
		r.eof = true
		return nil
	}
	return err
}

func (r *Reader) buffered() int {
	return r.end - r.start
}

// window returns the buffered bytes, or ErrIncomplete if fewer than n are
// available.
func (r *Reader) window(n int) ([]byte, error) {
	if n > MaxBufferSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBlockTooLarge, n)
	}
	if r.buffered() < n {
		r.need = n
		return nil, ErrIncomplete
	}
	return r.buf[r.start:r.end], nil
}
