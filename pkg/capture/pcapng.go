package capture

import (
	"encoding/binary"
	"fmt"
)

// pcapng block types.
const (
	blockSectionHeader        = 0x0A0D0D0A
	BlockInterfaceDescription = 0x00000001
	BlockPacket               = 0x00000002 // obsolete packet block
	BlockSimplePacket         = 0x00000003
	BlockNameResolution       = 0x00000004
	BlockInterfaceStatistics  = 0x00000005
	BlockEnhancedPacket       = 0x00000006
	BlockSectionHeader        = blockSectionHeader
)

const (
	byteOrderMagic = 0x1A2B3C4D
	ngHeaderLen    = 8 // type + total length
	ngMinBlockLen  = 12
)

func (r *Reader) nextPcapNG() (int, Block, error) {
	buf, err := r.window(ngHeaderLen)
	if err != nil {
		return 0, Block{}, err
	}

	if binary.LittleEndian.Uint32(buf) == blockSectionHeader {
		// Each section declares its own byte order.
		if buf, err = r.window(ngMinBlockLen); err != nil {
			return 0, Block{}, err
		}
		switch binary.LittleEndian.Uint32(buf[8:]) {
		case byteOrderMagic:
			r.order = binary.LittleEndian
		case 0x4D3C2B1A:
			r.order = binary.BigEndian
		default:
			return 0, Block{}, fmt.Errorf("%w: bad byte-order magic", ErrMalformedBlock)
		}
	} else if r.order == nil {
		return 0, Block{}, fmt.Errorf("%w: block before section header", ErrMalformedBlock)
	}

	typ := r.order.Uint32(buf)
	total := int(r.order.Uint32(buf[4:]))
	if total < ngMinBlockLen || total%4 != 0 {
		return 0, Block{}, fmt.Errorf("%w: block type %#x has length %d", ErrMalformedBlock, typ, total)
	}

	if buf, err = r.window(total); err != nil {
		return 0, Block{}, err
	}
	if trailer := int(r.order.Uint32(buf[total-4:])); trailer != total {
		return 0, Block{}, fmt.Errorf("%w: block type %#x length %d, trailer %d", ErrMalformedBlock, typ, total, trailer)
	}

	body := buf[ngHeaderLen : total-4]
	block := Block{Type: typ, Kind: KindOther, Data: body}

	switch typ {
	case blockSectionHeader:
		block.Kind = KindHeader
	case BlockEnhancedPacket, BlockPacket:
		// Both layouts carry the captured length at offset 12 and the
		// packet bytes at offset 20.
		block.Kind = KindPacket
		if len(body) < 20 {
			return 0, Block{}, fmt.Errorf("%w: short packet block", ErrMalformedBlock)
		}
		block.Data, err = packetData(body, 20, r.order.Uint32(body[12:16]))
	case BlockSimplePacket:
		block.Kind = KindPacket
		if len(body) < 4 {
			return 0, Block{}, fmt.Errorf("%w: short simple packet block", ErrMalformedBlock)
		}
		data := body[4:]
		if orig := int(r.order.Uint32(body)); orig < len(data) {
			data = data[:orig]
		}
		block.Data = data
	}
	if err != nil {
		return 0, Block{}, err
	}

	return total, block, nil
}

// packetData slices caplen bytes of packet data that start at offset.
func packetData(body []byte, offset int, caplen uint32) ([]byte, error) {
	if len(body) < offset || int(caplen) > len(body)-offset {
		return nil, fmt.Errorf("%w: packet data exceeds block", ErrMalformedBlock)
	}
	return body[offset : offset+int(caplen)], nil
}
