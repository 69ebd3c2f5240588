package capture

import "fmt"

// Legacy pcap magic numbers as read little-endian.
const (
	pcapMagicMicros        = 0xA1B2C3D4
	pcapMagicNanos         = 0xA1B23C4D
	pcapMagicMicrosSwapped = 0xD4C3B2A1
	pcapMagicNanosSwapped  = 0x4D3CB2A1
)

// Pseudo block types for legacy pcap, outside the pcapng type space.
const (
	PcapFileHeader = 0xFFFF0001
	PcapRecord     = 0xFFFF0002
)

const (
	pcapFileHeaderLen   = 24
	pcapRecordHeaderLen = 16
)

func (r *Reader) nextPcap() (int, Block, error) {
	if r.headerPending {
		if _, err := r.window(pcapFileHeaderLen); err != nil {
			return 0, Block{}, err
		}
		r.headerPending = false
		return pcapFileHeaderLen, Block{Type: PcapFileHeader, Kind: KindHeader}, nil
	}

	buf, err := r.window(pcapRecordHeaderLen)
	if err != nil {
		return 0, Block{}, err
	}
	caplen := int(r.order.Uint32(buf[8:12]))
	if caplen > MaxBufferSize-pcapRecordHeaderLen {
		return 0, Block{}, fmt.Errorf("%w: record of %d bytes", ErrBlockTooLarge, caplen)
	}

	total := pcapRecordHeaderLen + caplen
	if buf, err = r.window(total); err != nil {
		return 0, Block{}, err
	}
	return total, Block{Type: PcapRecord, Kind: KindPacket, Data: buf[pcapRecordHeaderLen:total]}, nil
}
