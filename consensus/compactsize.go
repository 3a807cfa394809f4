package consensus

import "encoding/binary"

// CompactSize is the Bitcoin-style variable-length integer encoding used
// inside operation payloads (e.g. a NAME_IMPORT value_hash length prefix).
type CompactSize uint64

// Encode returns the minimal CompactSize byte encoding of c.
func (c CompactSize) Encode() []byte {
	return AppendCompactSize(nil, uint64(c))
}

// AppendCompactSize encodes n in Bitcoin-style CompactSize and appends it to dst.
func AppendCompactSize(dst []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(dst, byte(n))
	case n <= 0xffff:
		dst = append(dst, 0xfd)
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(n))
		return append(dst, b[:]...)
	case n <= 0xffff_ffff:
		dst = append(dst, 0xfe)
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(n))
		return append(dst, b[:]...)
	default:
		dst = append(dst, 0xff)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], n)
		return append(dst, b[:]...)
	}
}

// EncodeCompactSize is the non-append convenience form of AppendCompactSize.
func EncodeCompactSize(n uint64) []byte {
	return AppendCompactSize(nil, n)
}

// DecodeCompactSize decodes one CompactSize value from the front of buf and
// returns the value and the number of bytes consumed. Non-minimal encodings
// are rejected.
func DecodeCompactSize(buf []byte) (uint64, int, error) {
	off := 0
	v, err := readCompactSize(buf, &off)
	if err != nil {
		return 0, 0, err
	}
	return v, off, nil
}

func readCompactSize(b []byte, off *int) (uint64, error) {
	if *off >= len(b) {
		return 0, operr(ERR_PAYLOAD_TRUNCATED, "compactsize: missing tag byte")
	}
	tag := b[*off]
	*off++

	switch {
	case tag < 0xfd:
		return uint64(tag), nil
	case tag == 0xfd:
		if *off+2 > len(b) {
			return 0, operr(ERR_PAYLOAD_TRUNCATED, "compactsize: truncated u16")
		}
		v := binary.LittleEndian.Uint16(b[*off : *off+2])
		*off += 2
		if v < 0xfd {
			return 0, operr(ERR_MARKER_PARSE, "non-minimal compactsize (0xfd)")
		}
		return uint64(v), nil
	case tag == 0xfe:
		if *off+4 > len(b) {
			return 0, operr(ERR_PAYLOAD_TRUNCATED, "compactsize: truncated u32")
		}
		v := binary.LittleEndian.Uint32(b[*off : *off+4])
		*off += 4
		if v <= 0xffff {
			return 0, operr(ERR_MARKER_PARSE, "non-minimal compactsize (0xfe)")
		}
		return uint64(v), nil
	default: // 0xff
		if *off+8 > len(b) {
			return 0, operr(ERR_PAYLOAD_TRUNCATED, "compactsize: truncated u64")
		}
		v := binary.LittleEndian.Uint64(b[*off : *off+8])
		*off += 8
		if v <= 0xffff_ffff {
			return 0, operr(ERR_MARKER_PARSE, "non-minimal compactsize (0xff)")
		}
		return v, nil
	}
}
