// Binary encoding for pattern lists.
//
// Patterns are arbitrary byte strings, so they are stored length-prefixed
// rather than as JSON (which would mangle invalid UTF-8).
//
// Format v1 (little-endian):
//
//	version:      uint8 (= 1)
//	patternCount: uint32
//	per pattern:
//	  len:   uint32
//	  bytes: [len]byte
package bbolt

import (
	"encoding/binary"
	"fmt"
)

const patternsFormatV1 = 1

// encodePatterns encodes a pattern list into one pre-sized buffer.
func encodePatterns(patterns []string) []byte {
	totalSize := 1 + 4
	for _, p := range patterns {
		totalSize += 4 + len(p)
	}

	buf := make([]byte, totalSize)
	buf[0] = patternsFormatV1
	binary.LittleEndian.PutUint32(buf[1:], uint32(len(patterns)))
	off := 5
	for _, p := range patterns {
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(p)))
		off += 4
		off += copy(buf[off:], p)
	}
	return buf
}

// decodePatterns is the inverse of encodePatterns.
func decodePatterns(data []byte) ([]string, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("patterns blob too short: %d bytes", len(data))
	}
	if data[0] != patternsFormatV1 {
		return nil, fmt.Errorf("unknown patterns format version %d", data[0])
	}
	count := binary.LittleEndian.Uint32(data[1:])
	off := 5

	// Each pattern needs at least its 4-byte length prefix.
	if uint64(count)*4 > uint64(len(data)-off) {
		return nil, fmt.Errorf("pattern count %d exceeds blob size", count)
	}

	patterns := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		if off+4 > len(data) {
			return nil, fmt.Errorf("truncated length of pattern %d", i)
		}
		n := int(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		if n < 0 || off+n > len(data) {
			return nil, fmt.Errorf("truncated pattern %d", i)
		}
		patterns = append(patterns, string(data[off:off+n]))
		off += n
	}
	if off != len(data) {
		return nil, fmt.Errorf("%d trailing bytes after patterns", len(data)-off)
	}
	return patterns, nil
}
