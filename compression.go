package main

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

// Capture tooling ships diagnostics either gzip-compressed or in an LZ4
// block with an ASCII header followed by the original size, little endian.
const lz4Header = "LZ4"

// decodeInput transparently decompresses a diagnostics blob. Plain text
// passes through untouched.
func decodeInput(data []byte) ([]byte, error) {
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		return decompressGzip(data)
	}
	if isLZ4Framed(data) {
		return decompressLZ4(data)
	}
	return data, nil
}

func decompressGzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

func isLZ4Framed(data []byte) bool {
	return len(data) >= len(lz4Header)+8 && string(data[:len(lz4Header)]) == lz4Header
}

// decompressLZ4 decompresses an LZ4 block with the length-prefixed framing
// used by the capture tooling.
func decompressLZ4(data []byte) ([]byte, error) {
	offset := len(lz4Header)
	var originalSize uint64
	for i := 0; i < 8; i++ {
		originalSize |= uint64(data[offset+i]) << (8 * i)
	}

	compressed := data[offset+8:]
	decompressed := make([]byte, originalSize)

	n, err := lz4.UncompressBlock(compressed, decompressed)
	if err != nil {
		return nil, err
	}

	return decompressed[:n], nil
}
