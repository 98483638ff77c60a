package bnd2

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// compressLevel is the zlib compression level used on create: maximum
// (spec.md §4.2).
const compressLevel = 9

// compressBound is the upper bound on a zlib output size for the
// volume of data this codec handles (spec.md §4.2: src_len + 1024 is a
// sufficient bound in practice). It's informational only — the
// klauspost/compress writer grows its own buffer as needed, but
// callers pre-size their output buffer with it to avoid reallocation.
func compressBound(srcLen int) int {
	return srcLen + 1024
}

// Compress zlib-compresses src at compressLevel. Failure here is
// always fatal (spec.md §7 CompressionError): a corrupt or truncated
// bundle must never be written to disk.
func Compress(src []byte) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, compressBound(len(src))))
	w, err := zlib.NewWriterLevel(buf, compressLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: creating zlib writer: %v", ErrCompression, err)
	}
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("%w: writing to zlib stream: %v", ErrCompression, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: closing zlib stream: %v", ErrCompression, err)
	}
	return buf.Bytes(), nil
}

// Decompress zlib-decompresses src into exactly uncompressedSize
// bytes. Failure here is recoverable (spec.md §4.2, §7
// DecompressionError): callers should warn and skip the offending
// plane rather than abort the whole extraction.
func Decompress(src []byte, uncompressedSize int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: opening zlib stream: %v", ErrDecompression, err)
	}
	defer r.Close()

	out := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("%w: reading decompressed stream: %v", ErrDecompression, err)
	}
	// Read on to the end of the stream so a truncated tail or a bad
	// Adler-32 checksum is reported rather than silently ignored.
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, fmt.Errorf("%w: reading decompressed stream: %v", ErrDecompression, err)
	}
	return out, nil
}
