package bnd2

import (
	"bytes"
	"errors"
	"testing"
)

func TestCompressDecompressRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte("resource payload bytes "), 64)

	compressed, err := Compress(src)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if len(compressed) >= len(src) {
		t.Errorf("compressed size %d not smaller than source %d", len(compressed), len(src))
	}

	decompressed, err := Decompress(compressed, len(src))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(decompressed, src) {
		t.Error("Decompress(Compress(src)) != src")
	}
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := Decompress([]byte{0x00, 0x01, 0x02, 0x03}, 16)
	if !errors.Is(err, ErrDecompression) {
		t.Errorf("Decompress(garbage) err = %v, want ErrDecompression", err)
	}
}

func TestDecompressRejectsTruncatedStream(t *testing.T) {
	src := bytes.Repeat([]byte("x"), 256)
	compressed, err := Compress(src)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	_, err = Decompress(compressed[:len(compressed)/2], len(src))
	if !errors.Is(err, ErrDecompression) {
		t.Errorf("Decompress(truncated) err = %v, want ErrDecompression", err)
	}
}
