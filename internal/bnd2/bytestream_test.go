package bnd2

import "testing"

func TestByteStreamReadWriteRoundTrip(t *testing.T) {
	s := NewWriterStream(PlatformX360)
	s.WriteU8(0x12)
	s.WriteU16(0x3456)
	s.WriteU32(0x789ABCDE)
	s.WriteU64(0x0102030405060708)
	s.WriteMagic(Magic)
	s.WriteString("hi")
	s.WriteU8(0)

	r := NewByteStream(s.Bytes(), PlatformX360)
	if v, err := r.ReadU8(); err != nil || v != 0x12 {
		t.Fatalf("ReadU8 = %v, %v, want 0x12, nil", v, err)
	}
	if v, err := r.ReadU16(); err != nil || v != 0x3456 {
		t.Fatalf("ReadU16 = %v, %v, want 0x3456, nil", v, err)
	}
	if v, err := r.ReadU32(); err != nil || v != 0x789ABCDE {
		t.Fatalf("ReadU32 = %v, %v, want 0x789ABCDE, nil", v, err)
	}
	if v, err := r.ReadU64(); err != nil || v != 0x0102030405060708 {
		t.Fatalf("ReadU64 = %v, %v, want 0x0102030405060708, nil", v, err)
	}
	m, err := r.ReadMagic()
	if err != nil || m != Magic {
		t.Fatalf("ReadMagic = %v, %v, want %v, nil", m, err, Magic)
	}
	str, err := r.ReadCString()
	if err != nil || str != "hi" {
		t.Fatalf("ReadCString = %q, %v, want %q, nil", str, err, "hi")
	}
}

func TestByteStreamEndianness(t *testing.T) {
	le := NewWriterStream(PlatformPC)
	le.WriteU32(1)
	if got := le.Bytes(); got[0] != 1 || got[3] != 0 {
		t.Errorf("PC WriteU32(1) = %v, want little-endian 01 00 00 00", got)
	}

	be := NewWriterStream(PlatformX360)
	be.WriteU32(1)
	if got := be.Bytes(); got[0] != 0 || got[3] != 1 {
		t.Errorf("X360 WriteU32(1) = %v, want big-endian 00 00 00 01", got)
	}
}

func TestByteStreamMagicNeverSwapped(t *testing.T) {
	for _, p := range []Platform{PlatformPC, PlatformX360, PlatformPS3} {
		s := NewWriterStream(p)
		s.WriteMagic(Magic)
		if got := s.Bytes(); string(got) != "bnd2" {
			t.Errorf("platform %v: magic bytes = %q, want %q", p, got, "bnd2")
		}
	}
}

func TestByteStreamWritePastEndGrowsBuffer(t *testing.T) {
	s := NewWriterStream(PlatformPC)
	s.Seek(16)
	s.WriteU32(0xDEADBEEF)
	if s.Len() != 20 {
		t.Fatalf("Len() = %d, want 20", s.Len())
	}
	for i := 0; i < 16; i++ {
		if s.Bytes()[i] != 0 {
			t.Errorf("byte %d = %#x, want 0 (zero-padded gap)", i, s.Bytes()[i])
		}
	}
}

func TestByteStreamReadPastEndFails(t *testing.T) {
	r := NewByteStream([]byte{1, 2, 3}, PlatformPC)
	if _, err := r.ReadU32(); err == nil {
		t.Error("ReadU32 past end of buffer succeeded, want error")
	}
}

func TestReadStringTrimsNulPadding(t *testing.T) {
	s := NewWriterStream(PlatformPC)
	s.WriteBytes([]byte("abc\x00\x00\x00\x00\x00"))
	r := NewByteStream(s.Bytes(), PlatformPC)
	got, err := r.ReadString(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "abc" {
		t.Errorf("ReadString = %q, want %q", got, "abc")
	}
}
