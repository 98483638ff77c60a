package bnd2

import "fmt"

// ReadBundle parses a complete bnd2 container from data: header, entry
// table, and (if present) the debug data blob. It runs both the
// header-level and entry-table validators before returning, so a
// successfully-returned Bundle is always safe to extract from.
func ReadBundle(data []byte) (*Bundle, error) {
	magic, err := peekMagic(data)
	if err != nil {
		return nil, err
	}
	if err := ValidateMagic(magic); err != nil {
		return nil, err
	}

	platformWord, err := peekWord(data, 8)
	if err != nil {
		return nil, err
	}
	platform, err := ResolvePlatform(platformWord)
	if err != nil {
		return nil, err
	}

	s := NewByteStream(data, platform)

	if _, err := s.ReadMagic(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundleFormat, err)
	}
	version, err := s.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: reading version: %v", ErrBundleFormat, err)
	}
	if err := ValidateVersion(version); err != nil {
		return nil, err
	}

	// Skip over the raw-LE platform word; its value was already
	// resolved above and is re-read in the stream's own byte order here
	// purely to advance the cursor past it.
	if _, err := s.ReadU32(); err != nil {
		return nil, fmt.Errorf("%w: reading platform: %v", ErrBundleFormat, err)
	}

	b := &Bundle{Platform: platform, raw: data}

	b.DebugDataOffset, err = s.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: reading debugDataOffset: %v", ErrBundleFormat, err)
	}
	resourceCount, err := s.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: reading resourceCount: %v", ErrBundleFormat, err)
	}
	b.ResourceEntriesOffset, err = s.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: reading resourceEntriesOffset: %v", ErrBundleFormat, err)
	}
	for i := 0; i < 3; i++ {
		b.PlaneOffset[i], err = s.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("%w: reading planeOffset[%d]: %v", ErrBundleFormat, i, err)
		}
	}
	flags, err := s.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("%w: reading flags: %v", ErrBundleFormat, err)
	}
	b.Flags = Flags(flags)

	b.Entries = make([]ResourceEntry, resourceCount)
	for i := uint32(0); i < resourceCount; i++ {
		s.Seek(int(b.ResourceEntriesOffset) + int(i)*EntrySize)
		e, err := readResourceEntry(s)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrBundleFormat, i, err)
		}
		b.Entries[i] = e
	}

	if err := ValidateEntries(b); err != nil {
		return nil, err
	}

	if b.Flags.Has(FlagContainsDebugData) {
		s.Seek(int(b.DebugDataOffset))
		debugStr, err := s.ReadCString()
		if err != nil {
			return nil, fmt.Errorf("%w: reading debug data: %v", ErrBundleFormat, err)
		}
		b.DebugData = []byte(debugStr)
	}

	return b, nil
}

func readResourceEntry(s *ByteStream) (ResourceEntry, error) {
	var e ResourceEntry
	var err error

	if e.ID, err = s.ReadU64(); err != nil {
		return e, err
	}
	if e.ImportsHash, err = s.ReadU64(); err != nil {
		return e, err
	}
	for i := 0; i < 3; i++ {
		if e.UncompressedInfo[i], err = s.ReadU32(); err != nil {
			return e, err
		}
	}
	for i := 0; i < 3; i++ {
		if e.CompressedSize[i], err = s.ReadU32(); err != nil {
			return e, err
		}
	}
	for i := 0; i < 3; i++ {
		if e.PlaneLocalOffset[i], err = s.ReadU32(); err != nil {
			return e, err
		}
	}
	if e.ImportsOffset, err = s.ReadU32(); err != nil {
		return e, err
	}
	if e.Type, err = s.ReadU32(); err != nil {
		return e, err
	}
	if e.ImportCount, err = s.ReadU16(); err != nil {
		return e, err
	}
	var flagsByte, streamByte uint8
	if flagsByte, err = s.ReadU8(); err != nil {
		return e, err
	}
	if streamByte, err = s.ReadU8(); err != nil {
		return e, err
	}
	e.EntryFlags = flagsByte
	e.StreamIndex = streamByte
	return e, nil
}

func peekMagic(data []byte) ([4]byte, error) {
	var m [4]byte
	if len(data) < 4 {
		return m, fmt.Errorf("%w: bundle shorter than magic field", ErrBundleFormat)
	}
	copy(m[:], data[:4])
	return m, nil
}

func peekWord(data []byte, offset int) ([4]byte, error) {
	var w [4]byte
	if len(data) < offset+4 {
		return w, fmt.Errorf("%w: bundle shorter than header", ErrBundleFormat)
	}
	copy(w[:], data[offset:offset+4])
	return w, nil
}
