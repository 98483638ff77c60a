package bnd2

import "fmt"

// ValidateMagic checks the fixed, unswapped 4-byte bundle identifier.
func ValidateMagic(m [4]byte) error {
	if m != Magic {
		return fmt.Errorf("%w: bad magic %q, expected %q", ErrBundleFormat, m, Magic)
	}
	return nil
}

// ValidateVersion checks the bundle format version (spec.md §3: only
// version 2 is supported).
func ValidateVersion(v uint32) error {
	if v != Version {
		return fmt.Errorf("%w: unsupported bundle version %d, expected %d", ErrBundleFormat, v, Version)
	}
	return nil
}

// ResolvePlatform decodes the raw little-endian platform word into a
// Platform (spec.md §4.5 step 1, §9 Open Questions).
func ResolvePlatform(word [4]byte) (Platform, error) {
	return rawPlatformWord(word)
}

// ValidateEntries runs the bundle-side validator (spec.md §4.3) over a
// fully-read entry table. It returns the first fatal condition found,
// wrapped in ErrEntryValidation, naming the offending entry index and
// value exactly as spec.md §7 requires.
//
// Rules 7 and 8 only compare against bundle.PlaneOffset and sibling
// entries, so the whole table must already be populated before this
// runs — it cannot validate incrementally as entries are read, unlike
// the cheaper per-field rules 1-6.
func ValidateEntries(bundle *Bundle) error {
	entries := bundle.Entries
	for i := range entries {
		e := &entries[i]

		if e.ID&0xFFFFFFFF == 0 {
			return fmt.Errorf("%w: entry %d: null id", ErrEntryValidation, i)
		}
		if e.ID>>32 != 0 {
			return fmt.Errorf("%w: entry %d: id high bits set (id=0x%X)", ErrEntryValidation, i, e.ID)
		}
		if e.ImportsHash>>32 != 0 {
			return fmt.Errorf("%w: entry %d: importsHash high bits set (importsHash=0x%X)", ErrEntryValidation, i, e.ImportsHash)
		}
		if e.CompressedSize[0] == 0 {
			return fmt.Errorf("%w: entry %d (id=0x%08X): main memory portion is mandatory but compressedSize[0] is 0", ErrEntryValidation, i, e.ID)
		}
		if e.Type > MaxKnownType {
			return fmt.Errorf("%w: entry %d (id=0x%08X): type 0x%X exceeds known range 0x%X", ErrEntryValidation, i, e.ID, e.Type, MaxKnownType)
		}
		if e.ImportsOffset > SizeOf(e.UncompressedInfo[0]) {
			return fmt.Errorf("%w: entry %d (id=0x%08X): importsOffset 0x%X exceeds plane-0 size 0x%X",
				ErrEntryValidation, i, e.ID, e.ImportsOffset, SizeOf(e.UncompressedInfo[0]))
		}

		for p := 0; p < 2; p++ {
			end := bundle.PlaneOffset[p] + e.PlaneLocalOffset[p] + e.CompressedSize[p]
			if end > bundle.PlaneOffset[p+1] {
				return fmt.Errorf("%w: entry %d (id=0x%08X) plane %d: end offset 0x%X exceeds plane %d start 0x%X",
					ErrEntryValidation, i, e.ID, p, end, p+1, bundle.PlaneOffset[p+1])
			}
		}

		if i > 0 {
			for p := 0; p < 3; p++ {
				if e.PlaneLocalOffset[p] == 0 || e.CompressedSize[p] == 0 {
					continue
				}

				prevIdx := i - 1
				for prevIdx >= 0 && entries[prevIdx].CompressedSize[p] == 0 {
					prevIdx--
				}
				if prevIdx < 0 {
					return fmt.Errorf("%w: entry %d (id=0x%08X) plane %d: offset is non-zero but no earlier entry has data on this plane",
						ErrEntryValidation, i, e.ID, p)
				}
				prev := &entries[prevIdx]

				start := bundle.PlaneOffset[p] + e.PlaneLocalOffset[p]
				prevEnd := bundle.PlaneOffset[p] + prev.PlaneLocalOffset[p] + prev.CompressedSize[p]
				if start < prevEnd {
					return fmt.Errorf("%w: entry %d (id=0x%08X) plane %d: start offset 0x%X is before previous entry's end offset 0x%X",
						ErrEntryValidation, i, e.ID, p, start, prevEnd)
				}
			}
		}
	}
	return nil
}
