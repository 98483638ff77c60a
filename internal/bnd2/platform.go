package bnd2

import (
	"encoding/binary"
	"fmt"
)

// Platform identifies the target hardware a bundle was built for. It
// fixes the byte order used for every multi-byte field in the bundle
// other than the magic, which is never swapped.
type Platform uint32

const (
	PlatformPC   Platform = 1
	PlatformX360 Platform = 2
	PlatformPS3  Platform = 3
)

func (p Platform) String() string {
	switch p {
	case PlatformPC:
		return "PC"
	case PlatformX360:
		return "X360"
	case PlatformPS3:
		return "PS3"
	default:
		return fmt.Sprintf("Platform(0x%X)", uint32(p))
	}
}

// Valid reports whether p is one of the three recognised platforms.
func (p Platform) Valid() bool {
	switch p {
	case PlatformPC, PlatformX360, PlatformPS3:
		return true
	default:
		return false
	}
}

// ByteOrder returns the binary.ByteOrder that multi-byte integer fields
// are encoded with on this platform: little-endian on PC, big-endian on
// X360 and PS3.
func (p Platform) ByteOrder() binary.ByteOrder {
	if p == PlatformPC {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// rawPlatformWord decodes the bundle header's platform field, which is
// always interpreted as a raw little-endian value regardless of the
// bundle's own byte order (the reference tool relies on this, see
// DESIGN.md "Open Question resolutions"): X360 and PS3 bundles store 2
// and 3 big-endian, which read back as 0x02000000 and 0x03000000. word
// is the 4-byte field exactly as it appears on disk at offset 0x08.
func rawPlatformWord(word [4]byte) (Platform, error) {
	raw := binary.LittleEndian.Uint32(word[:])
	switch raw {
	case 1:
		return PlatformPC, nil
	case 0x02000000:
		return PlatformX360, nil
	case 0x03000000:
		return PlatformPS3, nil
	default:
		return 0, fmt.Errorf("%w: unrecognised platform word 0x%08X", ErrBundleFormat, raw)
	}
}
