package bnd2

// Wire layout constants (spec.md §6.1).
const (
	HeaderSize     = 0x30
	EntrySize      = 0x40
	ImportWireSize = 0x10
	PlaneAlignment = 0x80

	sizeMask      = 0x0FFFFFFF
	alignExpShift = 28
)

// Flags is the bundle-level flags bitfield (spec.md §3).
type Flags uint32

const (
	FlagIsCompressed            Flags = 0x1
	FlagIsMainMemOptimised      Flags = 0x2
	FlagIsGraphicsMemOptimised  Flags = 0x4
	FlagContainsDebugData       Flags = 0x8
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Magic is the fixed, never-byte-swapped 4-byte bundle identifier.
var Magic = [4]byte{'b', 'n', 'd', '2'}

const Version = 2

// Bundle is the fully-parsed (or fully-assembled) in-memory
// representation of a bnd2 container (spec.md §3). Its header and
// entry-table fields are not changed once it is built; Extract fills in
// each entry's Imports and Payload as it decodes the planes.
type Bundle struct {
	Platform              Platform
	DebugDataOffset       uint32
	ResourceEntriesOffset uint32
	PlaneOffset           [3]uint32
	Flags                 Flags
	Entries               []ResourceEntry
	DebugData             []byte // nil if ContainsDebugData is unset

	// raw is the full buffer ReadBundle parsed this Bundle from. It
	// stays alive so plane payloads can be sliced out of it lazily by
	// Extract instead of every plane being copied up front.
	raw []byte
}

// ResourceEntry is one resource's entry-table record plus its decoded
// payload planes (spec.md §3).
type ResourceEntry struct {
	ID                uint64
	ImportsHash       uint64
	UncompressedInfo  [3]uint32 // packed size|alignExp, see SizeOf/AlignExpOf
	CompressedSize    [3]uint32
	PlaneLocalOffset  [3]uint32
	ImportsOffset     uint32
	Type              uint32
	ImportCount       uint16
	EntryFlags        uint8
	StreamIndex       uint8
	Imports           []ImportEntry

	// Payload holds the decoded (decompressed if applicable), imports-
	// stripped bytes for each plane. A nil slice means no data for that
	// plane, or (on extract) that decompression failed and the plane
	// was skipped with a warning.
	Payload [3][]byte
}

// ImportEntry is a single reference from one resource's primary
// payload to another resource by id (spec.md §3).
type ImportEntry struct {
	ID     uint64
	Offset uint32
}

// SizeOf returns the uncompressed payload size encoded in a packed
// uncompressedInfo word (the low 28 bits).
func SizeOf(word uint32) uint32 {
	return word & sizeMask
}

// AlignExpOf returns the alignment exponent encoded in a packed
// uncompressedInfo word (the top 4 bits). The actual alignment is
// 1 << AlignExpOf(word).
func AlignExpOf(word uint32) uint32 {
	return word >> alignExpShift
}

// PackUncompressedInfo merges a payload size and an alignment exponent
// into a single wire word. size must fit in 28 bits and alignExp must
// be in [0,15]; callers are expected to have validated this already.
func PackUncompressedInfo(size uint32, alignExp uint32) uint32 {
	return (size & sizeMask) | (alignExp << alignExpShift)
}

// Alignment returns 1 << AlignExpOf(word).
func Alignment(word uint32) uint32 {
	return 1 << AlignExpOf(word)
}

// AlignExpFromValue returns the exponent k such that 1<<k == align, or
// false if align is not a power of two in [1, 0x8000].
func AlignExpFromValue(align uint32) (uint32, bool) {
	if align == 0 || align > 0x8000 || align&(align-1) != 0 {
		return 0, false
	}
	exp := uint32(0)
	for v := align; v > 1; v >>= 1 {
		exp++
	}
	return exp, true
}

// HasPlane reports whether the entry has a non-empty payload on plane
// p, i.e. a non-zero compressed size (spec.md §4.5 step 4). The plane
// offset is not consulted: the first resource on a plane starts at
// offset 0.
func (e *ResourceEntry) HasPlane(p int) bool {
	return e.CompressedSize[p] != 0
}

// SecondaryMemoryType returns which plane (1 or 2) carries this
// entry's secondary payload, or -1 if it has none (spec.md §4.5 step
// 6).
func (e *ResourceEntry) SecondaryMemoryType() int {
	if e.CompressedSize[1] != 0 {
		return 1
	}
	if e.CompressedSize[2] != 0 {
		return 2
	}
	return -1
}
