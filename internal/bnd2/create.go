package bnd2

import (
	"bytes"
	"fmt"
	"os"
	"sort"
)

// CreateOptions controls packer defaults applied when a resource's
// sidecar entry leaves an alignment unspecified.
type CreateOptions struct {
	DefaultPrimaryAlignment   uint32 // spec.md default: 0x10
	DefaultSecondaryAlignment uint32 // spec.md default: 0x80
}

// CreateStats summarizes a completed packing run for CLI reporting.
type CreateStats struct {
	ResourcesPacked int
	BytesPacked     int64
}

// Create assembles a bnd2 container from a parsed metadata sidecar, the
// discovered data files for each resource, and their import lists. It
// returns the serialized bundle bytes ready to write to disk.
//
// Resources are packed in ascending id order (spec.md §4.6 step 2,
// mirroring the reference tool's pre-pack sort), independent of the
// order they appeared in the metadata file.
func Create(meta *Metadata, files map[uint64]ResourceFiles, importsByID map[uint64][]ImportRecord, debugData []byte, opts CreateOptions, progress func(done, total int)) ([]byte, *Bundle, *CreateStats, error) {
	if opts.DefaultPrimaryAlignment == 0 {
		opts.DefaultPrimaryAlignment = 0x10
	}
	if opts.DefaultSecondaryAlignment == 0 {
		opts.DefaultSecondaryAlignment = 0x80
	}

	bundle := &Bundle{Platform: meta.Bundle.Platform}
	if FlagOrDefaultTrue(meta.Bundle.Compressed) {
		bundle.Flags |= FlagIsCompressed
	}
	if FlagOrDefaultTrue(meta.Bundle.MainMemOptimised) {
		bundle.Flags |= FlagIsMainMemOptimised
	}
	if FlagOrDefaultTrue(meta.Bundle.GraphicsMemOptimised) {
		bundle.Flags |= FlagIsGraphicsMemOptimised
	}

	bundle.DebugDataOffset = HeaderSize
	if len(debugData) > 0 {
		bundle.ResourceEntriesOffset = ((bundle.DebugDataOffset + uint32(len(debugData)) + 1) &^ 0xF) + 0x10
		bundle.Flags |= FlagContainsDebugData
	} else {
		bundle.ResourceEntriesOffset = bundle.DebugDataOffset
	}

	resources := append([]ResourceMetadata(nil), meta.Resources...)
	sort.Slice(resources, func(i, j int) bool { return resources[i].ID < resources[j].ID })

	bundle.PlaneOffset[0] = bundle.ResourceEntriesOffset + uint32(len(resources))*EntrySize
	bundle.Entries = make([]ResourceEntry, len(resources))

	for i, rm := range resources {
		e, err := buildResourceEntry(rm, files, importsByID, opts)
		if err != nil {
			return nil, nil, nil, err
		}
		bundle.Entries[i] = e
		if progress != nil {
			progress(i+1, len(resources))
		}
	}

	stats := &CreateStats{}
	var planeData [3]bytes.Buffer
	for plane := 0; plane < 3; plane++ {
		for i := range bundle.Entries {
			if err := packResourcePlane(bundle, &bundle.Entries[i], plane, files, &planeData[plane]); err != nil {
				return nil, nil, nil, err
			}
		}
		stats.BytesPacked += int64(planeData[plane].Len())
	}
	stats.ResourcesPacked = len(bundle.Entries)

	padToAbsoluteAlignment(&planeData[0], bundle.PlaneOffset[0], PlaneAlignment)
	bundle.PlaneOffset[1] = bundle.PlaneOffset[0] + uint32(planeData[0].Len())
	if planeData[1].Len() > 0 {
		padToAbsoluteAlignment(&planeData[1], bundle.PlaneOffset[1], PlaneAlignment)
	}
	bundle.PlaneOffset[2] = bundle.PlaneOffset[1] + uint32(planeData[1].Len())

	out, err := outputBundle(bundle, debugData, &planeData)
	if err != nil {
		return nil, nil, nil, err
	}
	return out, bundle, stats, nil
}

func buildResourceEntry(rm ResourceMetadata, files map[uint64]ResourceFiles, importsByID map[uint64][]ImportRecord, opts CreateOptions) (ResourceEntry, error) {
	e := ResourceEntry{ID: rm.ID, Type: rm.Type}

	rf, ok := files[rm.ID]
	if !ok || rf.Primary == "" {
		return e, fmt.Errorf("%w: resource 0x%08X: missing primary data file", ErrSidecarValidation, rm.ID)
	}
	primaryInfo, err := os.Stat(rf.Primary)
	if err != nil {
		return e, fmt.Errorf("%w: stat %s: %v", ErrIO, rf.Primary, err)
	}
	if primaryInfo.Size() == 0 {
		return e, fmt.Errorf("%w: resource 0x%08X: primary data file %s is zero-size", ErrSidecarValidation, rm.ID, rf.Primary)
	}

	imports := importsByID[rm.ID]
	for _, imp := range imports {
		e.Imports = append(e.Imports, ImportEntry{ID: imp.ID, Offset: imp.Offset})
		e.ImportsHash |= imp.ID
	}
	e.ImportCount = uint16(len(e.Imports))

	primaryAlign := opts.DefaultPrimaryAlignment
	if len(rm.Alignment) > 0 && rm.Alignment[0] != 0 {
		primaryAlign = rm.Alignment[0]
	}
	primaryExp, ok := AlignExpFromValue(primaryAlign)
	if !ok {
		primaryExp, _ = AlignExpFromValue(opts.DefaultPrimaryAlignment)
	}
	primarySize := uint32(primaryInfo.Size())
	importsSize := uint32(e.ImportCount) * ImportWireSize
	e.UncompressedInfo[0] = PackUncompressedInfo(primarySize+importsSize, primaryExp)

	if rm.SecondaryMemoryType != -1 {
		if rf.Secondary == "" {
			return e, fmt.Errorf("%w: resource 0x%08X: missing secondary data file", ErrSidecarValidation, rm.ID)
		}
		secondaryInfo, err := os.Stat(rf.Secondary)
		if err != nil {
			return e, fmt.Errorf("%w: stat %s: %v", ErrIO, rf.Secondary, err)
		}
		if secondaryInfo.Size() == 0 {
			return e, fmt.Errorf("%w: resource 0x%08X: secondary data file %s is zero-size", ErrSidecarValidation, rm.ID, rf.Secondary)
		}
		secAlign := opts.DefaultSecondaryAlignment
		if len(rm.Alignment) > 1 && rm.Alignment[1] != 0 {
			secAlign = rm.Alignment[1]
		}
		secExp, ok := AlignExpFromValue(secAlign)
		if !ok {
			secExp, _ = AlignExpFromValue(opts.DefaultSecondaryAlignment)
		}
		e.UncompressedInfo[rm.SecondaryMemoryType] = PackUncompressedInfo(uint32(secondaryInfo.Size()), secExp)
	}

	if e.ImportCount > 0 {
		e.ImportsOffset = primarySize
	}

	return e, nil
}

// packResourcePlane appends one resource's plane payload (with, for
// plane 0, its imports sub-table) to buf, compressing it if the bundle
// is flagged compressed, and records the resulting compressedSize and
// planeLocalOffset on the entry.
func packResourcePlane(bundle *Bundle, e *ResourceEntry, plane int, files map[uint64]ResourceFiles, buf *bytes.Buffer) error {
	if SizeOf(e.UncompressedInfo[plane]) == 0 {
		return nil
	}

	align := uint32(0x10)
	if plane != 0 {
		align = PlaneAlignment
	}
	padToAlignment(buf, align)

	rf := files[e.ID]
	path := rf.Primary
	if plane != 0 {
		path = rf.Secondary
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrIO, path, err)
	}

	if plane == 0 && e.ImportCount > 0 {
		s := NewWriterStream(bundle.Platform)
		for _, imp := range e.Imports {
			s.WriteU64(imp.ID)
			s.WriteU32(imp.Offset)
			s.WriteU32(0)
		}
		data = append(data, s.Bytes()...)
	}

	payload := data
	if bundle.Flags.Has(FlagIsCompressed) {
		compressed, err := Compress(data)
		if err != nil {
			return fmt.Errorf("%w: resource 0x%08X plane %d: %v", ErrCompression, e.ID, plane, err)
		}
		payload = compressed
	}

	e.PlaneLocalOffset[plane] = uint32(buf.Len())
	e.CompressedSize[plane] = uint32(len(payload))
	buf.Write(payload)
	return nil
}

// padToAlignment pads buf so its own length is a multiple of align,
// used for the buffer-relative per-resource plane alignment (spec.md
// §4.6 step 4).
func padToAlignment(buf *bytes.Buffer, align uint32) {
	if align == 0 {
		return
	}
	rem := uint32(buf.Len()) % align
	if rem != 0 {
		buf.Write(make([]byte, align-rem))
	}
}

// padToAbsoluteAlignment pads buf so base+len(buf) lands on an align
// boundary, used for the cross-plane padding inserted between the end
// of one plane and the start of the next (spec.md §3 "planes are
// 0x80-aligned").
func padToAbsoluteAlignment(buf *bytes.Buffer, base, align uint32) {
	if align == 0 {
		return
	}
	rem := (base + uint32(buf.Len())) % align
	if rem != 0 {
		buf.Write(make([]byte, align-rem))
	}
}

func outputBundle(bundle *Bundle, debugData []byte, planeData *[3]bytes.Buffer) ([]byte, error) {
	s := NewWriterStream(bundle.Platform)

	s.WriteMagic(Magic)
	s.WriteU32(Version)
	s.WriteU32(uint32(bundle.Platform))
	s.WriteU32(bundle.DebugDataOffset)
	s.WriteU32(uint32(len(bundle.Entries)))
	s.WriteU32(bundle.ResourceEntriesOffset)
	for i := 0; i < 3; i++ {
		s.WriteU32(bundle.PlaneOffset[i])
	}
	s.WriteU32(uint32(bundle.Flags))

	if bundle.Flags.Has(FlagContainsDebugData) {
		s.Seek(int(bundle.DebugDataOffset))
		s.WriteString(string(debugData))
		s.WriteU8(0)
	}

	s.Seek(int(bundle.ResourceEntriesOffset))
	for _, e := range bundle.Entries {
		s.WriteU64(e.ID)
		s.WriteU64(e.ImportsHash)
		for i := 0; i < 3; i++ {
			s.WriteU32(e.UncompressedInfo[i])
		}
		for i := 0; i < 3; i++ {
			s.WriteU32(e.CompressedSize[i])
		}
		for i := 0; i < 3; i++ {
			s.WriteU32(e.PlaneLocalOffset[i])
		}
		s.WriteU32(e.ImportsOffset)
		s.WriteU32(e.Type)
		s.WriteU16(e.ImportCount)
		s.WriteU8(e.EntryFlags)
		s.WriteU8(e.StreamIndex)
	}

	s.Seek(int(bundle.PlaneOffset[0]))
	s.WriteBytes(planeData[0].Bytes())
	s.Seek(int(bundle.PlaneOffset[1]))
	s.WriteBytes(planeData[1].Bytes())
	s.Seek(int(bundle.PlaneOffset[2]))
	s.WriteBytes(planeData[2].Bytes())

	return s.Bytes(), nil
}
