package bnd2

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// ExtractOptions controls how Extract lays out its output.
type ExtractOptions struct {
	// NoSort disables sorting extracted resources into per-type
	// subdirectories.
	NoSort bool
	// CombineImports writes every resource's import list into a single
	// bundle-wide imports file instead of one file per resource.
	CombineImports bool
}

// Sidecar filenames, matching the reference tool's own dot-prefixed
// constants (yap.h metadataFilename/importsFilename/debugDataFilename)
// so extract output round-trips through create unmodified.
const (
	MetadataFilename  = ".meta.yaml"
	ImportsFilename   = ".imports.yaml"
	DebugDataFilename = ".debug.xml"
)

// ExtractStats summarizes a completed extraction for CLI reporting.
type ExtractStats struct {
	ResourcesExtracted int
	PlanesWritten      int
	PlanesSkipped      int // decompression failures, logged and skipped
	BytesWritten       int64
}

// Extract decompresses and writes out every resource plane in bundle,
// plus its metadata and (if present) debug data sidecars, under
// outDir. Decompression failures on an individual plane are logged as
// warnings and that plane is skipped (spec.md §7 DecompressionError);
// every other error is fatal and aborts the extraction.
func Extract(bundle *Bundle, outDir string, opts ExtractOptions, progress func(done, total int)) (*ExtractStats, error) {
	stats := &ExtractStats{}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating output directory: %v", ErrIO, err)
	}

	for i := range bundle.Entries {
		e := &bundle.Entries[i]
		if err := extractResource(bundle, e, outDir, opts, stats); err != nil {
			return nil, err
		}
		if progress != nil {
			progress(i+1, len(bundle.Entries))
		}
	}

	if opts.CombineImports {
		data, err := EncodeCombinedImports(bundle)
		if err != nil {
			return nil, err
		}
		if len(data) > 0 {
			if err := writeFile(filepath.Join(outDir, ImportsFilename), data, stats); err != nil {
				return nil, err
			}
		}
	}

	if bundle.Flags.Has(FlagContainsDebugData) && len(bundle.DebugData) > 0 {
		if err := writeFile(filepath.Join(outDir, DebugDataFilename), bundle.DebugData, stats); err != nil {
			return nil, err
		}
	}

	metaData, err := EncodeMetadata(bundle)
	if err != nil {
		return nil, err
	}
	if err := writeFile(filepath.Join(outDir, MetadataFilename), metaData, stats); err != nil {
		return nil, err
	}

	return stats, nil
}

func extractResource(bundle *Bundle, e *ResourceEntry, outDir string, opts ExtractOptions, stats *ExtractStats) error {
	for plane := 0; plane < 3; plane++ {
		if !e.HasPlane(plane) {
			continue
		}

		raw, err := readPlaneBytes(bundle, e, plane)
		if err != nil {
			return err
		}

		uncompressedSize := SizeOf(e.UncompressedInfo[plane])
		var payload []byte
		if bundle.Flags.Has(FlagIsCompressed) {
			payload, err = Decompress(raw, int(uncompressedSize))
			if err != nil {
				slog.Warn("resource plane failed to decompress, skipping",
					"id", fmt.Sprintf("0x%08X", e.ID), "plane", plane, "error", err)
				stats.PlanesSkipped++
				continue
			}
		} else {
			payload = raw
		}

		if plane == 0 && e.ImportCount > 0 {
			importsLen := int(e.ImportCount) * ImportWireSize
			if importsLen > len(payload) {
				return fmt.Errorf("%w: entry 0x%08X: imports length exceeds payload size", ErrEntryValidation, e.ID)
			}
			dataLen := len(payload) - importsLen
			imports, err := parseImports(payload[dataLen:], bundle.Platform, int(e.ImportCount))
			if err != nil {
				return err
			}
			e.Imports = imports
			payload = payload[:dataLen]
		}

		e.Payload[plane] = payload
		stats.PlanesWritten++
		stats.BytesWritten += int64(len(payload))

		path := generateFilePath(bundle, e, plane, outDir, opts.NoSort)
		if err := writeFile(path+".dat", payload, nil); err != nil {
			return err
		}
	}

	if !opts.CombineImports && len(e.Imports) > 0 {
		data, err := EncodeImports(e.Imports)
		if err != nil {
			return err
		}
		path := generateFilePath(bundle, e, 0, outDir, opts.NoSort) + "_imports.yaml"
		if err := writeFile(trimPrimarySuffix(path), data, nil); err != nil {
			return err
		}
	}

	stats.ResourcesExtracted++
	return nil
}

func readPlaneBytes(bundle *Bundle, e *ResourceEntry, plane int) ([]byte, error) {
	start := int(bundle.PlaneOffset[plane]) + int(e.PlaneLocalOffset[plane])
	end := start + int(e.CompressedSize[plane])
	if end > len(bundle.raw) {
		return nil, fmt.Errorf("%w: entry 0x%08X plane %d: data extends past end of buffer", ErrBundleFormat, e.ID, plane)
	}
	return bundle.raw[start:end], nil
}

func parseImports(data []byte, platform Platform, count int) ([]ImportEntry, error) {
	s := NewByteStream(data, platform)
	out := make([]ImportEntry, count)
	for i := 0; i < count; i++ {
		id, err := s.ReadU64()
		if err != nil {
			return nil, fmt.Errorf("%w: reading import %d: %v", ErrBundleFormat, i, err)
		}
		offset, err := s.ReadU32()
		if err != nil {
			return nil, fmt.Errorf("%w: reading import %d: %v", ErrBundleFormat, i, err)
		}
		s.Pad(4) // reserved
		out[i] = ImportEntry{ID: id, Offset: offset}
	}
	return out, nil
}

// generateFilePath returns the output path, without extension, for one
// plane of a resource: its hex id, with "_primary"/"_secondary" suffix
// when the resource has both portions, optionally sorted into a
// per-type subdirectory.
func generateFilePath(bundle *Bundle, e *ResourceEntry, plane int, outDir string, noSort bool) string {
	name := fmt.Sprintf("%08X", e.ID)
	hasSecondary := e.CompressedSize[1] != 0 || e.CompressedSize[2] != 0
	if plane == 0 && hasSecondary {
		name += "_primary"
	} else if plane > 0 {
		name += "_secondary"
	}

	dir := outDir
	if !noSort {
		dir = filepath.Join(outDir, TypeName(e.Type, bundle.Platform))
		_ = os.MkdirAll(dir, 0o755)
	}
	return filepath.Join(dir, name)
}

func trimPrimarySuffix(path string) string {
	const suffix = "_primary_imports.yaml"
	if len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix {
		return path[:len(path)-len(suffix)] + "_imports.yaml"
	}
	return path
}

func writeFile(path string, data []byte, stats *ExtractStats) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrIO, path, err)
	}
	if stats != nil {
		stats.BytesWritten += int64(len(data))
	}
	return nil
}
