package bnd2

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeResourceFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

// buildFixture packs a two-resource bundle for platform: resource
// 0x00000001 has a primary portion only plus two imports, resource
// 0x00000002 has both a primary and a secondary portion. It returns the
// serialized bundle bytes alongside the raw file contents so callers can
// assert extracted payloads round-trip byte for byte.
func buildFixture(t *testing.T, platform Platform) (out []byte, primaryA, primaryB, secondaryB []byte) {
	t.Helper()
	dir := t.TempDir()

	primaryA = bytes.Repeat([]byte("resource-A-primary-data"), 8)
	primaryB = bytes.Repeat([]byte("resource-B-primary-data"), 8)
	secondaryB = bytes.Repeat([]byte("resource-B-secondary-data"), 8)

	pathA := filepath.Join(dir, "a_primary.dat")
	pathBPrimary := filepath.Join(dir, "b_primary.dat")
	pathBSecondary := filepath.Join(dir, "b_secondary.dat")
	writeResourceFile(t, pathA, string(primaryA))
	writeResourceFile(t, pathBPrimary, string(primaryB))
	writeResourceFile(t, pathBSecondary, string(secondaryB))

	files := map[uint64]ResourceFiles{
		1: {Primary: pathA},
		2: {Primary: pathBPrimary, Secondary: pathBSecondary},
	}

	importsByID := map[uint64][]ImportRecord{
		1: {{Offset: 0x0, ID: 2}, {Offset: 0x8, ID: 2}},
	}

	meta := &Metadata{
		Bundle: BundleMetadata{Platform: platform},
		Resources: []ResourceMetadata{
			{ID: 1, Type: 0x0, SecondaryMemoryType: -1},
			{ID: 2, Type: 0x0, SecondaryMemoryType: 1, Alignment: []uint32{0x10, 0x80}},
		},
	}

	out, bundle, stats, err := Create(meta, files, importsByID, nil, CreateOptions{}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if stats.ResourcesPacked != 2 {
		t.Errorf("ResourcesPacked = %d, want 2", stats.ResourcesPacked)
	}
	if bundle.Platform != platform {
		t.Errorf("bundle.Platform = %v, want %v", bundle.Platform, platform)
	}
	return out, primaryA, primaryB, secondaryB
}

func TestCreateReadExtractRoundTripPC(t *testing.T) {
	out, primaryA, primaryB, secondaryB := buildFixture(t, PlatformPC)
	assertRoundTrip(t, out, PlatformPC, primaryA, primaryB, secondaryB)
}

func TestCreateReadExtractRoundTripX360(t *testing.T) {
	out, primaryA, primaryB, secondaryB := buildFixture(t, PlatformX360)
	assertRoundTrip(t, out, PlatformX360, primaryA, primaryB, secondaryB)

	// The version field at offset 0x04 must be big-endian on X360: the
	// magic itself (offset 0x00) is never byte-swapped either way.
	if !bytes.Equal(out[0:4], []byte("bnd2")) {
		t.Errorf("magic bytes = %q, want %q", out[0:4], "bnd2")
	}
	wantVersion := []byte{0x00, 0x00, 0x00, 0x02}
	if !bytes.Equal(out[4:8], wantVersion) {
		t.Errorf("version field = % X, want % X (big-endian 2)", out[4:8], wantVersion)
	}
}

func assertRoundTrip(t *testing.T, out []byte, platform Platform, primaryA, primaryB, secondaryB []byte) {
	t.Helper()

	bundle, err := ReadBundle(out)
	if err != nil {
		t.Fatalf("ReadBundle: %v", err)
	}
	if bundle.Platform != platform {
		t.Fatalf("ReadBundle: Platform = %v, want %v", bundle.Platform, platform)
	}
	if len(bundle.Entries) != 2 {
		t.Fatalf("ReadBundle: len(Entries) = %d, want 2", len(bundle.Entries))
	}

	outDir := t.TempDir()
	stats, err := Extract(bundle, outDir, ExtractOptions{NoSort: true}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if stats.ResourcesExtracted != 2 {
		t.Errorf("ResourcesExtracted = %d, want 2", stats.ResourcesExtracted)
	}
	if stats.PlanesSkipped != 0 {
		t.Errorf("PlanesSkipped = %d, want 0", stats.PlanesSkipped)
	}

	gotA := readExtractedFile(t, filepath.Join(outDir, "00000001.dat"))
	if !bytes.Equal(gotA, primaryA) {
		t.Errorf("extracted resource 1 primary payload mismatch")
	}

	gotBPrimary := readExtractedFile(t, filepath.Join(outDir, "00000002_primary.dat"))
	if !bytes.Equal(gotBPrimary, primaryB) {
		t.Errorf("extracted resource 2 primary payload mismatch")
	}

	gotBSecondary := readExtractedFile(t, filepath.Join(outDir, "00000002_secondary.dat"))
	if !bytes.Equal(gotBSecondary, secondaryB) {
		t.Errorf("extracted resource 2 secondary payload mismatch")
	}

	importsData := readExtractedFile(t, filepath.Join(outDir, "00000001_imports.yaml"))
	records, err := DecodeImports(importsData)
	if err != nil {
		t.Fatalf("DecodeImports: %v", err)
	}
	if len(records) != 2 || records[0].ID != 2 || records[1].ID != 2 {
		t.Errorf("resource 1 imports round trip = %+v, want two records pointing at id 2", records)
	}

	meta := readExtractedFile(t, filepath.Join(outDir, MetadataFilename))
	if len(meta) == 0 {
		t.Error("metadata sidecar is empty")
	}
}

func readExtractedFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	return data
}

func TestCreateRejectsZeroSizePrimaryFile(t *testing.T) {
	dir := t.TempDir()
	emptyPath := filepath.Join(dir, "empty.dat")
	writeResourceFile(t, emptyPath, "")

	meta := &Metadata{
		Bundle:    BundleMetadata{Platform: PlatformPC},
		Resources: []ResourceMetadata{{ID: 1, Type: 0x0, SecondaryMemoryType: -1}},
	}
	files := map[uint64]ResourceFiles{1: {Primary: emptyPath}}

	if _, _, _, err := Create(meta, files, nil, nil, CreateOptions{}, nil); !errors.Is(err, ErrSidecarValidation) {
		t.Errorf("Create with zero-size primary: err = %v, want ErrSidecarValidation", err)
	}
}

func TestCreateRejectsZeroSizeSecondaryFile(t *testing.T) {
	dir := t.TempDir()
	primaryPath := filepath.Join(dir, "primary.dat")
	secondaryPath := filepath.Join(dir, "secondary.dat")
	writeResourceFile(t, primaryPath, "primary data")
	writeResourceFile(t, secondaryPath, "")

	meta := &Metadata{
		Bundle:    BundleMetadata{Platform: PlatformPC},
		Resources: []ResourceMetadata{{ID: 1, Type: 0x0, SecondaryMemoryType: 1}},
	}
	files := map[uint64]ResourceFiles{1: {Primary: primaryPath, Secondary: secondaryPath}}

	if _, _, _, err := Create(meta, files, nil, nil, CreateOptions{}, nil); !errors.Is(err, ErrSidecarValidation) {
		t.Errorf("Create with zero-size secondary: err = %v, want ErrSidecarValidation", err)
	}
}
