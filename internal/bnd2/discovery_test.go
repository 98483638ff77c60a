package bnd2

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverResourceFilesMatchesAllKinds(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, filepath.Join(dir, "00000001_primary.dat"), "primary1")
	writeTempFile(t, filepath.Join(dir, "00000001_secondary.dat"), "secondary1")
	writeTempFile(t, filepath.Join(dir, "00000001_imports.yaml"), "[]")
	writeTempFile(t, filepath.Join(dir, "00000002.dat"), "primary2")

	files, err := DiscoverResourceFiles(dir, []uint64{1, 2})
	if err != nil {
		t.Fatalf("DiscoverResourceFiles: %v", err)
	}

	rf1 := files[1]
	if rf1.Primary == "" || rf1.Secondary == "" || rf1.ImportsYAML == "" {
		t.Errorf("resource 1 files incomplete: %+v", rf1)
	}

	rf2 := files[2]
	if rf2.Primary == "" || rf2.Secondary != "" || rf2.ImportsYAML != "" {
		t.Errorf("resource 2 files wrong: %+v", rf2)
	}
}

func TestDiscoverResourceFilesMissingPrimaryFails(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, filepath.Join(dir, "00000001_secondary.dat"), "secondary1")

	_, err := DiscoverResourceFiles(dir, []uint64{1})
	if !errors.Is(err, ErrSidecarValidation) {
		t.Errorf("missing primary: err = %v, want ErrSidecarValidation", err)
	}
}

func TestDiscoverResourceFilesDuplicatePrimaryFails(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, filepath.Join(dir, "00000001.dat"), "a")
	writeTempFile(t, filepath.Join(dir, "00000001_primary.dat"), "b")

	_, err := DiscoverResourceFiles(dir, []uint64{1})
	if !errors.Is(err, ErrSidecarValidation) {
		t.Errorf("duplicate primary: err = %v, want ErrSidecarValidation", err)
	}
}

func TestDiscoverResourceFilesIgnoresUnrequestedIDs(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, filepath.Join(dir, "00000001.dat"), "a")
	writeTempFile(t, filepath.Join(dir, "000000FF.dat"), "unrequested")

	files, err := DiscoverResourceFiles(dir, []uint64{1})
	if err != nil {
		t.Fatalf("DiscoverResourceFiles: %v", err)
	}
	if _, ok := files[0xFF]; ok {
		t.Error("unrequested id 0xFF present in result")
	}
}

func writeTempFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}
