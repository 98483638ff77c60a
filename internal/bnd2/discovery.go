package bnd2

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// ResourceFiles records the on-disk paths discovered for one resource
// id during a create-side directory walk.
type ResourceFiles struct {
	Primary     string // "<id>.dat" or "<id>_primary.dat"
	Secondary   string // "<id>_secondary.dat", empty if none
	ImportsYAML string // "<id>_imports.yaml", empty if none or combined
}

// DiscoverResourceFiles walks root looking for the primary, secondary,
// and per-resource imports files belonging to each id. It reports a
// SidecarValidationError for any id missing its mandatory primary
// portion, for any primary portion found more than once, or for a
// secondary file present without its primary counterpart failing to
// resolve.
//
// The walk finds files by name, not by directory structure: the
// reference layout sorts extracted resources into per-type
// subdirectories, but create accepts files anywhere under root.
func DiscoverResourceFiles(root string, ids []uint64) (map[uint64]ResourceFiles, error) {
	wanted := make(map[string]uint64, len(ids))
	for _, id := range ids {
		wanted[fmt.Sprintf("%08X", id)] = id
	}

	out := make(map[uint64]ResourceFiles, len(ids))

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()

		switch {
		case strings.HasSuffix(name, "_primary.dat"):
			return recordPrimary(out, wanted, path, name, "_primary.dat")
		case strings.HasSuffix(name, "_secondary.dat"):
			idHex := strings.ToUpper(strings.TrimSuffix(name, "_secondary.dat"))
			id, ok := wanted[idHex]
			if !ok {
				return nil
			}
			rf := out[id]
			rf.Secondary = path
			out[id] = rf
		case strings.HasSuffix(name, "_imports.yaml"):
			idHex := strings.ToUpper(strings.TrimSuffix(name, "_imports.yaml"))
			id, ok := wanted[idHex]
			if !ok {
				return nil
			}
			rf := out[id]
			rf.ImportsYAML = path
			out[id] = rf
		case strings.HasSuffix(name, ".dat"):
			return recordPrimary(out, wanted, path, name, ".dat")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking %s: %v", ErrSidecarValidation, root, err)
	}

	for idHex, id := range wanted {
		rf, ok := out[id]
		if !ok || rf.Primary == "" {
			return nil, fmt.Errorf("%w: resource 0x%s is missing its primary data portion", ErrSidecarValidation, idHex)
		}
	}
	return out, nil
}

func recordPrimary(out map[uint64]ResourceFiles, wanted map[string]uint64, path, name, suffix string) error {
	idHex := strings.ToUpper(strings.TrimSuffix(name, suffix))
	id, ok := wanted[idHex]
	if !ok {
		return nil
	}
	rf := out[id]
	if rf.Primary != "" {
		return fmt.Errorf("%w: resource 0x%s: primary portion has a duplicate file (%s and %s)",
			ErrSidecarValidation, idHex, rf.Primary, path)
	}
	rf.Primary = path
	out[id] = rf
	return nil
}
