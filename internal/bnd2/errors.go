package bnd2

import "errors"

// Sentinel error kinds. Each corresponds to one of the exit codes in
// spec.md §6.3/§7. Wrap these with fmt.Errorf("...: %w", ErrXxx) so
// callers can classify a failure with errors.Is while still getting a
// descriptive message.
var (
	// ErrArgument covers missing/mistyped/conflicting CLI flags and
	// unopenable paths. Exit code 1.
	ErrArgument = errors.New("argument error")

	// ErrBundleFormat covers magic mismatch, unsupported version, or an
	// unrecognised platform word. Exit code 2.
	ErrBundleFormat = errors.New("bundle format error")

	// ErrEntryValidation covers any fatal condition from the bundle-side
	// validator (spec.md §4.3). Exit code 3.
	ErrEntryValidation = errors.New("entry validation error")

	// ErrSidecarValidation covers any fatal condition from the
	// sidecar-side validator (spec.md §4.4). Exit code 1.
	ErrSidecarValidation = errors.New("sidecar validation error")

	// ErrDecompression is non-fatal during extract: the caller should
	// log it and skip the offending plane.
	ErrDecompression = errors.New("decompression error")

	// ErrCompression is fatal during create: a corrupt compressed
	// payload must never reach disk.
	ErrCompression = errors.New("compression error")

	// ErrIO covers filesystem failures reading input or writing output.
	// Always fatal. Exit code 1.
	ErrIO = errors.New("i/o error")
)

// ExitCode maps an error produced by this package to the process exit
// code spec.md §6.3 requires. Unrecognised errors (including plain
// I/O errors, which are always fatal but don't have a dedicated exit
// code of their own) fall back to 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrBundleFormat):
		return 2
	case errors.Is(err, ErrEntryValidation):
		return 3
	default:
		return 1
	}
}
