package main

import "github.com/burninrubber0/bndtool/internal/bnd2"

// exitCodeFor maps a command error to the process exit code spec.md
// §6.3 requires. Errors that never reached internal/bnd2 (cobra's own
// flag-parsing failures) fall back to 1, the same as ErrArgument.
func exitCodeFor(err error) int {
	return bnd2.ExitCode(err)
}
