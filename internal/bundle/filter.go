package bundle

import "strings"

// ExcludeFunc decides which entries of a directory stay out of a staging tree.
// It receives the directory being copied and the names it directly contains,
// and returns the subset of names to exclude; everything else is copied.
// Implementations must be pure: same inputs, same result, no side effects.
type ExcludeFunc func(dir string, names []string) []string

const (
	// testFileSuffix marks test files, which never ship in a bundle.
	testFileSuffix = "_test.go"
	// entryPointFile is the unit's invocation shim. Deployment rebuilds it,
	// so it must not ship inside the bundle.
	entryPointFile = "main.go"
	// commandDirName holds command-line entry points and is excluded
	// recursively, anywhere below the scanned root.
	commandDirName = "cmd"
)

// UnitExcludes filters a unit's private source root: test files, the program
// entry point and cmd directories are excluded at every directory level.
func UnitExcludes(_ string, names []string) []string {
	var excluded []string

	for _, name := range names {
		if strings.HasSuffix(name, testFileSuffix) || name == entryPointFile || name == commandDirName {
			excluded = append(excluded, name)
		}
	}

	return excluded
}

// SharedExcludes filters shared source roots, which carry no unit-specific
// entry point: only test files are excluded.
func SharedExcludes(_ string, names []string) []string {
	var excluded []string

	for _, name := range names {
		if strings.HasSuffix(name, testFileSuffix) {
			excluded = append(excluded, name)
		}
	}

	return excluded
}
