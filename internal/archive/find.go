package archive

import (
	"os"
	"path/filepath"
	"strings"
)

// FindCI resolves name within parent case-insensitively by scanning
// parent's entries once. Every subsequent read in the pipeline goes
// through this helper, since ODB++ archives mix case conventions
// across tools that produced them.
func FindCI(parent, name string) (string, bool) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if strings.EqualFold(entry.Name(), name) {
			return filepath.Join(parent, entry.Name()), true
		}
	}
	return "", false
}

// listDirNames returns the sorted, case-preserved names of parent's entries,
// or nil if parent cannot be read.
func listDirNames(parent string) []string {
	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
