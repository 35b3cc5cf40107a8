package guid

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// GUID is the 64-bit content address of an asset. It is derived from the
// asset's path relative to the content root, package name included (for
// example "default/island.pf").
type GUID uint64

// Null means "no asset" or "not persisted yet".
const Null GUID = 0

// Identify hashes a package-relative path. The result is persisted inside
// other assets, so it must never change for a given path.
//
// Two different paths can collide. Nothing detects this: the later path
// silently resolves to whatever the earlier one mapped to.
func Identify(value string) GUID {
	return GUID(xxhash.Sum64String(Clean(value)))
}

// Clean returns the canonical form of a package-relative path, with forward
// slashes and "." and ".." elements resolved. Identify hashes this form;
// paths stored next to identifiers must be in it too.
func Clean(value string) string {
	if value == "" {
		return ""
	}
	return path.Clean(strings.ReplaceAll(value, "\\", "/"))
}

func (g GUID) IsNull() bool {
	return g == Null
}

func (g GUID) String() string {
	return fmt.Sprintf("%016x", uint64(g))
}

// Parse reads a GUID in the format produced by String.
func Parse(value string) (GUID, error) {
	parsed, err := strconv.ParseUint(strings.TrimPrefix(value, "0x"), 16, 64)
	if err != nil {
		return Null, fmt.Errorf("invalid guid %q: %w", value, err)
	}
	return GUID(parsed), nil
}
