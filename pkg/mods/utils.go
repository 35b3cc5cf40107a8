package mods

import (
	"os"
	"strings"

	"github.com/cfoust/modstore/pkg/guid"
)

func FileExists(path string) bool {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return true
	}
	return false
}

// modName returns the first segment of a package-relative path, which names
// the mod that owns it.
func modName(value string) string {
	value = guid.Clean(value)
	if index := strings.Index(value, "/"); index != -1 {
		return value[:index]
	}
	return value
}
