// Package internal holds tiny helpers shared across pyscout's packages.
package internal

import (
	"errors"
	"io/fs"
	"os"
)

// Exists returns true if 'path' exists, else false
func Exists(path string) bool {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false
	}
	return true
}

// DeDupe removes duplicate entries from a slice of strings,
// preserving the order of first appearance
func DeDupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		result = append(result, item)
	}
	return result
}
