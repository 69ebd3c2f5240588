//go:build !unix

package scanner

import (
	"os"
	"path/filepath"
)

func dirKey(path string, _ os.FileInfo) string {
	return filepath.Clean(path)
}
