//go:build unix

package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// dirKey identifies a directory by device and inode so that a symlink loop
// is seen as a revisit. Filesystems without inode data fall back to the path.
func dirKey(path string, info os.FileInfo) string {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return fmt.Sprintf("%d:%d", st.Dev, st.Ino)
	}
	return filepath.Clean(path)
}
