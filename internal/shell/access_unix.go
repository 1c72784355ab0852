//go:build unix

package shell

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// isExecutable consults access(2) against the real effective-uid/gid,
// rather than just the owner-execute mode bit, so PathResolver gives the
// right answer on multi-user systems where the shell's euid differs from
// the file's owner.
func isExecutable(path string, info fs.FileInfo) bool {
	if info.Mode()&0111 == 0 {
		return false
	}
	return unix.Access(path, unix.X_OK) == nil
}
