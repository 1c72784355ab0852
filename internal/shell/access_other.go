//go:build !unix

package shell

import "io/fs"

// isExecutable falls back to the owner-execute mode bit on platforms
// without an x/sys/unix access(2) binding.
func isExecutable(path string, info fs.FileInfo) bool {
	return info.Mode()&0100 != 0
}
