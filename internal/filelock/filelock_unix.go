//go:build !windows

package filelock

import (
	"os"
	"syscall"
)

// flock locks are held per open file description, so two Lock calls in
// one process exclude each other as well.
func lockFile(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_EX)
}

func unlockFile(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
