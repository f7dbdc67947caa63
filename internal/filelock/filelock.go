// Package filelock provides advisory file locking so several taskdeck
// processes can mutate one board directory without clobbering each other.
package filelock

import "os"

const lockFileMode = 0o600

// Lock acquires an exclusive advisory lock on path, creating the file if
// needed, and blocks until the lock is free. The returned function releases
// the lock and closes the file.
func Lock(path string) (unlock func() error, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file inside the board dir
	if err != nil {
		return nil, err
	}

	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, err
	}

	return func() error {
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}
