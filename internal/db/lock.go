package db

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process already owns the database.
var ErrLocked = errors.New("local database is in use by another process")

// AcquireWriterLock takes an exclusive advisory lock next to the database
// file. The local snapshot has a single writer per machine; release the lock
// with Unlock when the process is done.
func AcquireWriterLock(dbPath string) (*flock.Flock, error) {
	lock := flock.New(dbPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return lock, nil
}
