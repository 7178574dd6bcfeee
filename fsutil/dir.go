package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"
)

// RemoveRecursively removes path and everything below it, returning the
// number of filesystem entries removed. A path that does not exist counts as
// zero removals and no error. Deletion keeps going past individual failures;
// the errors are aggregated so one undeletable entry does not hide the rest.
func RemoveRecursively(path string) (int, error) {
	status, err := Lstat(path)
	if err != nil {
		if isNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	if !status.IsDirectory() {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				return 0, nil
			}
			return 0, err
		}
		return 1, nil
	}

	removed, errs := removeEntries(path)

	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			errs = multierror.Append(errs, err)
		}
	} else {
		removed++
	}

	return removed, errs.ErrorOrNil()
}

// RemoveEntries removes every entry of the directory dir, recursively,
// returning the number of entries removed.
func RemoveEntries(dir string) (int, error) {
	removed, errs := removeEntries(dir)
	return removed, errs.ErrorOrNil()
}

func removeEntries(dir string) (int, *multierror.Error) {
	var errs *multierror.Error

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, multierror.Append(errs, fmt.Errorf("read dir %s: %w", dir, err))
	}

	removed := 0
	for _, entry := range entries {
		n, err := RemoveRecursively(filepath.Join(dir, entry.Name()))
		removed += n
		if err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return removed, errs
}

func isNotExist(err error) bool {
	return os.IsNotExist(err) || errors.Is(err, unix.ENOENT)
}
