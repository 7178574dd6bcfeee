package fsutil

import (
	"fmt"
	"os/user"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// Chmod sets the permission bits of path. The set-user-ID, set-group-ID and
// sticky bits are cleared, since Permissions cannot represent them.
func Chmod(path string, perms Permissions) error {
	if err := unix.Chmod(path, uint32(perms)); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

// Chown sets the owning user and group of path, following symlinks. Pass -1
// to leave an id unchanged.
func Chown(path string, uid, gid int) error {
	if err := unix.Chown(path, uid, gid); err != nil {
		return fmt.Errorf("chown %s: %w", path, err)
	}
	return nil
}

// Lchown is Chown without following a final symlink.
func Lchown(path string, uid, gid int) error {
	if err := unix.Lchown(path, uid, gid); err != nil {
		return fmt.Errorf("lchown %s: %w", path, err)
	}
	return nil
}

// ChownUser sets the owning user of path by name, leaving the group
// unchanged.
func ChownUser(path, username string) error {
	u, err := user.Lookup(username)
	if err != nil {
		return fmt.Errorf("chown %s: %w", path, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fmt.Errorf("chown %s: user %s has non-numeric uid %q", path, username, u.Uid)
	}
	return Chown(path, uid, -1)
}

// ChownGroup sets the owning group of path by name, leaving the user
// unchanged.
func ChownGroup(path, group string) error {
	g, err := user.LookupGroup(group)
	if err != nil {
		return fmt.Errorf("chown %s: %w", path, err)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return fmt.Errorf("chown %s: group %s has non-numeric gid %q", path, group, g.Gid)
	}
	return Chown(path, -1, gid)
}

// SetModTime sets the last modification time of path, leaving the access
// time unchanged.
func SetModTime(path string, mtime time.Time) error {
	times := []unix.Timespec{
		{Nsec: unix.UTIME_OMIT},
		unix.NsecToTimespec(mtime.UnixNano()),
	}
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, path, times, 0); err != nil {
		return fmt.Errorf("utimes %s: %w", path, err)
	}
	return nil
}
