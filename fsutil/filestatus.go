package fsutil

import (
	"fmt"
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// FileType is the file type part of a mode, i.e. the S_IFMT bits.
type FileType uint32

const (
	TypeSocket          FileType = unix.S_IFSOCK
	TypeSymbolicLink    FileType = unix.S_IFLNK
	TypeRegularFile     FileType = unix.S_IFREG
	TypeBlockDevice     FileType = unix.S_IFBLK
	TypeDirectory       FileType = unix.S_IFDIR
	TypeCharacterDevice FileType = unix.S_IFCHR
	TypeFIFO            FileType = unix.S_IFIFO
)

// FileTypeFromMode extracts the file type from a raw st_mode.
func FileTypeFromMode(mode uint32) (FileType, error) {
	t := FileType(mode & unix.S_IFMT)
	switch t {
	case TypeSocket, TypeSymbolicLink, TypeRegularFile, TypeBlockDevice,
		TypeDirectory, TypeCharacterDevice, TypeFIFO:
		return t, nil
	}
	return 0, fmt.Errorf("fsutil: no file type in mode %#o", mode)
}

func (t FileType) String() string {
	switch t {
	case TypeSocket:
		return "socket"
	case TypeSymbolicLink:
		return "symbolic link"
	case TypeRegularFile:
		return "regular file"
	case TypeBlockDevice:
		return "block device"
	case TypeDirectory:
		return "directory"
	case TypeCharacterDevice:
		return "character device"
	case TypeFIFO:
		return "FIFO"
	default:
		return fmt.Sprintf("unknown file type %#o", uint32(t))
	}
}

// Permissions is the set of UNIX permission bits of a file, the 0777 part of
// the mode. The set-user-ID, set-group-ID and sticky bits are not
// represented.
type Permissions uint32

// PermissionsFromMode extracts the permission bits from a raw st_mode. Bits
// outside 0777 are stripped.
func PermissionsFromMode(mode uint32) Permissions {
	return Permissions(mode & 0o777)
}

// Has reports whether every bit in bits is set.
func (p Permissions) Has(bits Permissions) bool { return p&bits == bits }

// With returns p with bits added.
func (p Permissions) With(bits Permissions) Permissions { return p | bits }

// Without returns p with bits removed.
func (p Permissions) Without(bits Permissions) Permissions { return p &^ bits }

// FileMode returns the equivalent fs.FileMode permission bits.
func (p Permissions) FileMode() fs.FileMode { return fs.FileMode(p & 0o777) }

func (p Permissions) String() string { return fmt.Sprintf("%04o", uint32(p)) }

// FileStatus is the result of a stat/lstat: the POSIX metadata of one file.
type FileStatus struct {
	stat unix.Stat_t
}

// Stat returns the status of the file path resolves to, following symlinks.
func Stat(path string) (*FileStatus, error) {
	var st FileStatus
	if err := unix.Stat(path, &st.stat); err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &st, nil
}

// Lstat is Stat without following a final symlink.
func Lstat(path string) (*FileStatus, error) {
	var st FileStatus
	if err := unix.Lstat(path, &st.stat); err != nil {
		return nil, fmt.Errorf("lstat %s: %w", path, err)
	}
	return &st, nil
}

// Mode returns the raw st_mode: file type and permission bits.
func (s *FileStatus) Mode() uint32 { return uint32(s.stat.Mode) }

// Type returns the file type.
func (s *FileStatus) Type() FileType {
	t, err := FileTypeFromMode(s.Mode())
	if err != nil {
		// A stat that succeeded always carries a valid type.
		panic(err)
	}
	return t
}

// Permissions returns the permission bits.
func (s *FileStatus) Permissions() Permissions { return PermissionsFromMode(s.Mode()) }

func (s *FileStatus) IsDirectory() bool    { return s.Type() == TypeDirectory }
func (s *FileStatus) IsRegularFile() bool  { return s.Type() == TypeRegularFile }
func (s *FileStatus) IsSymbolicLink() bool { return s.Type() == TypeSymbolicLink }

// UID returns the owning user id.
func (s *FileStatus) UID() uint32 { return s.stat.Uid }

// GID returns the owning group id.
func (s *FileStatus) GID() uint32 { return s.stat.Gid }

// Size returns the file size in bytes.
func (s *FileStatus) Size() int64 { return s.stat.Size }

// NLink returns the number of hard links.
func (s *FileStatus) NLink() uint64 { return uint64(s.stat.Nlink) }

// Inode returns the inode number.
func (s *FileStatus) Inode() uint64 { return s.stat.Ino }

// ModTime returns the last modification time.
func (s *FileStatus) ModTime() time.Time {
	sec, nsec := s.stat.Mtim.Unix()
	return time.Unix(sec, nsec)
}
