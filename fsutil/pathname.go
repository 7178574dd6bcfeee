// Package fsutil provides UNIX pathname normalization and thin wrappers
// around POSIX file status and attribute calls. Everything here is a plain
// synchronous call with no concurrency contract of its own.
package fsutil

import "strings"

// Normalize returns the normalized form of pathname:
//
//  1. Runs of '/' collapse to one '/'.
//  2. "." components are removed.
//  3. ".." components in the root directory are removed.
//  4. Trailing '/' after the last component are removed.
//
// The normalized pathname is guaranteed to resolve to the same file. ".."
// components elsewhere are kept, because a preceding component may be a
// symbolic link. An empty pathname is a usage error and panics.
func Normalize(pathname string) string {
	return normalize(pathname, true)
}

// NormalizeNoSymlinks is Normalize for pathnames the caller asserts contain
// no symbolic links, which additionally collapses every "name/.." pair.
func NormalizeNoSymlinks(pathname string) string {
	return normalize(pathname, false)
}

func normalize(pathname string, symlinks bool) string {
	if pathname == "" {
		panic("fsutil: pathname cannot be empty")
	}

	abs := pathname[0] == '/'

	var comps []string
	for _, c := range strings.Split(pathname, "/") {
		switch c {
		case "", ".":
		case "..":
			switch {
			case abs && len(comps) == 0:
				// ".." in the root directory resolves to the root.
			case symlinks:
				comps = append(comps, "..")
			case len(comps) > 0 && comps[len(comps)-1] != "..":
				comps = comps[:len(comps)-1]
			default:
				comps = append(comps, "..")
			}
		default:
			comps = append(comps, c)
		}
	}

	if len(comps) == 0 {
		if abs {
			return "/"
		}
		return "."
	}
	if abs {
		return "/" + strings.Join(comps, "/")
	}
	return strings.Join(comps, "/")
}

// A PathBuilder incrementally constructs a normalized pathname. The builder
// either treats components as possibly-symlinked (the default, in which case
// ".." is preserved textually) or asserts the path is symlink-free (in which
// case Parent strips the last component).
type PathBuilder struct {
	symlinks bool
	path     string
}

// NewPathBuilder returns a builder initialized to the normalized form of
// pathname. If symlinks is false, "name/.." pairs collapse during
// normalization and Parent.
func NewPathBuilder(pathname string, symlinks bool) *PathBuilder {
	return &PathBuilder{symlinks: symlinks, path: normalize(pathname, symlinks)}
}

// RootBuilder returns a builder positioned at "/".
func RootBuilder(symlinks bool) *PathBuilder {
	return &PathBuilder{symlinks: symlinks, path: "/"}
}

// WorkingBuilder returns a builder positioned at ".".
func WorkingBuilder(symlinks bool) *PathBuilder {
	return &PathBuilder{symlinks: symlinks, path: "."}
}

// Set replaces the builder's pathname.
func (b *PathBuilder) Set(pathname string) *PathBuilder {
	b.path = normalize(pathname, b.symlinks)
	return b
}

// Parent moves the builder to the parent directory. The parent of "/" is
// "/", and the parent of "." is "..".
func (b *PathBuilder) Parent() *PathBuilder {
	if b.symlinks {
		// The last component may be a symlink resolving anywhere, so ".."
		// cannot be resolved textually.
		switch b.path {
		case "/":
		case ".":
			b.path = ".."
		default:
			b.path += "/.."
		}
		return b
	}

	switch {
	case b.path == "/":
	case b.path == ".":
		b.path = ".."
	case b.path == ".." || strings.HasSuffix(b.path, "/.."):
		b.path += "/.."
	default:
		switch i := strings.LastIndexByte(b.path, '/'); i {
		case -1:
			b.path = "."
		case 0:
			b.path = "/"
		default:
			b.path = b.path[:i]
		}
	}
	return b
}

// Cd descends into relative, which must be a non-empty relative pathname.
func (b *PathBuilder) Cd(relative string) *PathBuilder {
	if relative == "" {
		panic("fsutil: relative pathname cannot be empty")
	}
	if relative[0] == '/' {
		panic("fsutil: pathname is absolute: " + relative)
	}

	for _, c := range strings.Split(relative, "/") {
		switch c {
		case "", ".":
		case "..":
			b.Parent()
		default:
			switch b.path {
			case ".":
				b.path = c
			case "/":
				b.path = "/" + c
			default:
				b.path = b.path + "/" + c
			}
		}
	}
	return b
}

// String returns the normalized pathname built so far.
func (b *PathBuilder) String() string {
	return b.path
}
