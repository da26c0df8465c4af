// Package mounttable answers mount-point queries from the host's live mount
// state. It prefers the findmnt tool and falls back to the kernel-exposed
// mount tables, decoding the octal escapes those tables use for special
// bytes in paths.
package mounttable

import "context"

// Oracle reports whether a path is currently a mount point. Implementations
// consult live state on every call; results are never cached because other
// processes mount and unmount at will.
type Oracle interface {
	IsMounted(ctx context.Context, path string) bool
}
