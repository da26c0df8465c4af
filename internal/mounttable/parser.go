package mounttable

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Mount-point column positions in the two kernel table formats.
const (
	mountinfoTargetField = 4 // 5th column of /proc/self/mountinfo
	mountsTargetField    = 1 // 2nd column of /proc/mounts
)

// hasMountPoint reports whether the mount table in r lists target as a mount
// point in the given column. target must already be canonicalized. Short
// lines are ignored; a scan error leaves the source inconclusive, same as no
// match.
func hasMountPoint(r io.Reader, field int, target string) bool {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) <= field {
			continue
		}

		if canonical(unescapeField(fields[field])) == target {
			return true
		}
	}

	return false
}

// unescapeField decodes the \ooo escapes kernel mount tables use for special
// bytes in paths: \040 for space, \011 for tab, \012 for newline, \134 for
// the backslash itself. Escapes that are not three octal digits, or that
// encode a value above 0xFF, are kept literally.
func unescapeField(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}

	return b.String()
}
