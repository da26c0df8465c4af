package validation

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

// idleTimeoutPattern matches gocryptfs duration strings: one or more
// number+unit groups with no separator, e.g. "30m", "2h45m", "1.5h".
// See: https://github.com/rfjakob/gocryptfs (the -idle flag)
var idleTimeoutPattern = regexp.MustCompile(`^\d+(?:\.\d+)?[smhd](?:\d+(?:\.\d+)?[smhd])*$`)

var (
	// ErrEmptyPath is returned for empty or whitespace-only paths.
	ErrEmptyPath = errors.New("path is empty")
	// ErrRelativePath is returned for paths that are not absolute.
	ErrRelativePath = errors.New("path is not absolute")
	// ErrPathNulByte is returned for paths containing an embedded NUL byte.
	ErrPathNulByte = errors.New("path contains a null byte")
)

// AbsolutePath validates that raw is a usable absolute filesystem path and
// returns it with surrounding whitespace trimmed. It never touches the
// filesystem; existence checks belong to the caller.
func AbsolutePath(raw string) (string, error) {
	path := strings.TrimSpace(raw)

	if path == "" {
		return "", ErrEmptyPath
	}

	if strings.ContainsRune(path, 0) {
		return "", ErrPathNulByte
	}

	if !filepath.IsAbs(path) {
		return "", ErrRelativePath
	}

	return path, nil
}

// ValidIdleTimeout reports whether value is a well-formed idle-timeout
// duration: the literal "0" or concatenated number+unit groups where the
// unit is one of s, m, h, d and the number may be an integer or decimal.
func ValidIdleTimeout(value string) bool {
	if value == "0" {
		return true
	}

	return idleTimeoutPattern.MatchString(value)
}
