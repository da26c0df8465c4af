// Package picker opens a native directory-selection dialog on the host and
// returns the chosen path. Two backends exist: the zenity command-line tool
// and the xdg-desktop-portal file chooser over the session bus.
package picker

import (
	"context"
	"errors"
	"fmt"

	"github.com/varenne/gocryptfs-webui/internal/command"
)

// Picker opens a directory-selection dialog and returns the chosen absolute
// path.
type Picker interface {
	Pick(ctx context.Context) (string, error)
}

// Dialog failure text is written for the operator; the transport surfaces
// it verbatim.
var (
	// ErrCancelled means the operator dismissed the dialog without choosing.
	ErrCancelled = errors.New("No folder selected.")

	errZenityMissing = errors.New("zenity is not installed.")
	errNotAbsolute   = errors.New("Selected path is not absolute.")
)

// NewPicker creates a Picker for the configured backend.
func NewPicker(backend string, runner command.Runner) (Picker, error) {
	switch backend {
	case "zenity":
		return NewZenityPicker(runner), nil
	case "portal":
		return NewPortalPicker()
	default:
		return nil, fmt.Errorf("unknown picker backend: %s (use 'zenity' or 'portal')", backend)
	}
}
