package picker

import (
	"context"
	"fmt"

	"github.com/varenne/gocryptfs-webui/internal/command"
	"github.com/varenne/gocryptfs-webui/internal/log"
	"github.com/varenne/gocryptfs-webui/internal/validation"
)

const zenityBinary = "zenity"

// ZenityPicker shells out to the zenity dialog tool. The dialog prints the
// chosen path on stdout and exits non-zero when dismissed.
type ZenityPicker struct {
	runner command.Runner
}

// NewZenityPicker creates a zenity-backed Picker.
func NewZenityPicker(runner command.Runner) *ZenityPicker {
	return &ZenityPicker{runner: runner}
}

// Pick opens the directory-selection dialog and blocks until the operator
// answers it.
func (p *ZenityPicker) Pick(ctx context.Context) (string, error) {
	if !p.runner.LookPath(zenityBinary) {
		return "", errZenityMissing
	}

	log.Debug("opening zenity folder dialog")

	res, err := p.runner.Run(ctx, command.Spec{
		Name: zenityBinary,
		Args: []string{"--file-selection", "--directory", "--title=Select Folder"},
	})
	if err != nil {
		return "", fmt.Errorf("run zenity: %w", err)
	}
	if res.ExitCode != 0 {
		return "", ErrCancelled
	}

	path, err := validation.AbsolutePath(res.Stdout)
	if err != nil {
		return "", errNotAbsolute
	}

	return path, nil
}
