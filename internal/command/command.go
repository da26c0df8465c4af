// Package command runs external tools synchronously and reports their
// results without interpreting them. Callers decide what an exit code or an
// output line means.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// Spec describes a single tool invocation: the argument vector plus an
// optional secret payload delivered over standard input. Secrets never
// appear in Args so they stay out of process listings.
type Spec struct {
	Name  string
	Args  []string
	Stdin []byte
}

// Result holds the complete output of a finished process. Stdout and Stderr
// are decoded as UTF-8 with undecodable bytes replaced.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external tools. A non-zero exit code is reported through
// Result, not as an error; Run only errors when the process could not be
// started at all.
type Runner interface {
	Run(ctx context.Context, spec Spec) (*Result, error)
	// LookPath reports whether name resolves to an executable on PATH.
	LookPath(name string) bool
}

type execRunner struct{}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Run(ctx context.Context, spec Spec) (*Result, error) {
	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)

	if len(spec.Stdin) > 0 {
		cmd.Stdin = bytes.NewReader(spec.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("run %s: %w", spec.Name, err)
		}
	}

	return &Result{
		Stdout:   decode(stdout.Bytes()),
		Stderr:   decode(stderr.Bytes()),
		ExitCode: cmd.ProcessState.ExitCode(),
	}, nil
}

func (execRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
