package mounttable

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/varenne/gocryptfs-webui/internal/command"
	"github.com/varenne/gocryptfs-webui/internal/log"
)

// Default kernel mount-table locations.
const (
	mountinfoPath  = "/proc/self/mountinfo"
	procMountsPath = "/proc/mounts"
)

const findmntBinary = "findmnt"

// Prober implements Oracle against the live host. Sources are consulted in
// order of preference (findmnt, mountinfo, legacy mounts table); a source
// that is missing or unreadable is skipped rather than treated as an error,
// so a host exposing none of them simply reports nothing mounted.
type Prober struct {
	runner        command.Runner
	mountinfoPath string
	mountsPath    string
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithMountinfoPath overrides the mountinfo table location.
func WithMountinfoPath(path string) ProberOption {
	return func(p *Prober) {
		p.mountinfoPath = path
	}
}

// WithMountsPath overrides the legacy mounts table location.
func WithMountsPath(path string) ProberOption {
	return func(p *Prober) {
		p.mountsPath = path
	}
}

// NewProber creates a live-host Prober. The runner is used to invoke
// findmnt when it is available on PATH.
func NewProber(runner command.Runner, opts ...ProberOption) *Prober {
	p := &Prober{
		runner:        runner,
		mountinfoPath: mountinfoPath,
		mountsPath:    procMountsPath,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// IsMounted reports whether path is currently a mount point. The answer is
// computed fresh on every call since mount state belongs to the host and
// can change between calls.
func (p *Prober) IsMounted(ctx context.Context, path string) bool {
	target := canonical(strings.TrimSpace(path))
	mounted := p.probe(ctx, target)
	log.Debug("probed mount state", "path", target, "mounted", mounted)
	return mounted
}

func (p *Prober) probe(ctx context.Context, target string) bool {
	if p.findmntReports(ctx, target) {
		return true
	}

	if p.tableReports(p.mountinfoPath, mountinfoTargetField, target) {
		return true
	}

	return p.tableReports(p.mountsPath, mountsTargetField, target)
}

// findmntReports asks findmnt for the mount target covering the path. Only a
// positive match is conclusive; the kernel tables are still consulted when
// findmnt is absent, fails, or names a different target.
func (p *Prober) findmntReports(ctx context.Context, target string) bool {
	if !p.runner.LookPath(findmntBinary) {
		return false
	}

	res, err := p.runner.Run(ctx, command.Spec{
		Name: findmntBinary,
		Args: []string{"-rno", "TARGET", "--target", target},
	})
	if err != nil || res.ExitCode != 0 {
		return false
	}

	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if canonical(line) == target {
			return true
		}
	}

	return false
}

func (p *Prober) tableReports(path string, field int, target string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	return hasMountPoint(file, field, target)
}

// canonical resolves symlinks where possible and strips trailing separators
// so paths from different sources compare as plain strings. Paths that
// cannot be resolved (typically because they do not exist) are cleaned
// lexically instead.
func canonical(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolved = filepath.Clean(path)
	}

	return strings.TrimRight(resolved, "/")
}
