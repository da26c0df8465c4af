// Package driver orchestrates the gocryptfs volume lifecycle: ordered
// precondition checks against the filesystem and the live mount table, tool
// invocation, and normalization of the tool's outcome.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/varenne/gocryptfs-webui/internal/api"
	"github.com/varenne/gocryptfs-webui/internal/command"
	"github.com/varenne/gocryptfs-webui/internal/gocryptfs"
	"github.com/varenne/gocryptfs-webui/internal/log"
	"github.com/varenne/gocryptfs-webui/internal/mounttable"
	"github.com/varenne/gocryptfs-webui/internal/validation"
)

// Driver implements the four lifecycle operations. It holds no state of its
// own and does not serialize requests: mount state is re-checked live on
// every call, and the window between a precondition check and the tool
// invocation is covered by gocryptfs's own locking, not by this type.
type Driver struct {
	mounts mounttable.Oracle
	runner command.Runner
}

// NewDriver creates a lifecycle driver using the given mount-state oracle
// and tool runner.
func NewDriver(mounts mounttable.Oracle, runner command.Runner) *Driver {
	return &Driver{
		mounts: mounts,
		runner: runner,
	}
}

// Init creates a new encrypted volume at the requested path.
func (d *Driver) Init(ctx context.Context, req api.InitRequest) *api.Outcome {
	// 1. Validate the path shape
	encPath, err := validation.AbsolutePath(req.EncPath)
	if err != nil {
		return fail("Encrypted folder path must be an absolute path.")
	}

	log.Debug("initializing volume", "path", encPath)

	// 2. An existing target must be an uninitialized, empty directory
	if pathExists(encPath) {
		if pathExists(filepath.Join(encPath, gocryptfs.ConfFile)) {
			return fail("Encrypted folder already initialized.")
		}
		if !isDirEmpty(encPath) {
			return fail("Encrypted folder exists and is not empty.")
		}
	}

	// 3. The operator must have typed the same password twice
	if req.Password != req.PasswordConfirm {
		return fail("Passwords do not match.")
	}

	// 4. The tool must be present
	if !d.runner.LookPath(gocryptfs.Binary) {
		return fail("gocryptfs is not installed or not in PATH.")
	}

	res, err := d.run(ctx, gocryptfs.InitSpec(encPath, req.Password, req.PasswordConfirm))
	if err != nil {
		return fail(err.Error())
	}

	output := strings.TrimSpace(res.Stdout)
	if res.ExitCode != 0 {
		return &api.Outcome{
			Output: output,
			Error:  failureMessage(res, "Initialization failed."),
		}
	}

	log.Info("volume initialized", "path", encPath)
	return &api.Outcome{
		OK:        true,
		Output:    output,
		MasterKey: gocryptfs.ExtractMasterKey(output),
	}
}

// Mount unlocks an encrypted volume onto a mount point.
func (d *Driver) Mount(ctx context.Context, req api.MountRequest) *api.Outcome {
	mode, err := authMode(req.AuthMode)
	if err != nil {
		return fail(err.Error())
	}

	encPath, encErr := validation.AbsolutePath(req.EncPath)
	mountPath, mountErr := validation.AbsolutePath(req.MountPath)
	if encErr != nil || mountErr != nil {
		return fail("Paths must be absolute.")
	}

	log.Debug("mounting volume", "enc", encPath, "mount", mountPath, "mode", string(mode))

	if !pathExists(encPath) {
		return fail("Encrypted folder does not exist.")
	}
	if !pathExists(mountPath) {
		return fail("Mount point does not exist.")
	}
	if !isDirEmpty(mountPath) {
		return fail("Mount point is not empty.")
	}
	if d.mounts.IsMounted(ctx, mountPath) {
		return fail("Mount point is already mounted.")
	}

	// Raw-key mode may target a volume whose config file is intentionally
	// absent, so the marker check applies to password mode only.
	if mode == gocryptfs.AuthPassword && !pathExists(filepath.Join(encPath, gocryptfs.ConfFile)) {
		return fail("Encrypted folder is not initialized.")
	}

	if !d.runner.LookPath(gocryptfs.Binary) {
		return fail("gocryptfs is not installed or not in PATH.")
	}

	secret := req.Password
	if mode == gocryptfs.AuthMasterKey {
		secret = strings.TrimSpace(req.MasterKey)
		if secret == "" {
			return fail("Master key is required for master-key unlock mode.")
		}
	} else if secret == "" {
		return fail("Password is required for password unlock mode.")
	}

	opts := gocryptfs.MountOptions{
		ReadOnly:       req.ReadOnly,
		AllowOther:     req.AllowOther,
		SharedStorage:  req.SharedStorage,
		Reverse:        req.Reverse,
		AESSIV:         req.AESSIV,
		PlaintextNames: req.PlaintextNames,
		XChaCha:        req.XChaCha,
		IdleTimeout:    strings.TrimSpace(req.IdleTimeout),
		KernelOptions:  strings.TrimSpace(req.KernelOptions),
	}
	if opts.IdleTimeout != "" && !validation.ValidIdleTimeout(opts.IdleTimeout) {
		return fail("Idle timeout format is invalid. Use values like '30m' or '2h45m'.")
	}

	res, err := d.run(ctx, gocryptfs.MountSpec(encPath, mountPath, mode, secret, opts))
	if err != nil {
		return fail(err.Error())
	}

	output := strings.TrimSpace(res.Stdout)
	if res.ExitCode != 0 {
		return &api.Outcome{
			Output: output,
			Error:  failureMessage(res, "Mount failed."),
		}
	}

	log.Info("volume mounted", "enc", encPath, "mount", mountPath)
	if output == "" {
		output = "Mounted successfully."
	}
	return &api.Outcome{OK: true, Output: output}
}

// Info reports a volume's configuration as printed by the tool.
func (d *Driver) Info(ctx context.Context, req api.InfoRequest) *api.Outcome {
	encPath, err := validation.AbsolutePath(req.EncPath)
	if err != nil {
		return fail("Encrypted folder path must be absolute.")
	}

	log.Debug("reading volume info", "path", encPath)

	if !pathExists(encPath) {
		return fail("Encrypted folder does not exist.")
	}
	if !pathExists(filepath.Join(encPath, gocryptfs.ConfFile)) {
		return fail("No gocryptfs.conf found in encrypted folder.")
	}
	if !d.runner.LookPath(gocryptfs.Binary) {
		return fail("gocryptfs is not installed or not in PATH.")
	}

	res, err := d.run(ctx, gocryptfs.InfoSpec(encPath))
	if err != nil {
		return fail(err.Error())
	}

	output := strings.TrimSpace(res.Stdout)
	if res.ExitCode != 0 {
		return &api.Outcome{
			Output: output,
			Error:  failureMessage(res, "Failed to read config info."),
		}
	}

	if output == "" {
		output = "No output from gocryptfs -info."
	}
	return &api.Outcome{OK: true, Output: output}
}

// Unmount detaches a mounted volume. The tool's zero exit code is not
// trusted alone: the mount table is re-queried afterwards and a surviving
// mount downgrades the result to failure.
func (d *Driver) Unmount(ctx context.Context, req api.UnmountRequest) *api.Outcome {
	mountPath, err := validation.AbsolutePath(req.MountPath)
	if err != nil {
		return fail("Mount point path must be absolute.")
	}

	log.Debug("unmounting volume", "mount", mountPath)

	if !pathExists(mountPath) {
		return fail("Mount point does not exist.")
	}
	if !d.mounts.IsMounted(ctx, mountPath) {
		return fail("Mount point is not mounted.")
	}
	if !d.runner.LookPath(gocryptfs.UnmountBinary) {
		return fail("fusermount is not installed or not in PATH.")
	}

	res, err := d.run(ctx, gocryptfs.UnmountSpec(mountPath))
	if err != nil {
		return fail(err.Error())
	}

	output := strings.TrimSpace(res.Stdout)
	if res.ExitCode != 0 {
		msg := failureMessage(res, "Unmount failed.")
		if gocryptfs.IsBusy(msg) {
			msg = "Unmount failed: mount point is busy (files in use)."
		}
		return fail(msg)
	}

	if d.mounts.IsMounted(ctx, mountPath) {
		return fail("Unmount failed: mount point is still mounted.")
	}

	log.Info("volume unmounted", "mount", mountPath)
	if output == "" {
		output = "Unmounted successfully."
	}
	return &api.Outcome{OK: true, Output: output}
}

// run executes a tool invocation to completion. The context is severed from
// cancellation so an operation survives its HTTP caller disconnecting.
func (d *Driver) run(ctx context.Context, spec command.Spec) (*command.Result, error) {
	res, err := d.runner.Run(context.WithoutCancel(ctx), spec)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", spec.Name, err)
	}
	return res, nil
}

func authMode(raw string) (gocryptfs.AuthMode, error) {
	switch raw {
	case "", string(gocryptfs.AuthPassword):
		return gocryptfs.AuthPassword, nil
	case string(gocryptfs.AuthMasterKey):
		return gocryptfs.AuthMasterKey, nil
	default:
		return "", fmt.Errorf("auth_mode must be %q or %q", gocryptfs.AuthPassword, gocryptfs.AuthMasterKey)
	}
}

// failureMessage picks the user-facing text for a non-zero exit: trimmed
// stderr, then trimmed stdout, then the per-operation fallback.
func failureMessage(res *command.Result, fallback string) string {
	if msg := strings.TrimSpace(res.Stderr); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(res.Stdout); msg != "" {
		return msg
	}
	return fallback
}

func fail(msg string) *api.Outcome {
	return &api.Outcome{OK: false, Error: msg}
}

// pathExists mirrors a plain existence probe: any stat error, including
// permission trouble, reads as absent.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// isDirEmpty reports whether path is a directory with no entries. Anything
// else, including unreadable directories and non-directories, is not empty.
func isDirEmpty(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return false
	}
	return len(entries) == 0
}
