// Package gocryptfs builds invocations of the gocryptfs tool family and
// knows the shape of its output. It never runs anything itself; callers
// hand the specs to a command.Runner.
package gocryptfs

import (
	"strings"

	"github.com/varenne/gocryptfs-webui/internal/command"
)

// Tool binaries resolved via PATH.
const (
	// Binary is the encryption tool itself.
	Binary = "gocryptfs"
	// UnmountBinary detaches FUSE mounts created by the tool.
	UnmountBinary = "fusermount"
)

// ConfFile is the marker gocryptfs writes into a volume directory on
// successful initialization; its presence is the "initialized" signal.
const ConfFile = "gocryptfs.conf"

// masterKeyMarker tags the stdout line carrying the recovery credential
// printed by gocryptfs -init.
const masterKeyMarker = "MasterKey"

// AuthMode selects how a mount is unlocked.
type AuthMode string

const (
	// AuthPassword unlocks with the volume password.
	AuthPassword AuthMode = "password"
	// AuthMasterKey unlocks with a previously exported master key fed over
	// stdin, for volumes whose config file is lost or intentionally absent.
	AuthMasterKey AuthMode = "masterkey"
)

// MountOptions mirrors the tool's mount flags. Flags are emitted in a fixed
// order so invocations are reproducible. IdleTimeout and KernelOptions are
// passed through verbatim when non-empty; validation happens upstream.
type MountOptions struct {
	ReadOnly       bool
	AllowOther     bool
	SharedStorage  bool
	Reverse        bool
	AESSIV         bool
	PlaintextNames bool
	XChaCha        bool
	IdleTimeout    string
	KernelOptions  string
}

// InitSpec builds the invocation that initializes a new encrypted volume.
// The password and its confirmation answer the tool's interactive prompts
// over stdin, in prompt order.
func InitSpec(volumePath, password, confirm string) command.Spec {
	return command.Spec{
		Name:  Binary,
		Args:  []string{"-init", volumePath},
		Stdin: []byte(password + "\n" + confirm + "\n"),
	}
}

// MountSpec builds the invocation that unlocks volumePath onto mountPath.
// The secret travels over stdin only, never in the argument vector.
func MountSpec(volumePath, mountPath string, mode AuthMode, secret string, opts MountOptions) command.Spec {
	var args []string

	boolFlags := []struct {
		enabled bool
		flag    string
	}{
		{opts.ReadOnly, "-ro"},
		{opts.AllowOther, "-allow_other"},
		{opts.SharedStorage, "-sharedstorage"},
		{opts.Reverse, "-reverse"},
		{opts.AESSIV, "-aessiv"},
		{opts.PlaintextNames, "-plaintextnames"},
		{opts.XChaCha, "-xchacha"},
	}
	for _, f := range boolFlags {
		if f.enabled {
			args = append(args, f.flag)
		}
	}

	if opts.IdleTimeout != "" {
		args = append(args, "-idle", opts.IdleTimeout)
	}
	if opts.KernelOptions != "" {
		args = append(args, "-ko", opts.KernelOptions)
	}
	if mode == AuthMasterKey {
		args = append(args, "-masterkey=stdin")
	}

	args = append(args, volumePath, mountPath)

	return command.Spec{
		Name:  Binary,
		Args:  args,
		Stdin: []byte(secret + "\n"),
	}
}

// InfoSpec builds the invocation that prints a volume's configuration.
func InfoSpec(volumePath string) command.Spec {
	return command.Spec{
		Name: Binary,
		Args: []string{"-info", volumePath},
	}
}

// UnmountSpec builds the fusermount invocation that detaches mountPath.
func UnmountSpec(mountPath string) command.Spec {
	return command.Spec{
		Name: UnmountBinary,
		Args: []string{"-u", mountPath},
	}
}

// ExtractMasterKey scans init output for the line carrying the recovery
// credential and returns it trimmed. An empty result means the tool did not
// print one, which is not an error.
func ExtractMasterKey(stdout string) string {
	for _, line := range strings.Split(stdout, "\n") {
		if strings.Contains(line, masterKeyMarker) {
			return strings.TrimSpace(line)
		}
	}

	return ""
}

// IsBusy reports whether tool output describes a busy mount, the one
// unmount failure callers present differently.
func IsBusy(text string) bool {
	return strings.Contains(strings.ToLower(text), "busy")
}
