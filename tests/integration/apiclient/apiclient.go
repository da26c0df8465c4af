//go:build integration

package apiclient

type Client interface {
	Init(req InitRequest) (*Outcome, error)
	Mount(req MountRequest) (*Outcome, error)
	Info(encPath string) (*Outcome, error)
	Unmount(mountPath string) (*Outcome, error)
}

// Request/Response types matching the WebUI JSON API

// InitRequest is the request for POST /api/init
type InitRequest struct {
	EncPath         string `json:"enc_path"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// MountRequest is the request for POST /api/mount
type MountRequest struct {
	EncPath        string `json:"enc_path"`
	MountPath      string `json:"mount_path"`
	AuthMode       string `json:"auth_mode,omitempty"`
	Password       string `json:"password,omitempty"`
	MasterKey      string `json:"master_key,omitempty"`
	ReadOnly       bool   `json:"read_only,omitempty"`
	AllowOther     bool   `json:"allow_other,omitempty"`
	SharedStorage  bool   `json:"sharedstorage,omitempty"`
	Reverse        bool   `json:"reverse,omitempty"`
	AESSIV         bool   `json:"aessiv,omitempty"`
	PlaintextNames bool   `json:"plaintextnames,omitempty"`
	XChaCha        bool   `json:"xchacha,omitempty"`
	IdleTimeout    string `json:"idle_timeout,omitempty"`
	KernelOptions  string `json:"kernel_options,omitempty"`
}

// InfoRequest is the request for POST /api/info
type InfoRequest struct {
	EncPath string `json:"enc_path"`
}

// UnmountRequest is the request for POST /api/unmount
type UnmountRequest struct {
	MountPath string `json:"mount_path"`
}

// Outcome is the response for every lifecycle endpoint. A transport-level
// problem surfaces as a Go error; a refused or failed operation arrives as
// OK=false with the diagnostic in Error.
type Outcome struct {
	OK        bool   `json:"ok"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
	MasterKey string `json:"master_key,omitempty"`
}
