// Package api defines the request and response shapes shared by the HTTP
// transport and the lifecycle driver. The JSON field names are the wire
// contract consumed by the embedded web form.
package api

// InitRequest creates a new encrypted volume.
type InitRequest struct {
	EncPath         string `json:"enc_path"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// MountRequest unlocks an encrypted volume onto a mount point. AuthMode is
// "password" or "masterkey"; an empty value means password. Exactly one of
// Password and MasterKey is used, per mode.
type MountRequest struct {
	EncPath        string `json:"enc_path"`
	MountPath      string `json:"mount_path"`
	AuthMode       string `json:"auth_mode"`
	Password       string `json:"password"`
	MasterKey      string `json:"master_key"`
	ReadOnly       bool   `json:"read_only"`
	AllowOther     bool   `json:"allow_other"`
	SharedStorage  bool   `json:"sharedstorage"`
	Reverse        bool   `json:"reverse"`
	AESSIV         bool   `json:"aessiv"`
	PlaintextNames bool   `json:"plaintextnames"`
	XChaCha        bool   `json:"xchacha"`
	IdleTimeout    string `json:"idle_timeout"`
	KernelOptions  string `json:"kernel_options"`
}

// InfoRequest inspects a volume's configuration.
type InfoRequest struct {
	EncPath string `json:"enc_path"`
}

// UnmountRequest detaches a mounted volume.
type UnmountRequest struct {
	MountPath string `json:"mount_path"`
}

// Outcome is the normalized result of one lifecycle operation. Exactly one
// Outcome is produced per request; nothing is persisted.
type Outcome struct {
	OK        bool   `json:"ok"`
	Output    string `json:"output,omitempty"`
	Error     string `json:"error,omitempty"`
	MasterKey string `json:"master_key,omitempty"`
}

// PickOutcome is the result of one folder-picker request.
type PickOutcome struct {
	OK    bool   `json:"ok"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
}
