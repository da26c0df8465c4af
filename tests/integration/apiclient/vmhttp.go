//go:build integration

package apiclient

import (
	"encoding/json"
	"fmt"

	"github.com/varenne/gocryptfs-webui/tests/integration/vm"
)

// VMHTTPClient calls the WebUI JSON API running inside the test VM
type VMHTTPClient struct {
	vm      vm.VM
	baseURL string
}

// NewVMHTTPClient creates a new client for the WebUI API at baseURL
func NewVMHTTPClient(vm vm.VM, baseURL string) *VMHTTPClient {
	return &VMHTTPClient{
		vm:      vm,
		baseURL: baseURL,
	}
}

// call POSTs a JSON request to an API endpoint. The server only listens on
// the VM's loopback, so curl runs inside the VM over SSH.
func (c *VMHTTPClient) call(path string, request, response any) error {
	reqBody, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	cmd := fmt.Sprintf(
		`curl -s -X POST -H "Content-Type: application/json" -d '%s' %s%s`,
		string(reqBody),
		c.baseURL,
		path,
	)

	output, err := c.vm.Run(cmd)
	if err != nil {
		return fmt.Errorf("call api: %w: %s", err, output)
	}

	if err := json.Unmarshal([]byte(output), response); err != nil {
		return fmt.Errorf("unmarshal response: %w: %s", err, output)
	}

	return nil
}

// Init initializes a new encrypted folder
func (c *VMHTTPClient) Init(req InitRequest) (*Outcome, error) {
	var out Outcome
	if err := c.call("/api/init", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Mount mounts an encrypted folder
func (c *VMHTTPClient) Mount(req MountRequest) (*Outcome, error) {
	var out Outcome
	if err := c.call("/api/mount", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Info reads the gocryptfs config summary of an encrypted folder
func (c *VMHTTPClient) Info(encPath string) (*Outcome, error) {
	var out Outcome
	if err := c.call("/api/info", InfoRequest{EncPath: encPath}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Unmount unmounts a mount point
func (c *VMHTTPClient) Unmount(mountPath string) (*Outcome, error) {
	var out Outcome
	if err := c.call("/api/unmount", UnmountRequest{MountPath: mountPath}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
