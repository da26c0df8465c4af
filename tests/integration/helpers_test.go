//go:build integration

package integration

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/varenne/gocryptfs-webui/tests/integration/apiclient"
)

const testPassword = "integration-test-password"

// vaultPaths returns unique encrypted and mount directories for a test
func vaultPaths(t *testing.T) (string, string) {
	name := strings.ToLower(strings.ReplaceAll(t.Name(), "/", "-"))
	base := fmt.Sprintf("/tmp/%s-%d", name, time.Now().UnixNano()%100000)
	return base + ".enc", base + ".mnt"
}

// cleanupVault lazily unmounts and removes the test directories at test end
func cleanupVault(t *testing.T, encPath, mountPath string) {
	t.Cleanup(func() {
		_, _ = testVM.Run(fmt.Sprintf("sudo fusermount -uz %s 2>/dev/null || true", mountPath))
		_, _ = testVM.Run(fmt.Sprintf("sudo rm -rf %s %s", encPath, mountPath))
	})
}

// vmMkdir creates directories inside the VM
func vmMkdir(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		output, err := testVM.Run(fmt.Sprintf("mkdir -p %s", p))
		require.NoError(t, err, "mkdir %s should succeed: %s", p, output)
	}
}

// newVault initializes a fresh encrypted folder and returns the init outcome
func newVault(t *testing.T, encPath string) *apiclient.Outcome {
	t.Helper()
	vmMkdir(t, encPath)
	out, err := testClient.Init(apiclient.InitRequest{
		EncPath:         encPath,
		Password:        testPassword,
		PasswordConfirm: testPassword,
	})
	require.NoError(t, err, "init call should succeed")
	require.True(t, out.OK, "init should succeed: %s", out.Error)
	return out
}

// mountVault mounts an initialized vault with password auth
func mountVault(t *testing.T, encPath, mountPath string) {
	t.Helper()
	vmMkdir(t, mountPath)
	out, err := testClient.Mount(apiclient.MountRequest{
		EncPath:   encPath,
		MountPath: mountPath,
		Password:  testPassword,
	})
	require.NoError(t, err, "mount call should succeed")
	require.True(t, out.OK, "mount should succeed: %s", out.Error)
}

// assertMounted verifies the kernel mount table has an entry at path
func assertMounted(t *testing.T, path string) {
	t.Helper()
	output, err := testVM.Run(fmt.Sprintf("findmnt -rno TARGET %s", path))
	require.NoError(t, err, "findmnt should report %s as mounted", path)
	require.Contains(t, output, path)
}

// assertNotMounted verifies the kernel mount table has no entry at path
func assertNotMounted(t *testing.T, path string) {
	t.Helper()
	// findmnt exits non-zero when the target is not a mount point
	if output, err := testVM.Run(fmt.Sprintf("findmnt -rno TARGET %s", path)); err == nil {
		t.Fatalf("%s is still mounted: %s", path, output)
	}
}

// requireRefused asserts a failed outcome carrying an exact diagnostic
func requireRefused(t *testing.T, out *apiclient.Outcome, err error, wantMsg string) {
	t.Helper()
	require.NoError(t, err, "api call should succeed")
	require.False(t, out.OK, "operation should be refused")
	require.Equal(t, wantMsg, out.Error)
}

// vmFileExists reports whether a path exists inside the VM
func vmFileExists(t *testing.T, path string) bool {
	t.Helper()
	output, _ := testVM.Run(fmt.Sprintf("sudo test -e %s && echo -n ok", path))
	return output == "ok"
}
