//go:build integration

package integration

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVaultLifecycle tests the complete vault lifecycle:
// init -> info -> mount -> write -> unmount (verify ciphertext at rest) ->
// remount -> read (verify data persisted) -> unmount
func TestVaultLifecycle(t *testing.T) {
	encPath, mountPath := vaultPaths(t)
	cleanupVault(t, encPath, mountPath)

	testData := "vault lifecycle secret"
	testFile := fmt.Sprintf("%s/secret.txt", mountPath)

	// Step 1: Initialize the encrypted folder
	t.Run("step1_init", func(t *testing.T) {
		out := newVault(t, encPath)
		require.NotEmpty(t, out.Output, "init should report tool output")
		require.True(t, vmFileExists(t, fmt.Sprintf("%s/gocryptfs.conf", encPath)),
			"init should create gocryptfs.conf")
	})

	// Step 2: Info reports the vault configuration
	t.Run("step2_info", func(t *testing.T) {
		out, err := testClient.Info(encPath)
		require.NoError(t, err, "info call should succeed")
		require.True(t, out.OK, "info should succeed: %s", out.Error)
		require.Contains(t, strings.ToLower(out.Output), "gocryptfs")
	})

	// Step 3: Mount with the password
	t.Run("step3_mount", func(t *testing.T) {
		mountVault(t, encPath, mountPath)
		assertMounted(t, mountPath)
	})

	// Step 4: Write data through the mount
	t.Run("step4_write_data", func(t *testing.T) {
		_, err := testVM.Run(fmt.Sprintf("echo '%s' | sudo tee %s", testData, testFile))
		require.NoError(t, err, "write to mounted vault should succeed")

		output, err := testVM.Run(fmt.Sprintf("sudo cat %s", testFile))
		require.NoError(t, err)
		require.Contains(t, output, testData)
	})

	// Step 5: Unmount
	t.Run("step5_unmount", func(t *testing.T) {
		out, err := testClient.Unmount(mountPath)
		require.NoError(t, err, "unmount call should succeed")
		require.True(t, out.OK, "unmount should succeed: %s", out.Error)
		assertNotMounted(t, mountPath)
	})

	// Step 6: The plaintext must not be visible at rest
	t.Run("step6_verify_ciphertext_at_rest", func(t *testing.T) {
		require.False(t, vmFileExists(t, testFile),
			"mount point should be empty after unmount")
		require.False(t, vmFileExists(t, fmt.Sprintf("%s/secret.txt", encPath)),
			"plaintext name must not appear in the encrypted folder")
		if _, err := testVM.Run(fmt.Sprintf("sudo grep -rq '%s' %s", testData, encPath)); err == nil {
			t.Fatal("plaintext content found in the encrypted folder")
		}
	})

	// Step 7: Remount
	t.Run("step7_remount", func(t *testing.T) {
		mountVault(t, encPath, mountPath)
		assertMounted(t, mountPath)
	})

	// Step 8: Verify data persisted across the unmount/remount cycle
	t.Run("step8_verify_data_persisted", func(t *testing.T) {
		output, err := testVM.Run(fmt.Sprintf("sudo cat %s", testFile))
		require.NoError(t, err)
		require.Contains(t, output, testData, "data should persist after unmount/remount")
	})

	// Step 9: Final unmount
	t.Run("step9_final_unmount", func(t *testing.T) {
		out, err := testClient.Unmount(mountPath)
		require.NoError(t, err)
		require.True(t, out.OK, "unmount should succeed: %s", out.Error)
		assertNotMounted(t, mountPath)
	})
}

// TestVaultLifecycle_TwoVaults verifies that operations on one vault
// do not disturb another mounted alongside it.
func TestVaultLifecycle_TwoVaults(t *testing.T) {
	encA, mntA := vaultPaths(t)
	cleanupVault(t, encA, mntA)
	encB := encA + ".b"
	mntB := mntA + ".b"
	cleanupVault(t, encB, mntB)

	// Step 1: Initialize and mount both vaults
	t.Run("step1_mount_both", func(t *testing.T) {
		newVault(t, encA)
		newVault(t, encB)
		mountVault(t, encA, mntA)
		mountVault(t, encB, mntB)
		assertMounted(t, mntA)
		assertMounted(t, mntB)
	})

	// Step 2: Unmount the first vault only
	t.Run("step2_unmount_first", func(t *testing.T) {
		out, err := testClient.Unmount(mntA)
		require.NoError(t, err)
		require.True(t, out.OK, "unmount should succeed: %s", out.Error)
	})

	// Step 3: The second vault must still be mounted
	t.Run("step3_second_still_mounted", func(t *testing.T) {
		assertNotMounted(t, mntA)
		assertMounted(t, mntB)
	})

	// Step 4: Unmount the second vault
	t.Run("step4_unmount_second", func(t *testing.T) {
		out, err := testClient.Unmount(mntB)
		require.NoError(t, err)
		require.True(t, out.OK, "unmount should succeed: %s", out.Error)
		assertNotMounted(t, mntB)
	})
}
