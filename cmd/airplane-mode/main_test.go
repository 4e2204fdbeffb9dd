package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
gate:
  store: memory
  nonce_store: memory
logger:
  level: error
`), 0o600))

	checkFetch, checkGRPC = false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCLI_Status(t *testing.T) {
	assert.Equal(t, "on\n", runCLI(t, "status"))
}

func TestCLI_Install(t *testing.T) {
	assert.Equal(t, "installed, mode: on\n", runCLI(t, "install"))
	assert.Equal(t, "uninstalled\n", runCLI(t, "uninstall"))
}

func TestCLI_Check(t *testing.T) {
	out := runCLI(t, "check", "https://api.wordpress.org/")
	assert.Contains(t, out, "local: false")
	assert.Contains(t, out, "decision: DENY")

	out = runCLI(t, "check", "http://localhost/wp-cron.php")
	assert.Contains(t, out, "local: true")
	assert.Contains(t, out, "decision: ALLOW")

	out = runCLI(t, "check", "--fetch", "https://api.wordpress.org/")
	assert.Contains(t, out, "fetch: blocked before leaving the process")

	out = runCLI(t, "check", "--grpc", "dns:///api.example.com:443")
	assert.Contains(t, out, "PermissionDenied")
}
