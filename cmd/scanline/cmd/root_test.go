package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	root := GetRootCommand()
	// Persistent flag values survive across executions of the shared root.
	require.NoError(t, root.PersistentFlags().Set("version", "false"))
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return buf.String()
}

func TestVersionFlag(t *testing.T) {
	out := executeCommand(t, "--version")
	assert.Contains(t, out, "scanline version")
}

func TestRootShowsHelp(t *testing.T) {
	out := executeCommand(t)
	assert.Contains(t, out, "Continuous barcode scanning")
	assert.Contains(t, out, "scan")
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "formats")
}

func TestFormatsCommand(t *testing.T) {
	out := executeCommand(t, "formats")
	assert.Contains(t, out, "QR Code")
	assert.Contains(t, out, "EAN-13")
}

func TestFormatsCommandMachine(t *testing.T) {
	out := executeCommand(t, "formats", "--machine")
	assert.Contains(t, out, "qr_code")
	assert.NotContains(t, out, "QR Code")
}

func TestConfigInitCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	out := executeCommand(t, "config", "init")
	assert.Contains(t, out, "wrote")

	// A second init must refuse to overwrite.
	root := GetRootCommand()
	root.SetArgs([]string{"config", "init"})
	assert.Error(t, root.Execute())
}
