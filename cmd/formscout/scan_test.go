package main

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFormHTML = `<html><body>
<form>
  <label for="email">Email address</label>
  <input id="email" type="email" name="email" required>
  <label for="fname">First name</label>
  <input id="fname" type="text" name="first_name">
</form>
</body></html>`

// writeTestForm writes the fixture form to a temp file and returns its path
func writeTestForm(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "form.html")
	require.NoError(t, os.WriteFile(path, []byte(testFormHTML), 0644))
	return path
}

func TestScanCommand_MissingSource(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "scan")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "either --url or --file")
}

func TestScanCommand_BothSources(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "scan", "--url", "https://example.com", "--file", "form.html")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "mutually exclusive")
}

func TestScanCommand_LocalFile(t *testing.T) {
	binaryPath := getBinaryPath(t)
	formPath := writeTestForm(t)

	cmd := exec.Command(binaryPath, "scan", "--file", formPath)
	output, err := cmd.CombinedOutput()

	require.NoError(t, err, "scan failed: %s", string(output))
	assert.Contains(t, string(output), "DETECTED FIELDS (generation 1)")
	assert.Contains(t, string(output), "Email address")
	assert.Contains(t, string(output), "First name")
}

func TestScanCommand_JSON(t *testing.T) {
	binaryPath := getBinaryPath(t)
	formPath := writeTestForm(t)

	cmd := exec.Command(binaryPath, "scan", "--file", formPath, "--json")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "scan failed: %s", string(output))

	var outcome struct {
		Generation uint64 `json:"generation"`
		Fields     []struct {
			Label    string `json:"label"`
			Category string `json:"category"`
			Required bool   `json:"required"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(output, &outcome))

	assert.Equal(t, uint64(1), outcome.Generation)
	require.Len(t, outcome.Fields, 2)
	assert.Equal(t, "Email address", outcome.Fields[0].Label)
	assert.Equal(t, "email", outcome.Fields[0].Category)
	assert.True(t, outcome.Fields[0].Required)
	assert.Equal(t, "firstName", outcome.Fields[1].Category)
}

func TestScanCommand_MissingFile(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "scan", "--file", filepath.Join(t.TempDir(), "missing.html"))
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "failed to read")
}
