package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestRunPrintsOkForAWellTypedFixture(t *testing.T) {
	path := writeFixture(t, `
params:
  - name: x
    type: u32
returnType: u32
body:
  kind: ident
  name: x
`)

	var stdout bytes.Buffer
	err := run(&stdout, path, false)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "ok")
}

func TestRunReportsACoercionError(t *testing.T) {
	path := writeFixture(t, `
returnType: "&mut u32"
body:
  kind: literal
  lit: bool
  text: "true"
`)

	var stdout bytes.Buffer
	err := run(&stdout, path, false)

	require.Error(t, err)
	assert.Contains(t, stdout.String(), "error:")
}

func TestRunDumpsJSONWhenRequested(t *testing.T) {
	path := writeFixture(t, `
returnType: u32
body:
  kind: literal
  lit: int
  text: "1"
`)

	var stdout bytes.Buffer
	err := run(&stdout, path, true)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "ok")
	assert.Contains(t, stdout.String(), "\"nodes\"")
}

func TestRunFailsOnAMissingFile(t *testing.T) {
	var stdout bytes.Buffer
	err := run(&stdout, filepath.Join(t.TempDir(), "nope.yaml"), false)
	require.Error(t, err)
}
