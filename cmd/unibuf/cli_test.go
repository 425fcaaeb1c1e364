package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	testBinary     string
	testBinaryOnce sync.Once
	testBinaryErr  error
)

// buildTestBinary builds the unibuf binary once for all tests in this file.
func buildTestBinary() (string, error) {
	testBinaryOnce.Do(func() {
		tmpBinary := filepath.Join(os.TempDir(), "unibuf-test")
		cmd := exec.Command("go", "build", "-o", tmpBinary, ".")
		if out, err := cmd.CombinedOutput(); err != nil {
			testBinaryErr = err
			testBinary = string(out)
			return
		}
		testBinary = tmpBinary
	})
	return testBinary, testBinaryErr
}

const personProto = `syntax = "proto3";

message Person {
  string name = 1;
  int32 age = 2;
  bool active = 3;
}
`

func TestVersionCommand(t *testing.T) {
	binary, err := buildTestBinary()
	require.NoError(t, err)

	out, err := exec.Command(binary, "version").CombinedOutput()
	require.NoError(t, err)
	require.Contains(t, string(out), "unibuf version:")
}

func TestSchemaCommandListsMessage(t *testing.T) {
	binary, err := buildTestBinary()
	require.NoError(t, err)

	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "person.proto")
	require.NoError(t, os.WriteFile(schemaPath, []byte(personProto), 0o644))

	out, err := exec.Command(binary, "schema", schemaPath).CombinedOutput()
	require.NoError(t, err)
	require.Contains(t, string(out), "Person")
	require.Contains(t, string(out), "name: string")
}

func TestParseCommandDecodesTextproto(t *testing.T) {
	binary, err := buildTestBinary()
	require.NoError(t, err)

	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "person.proto")
	require.NoError(t, os.WriteFile(schemaPath, []byte(personProto), 0o644))
	dataPath := filepath.Join(dir, "person.txtpb")
	require.NoError(t, os.WriteFile(dataPath, []byte(`name: "Ada" age: 36`), 0o644))

	out, err := exec.Command(binary, "parse", dataPath, "--schema", schemaPath, "-t", "Person").CombinedOutput()
	require.NoError(t, err, string(out))
	require.True(t, strings.Contains(string(out), `"Ada"`) || strings.Contains(string(out), "Ada"))
}

func TestValidateCommandRejectsUnknownField(t *testing.T) {
	binary, err := buildTestBinary()
	require.NoError(t, err)

	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "person.proto")
	require.NoError(t, os.WriteFile(schemaPath, []byte(personProto), 0o644))
	dataPath := filepath.Join(dir, "person.txtpb")
	require.NoError(t, os.WriteFile(dataPath, []byte(`nickname: "Ace"`), 0o644))

	cmd := exec.Command(binary, "validate", dataPath, "--schema", schemaPath, "-t", "Person")
	out, err := cmd.CombinedOutput()
	require.Error(t, err)
	require.Contains(t, string(out), "unknown field")
}

func TestParseCommandRequiresSchemaFlag(t *testing.T) {
	binary, err := buildTestBinary()
	require.NoError(t, err)

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "person.txtpb")
	require.NoError(t, os.WriteFile(dataPath, []byte(`name: "Ada"`), 0o644))

	cmd := exec.Command(binary, "parse", dataPath)
	out, err := cmd.CombinedOutput()
	require.Error(t, err)
	require.Contains(t, string(out), "schema")
}
