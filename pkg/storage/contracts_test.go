package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibyllinesoft/contractver/pkg/contract"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

const echoYAML = `id: echo
name: Echo
input:
  kind: object
  properties:
    message:
      kind: primitive
      type: string
  required:
    - message
`

func writeContract(t *testing.T, root, version, file, content string) {
	t.Helper()
	dir := filepath.Join(root, version)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0644))
}

func TestFileContractStore_Contracts(t *testing.T) {
	root := t.TempDir()
	writeContract(t, root, "1.0.0", "echo.yaml", echoYAML)

	store, err := NewFileContractStore(root, nil)
	require.NoError(t, err)

	set, err := store.Contracts(semver.MustParse("1.0.0"))
	require.NoError(t, err)
	require.Contains(t, set, "echo")
	assert.Equal(t, "Echo", set["echo"].Name)
	assert.Equal(t, contract.KindObject, set["echo"].Input.Kind)
	assert.Equal(t, []string{"message"}, set["echo"].Input.Required)
}

func TestFileContractStore_MissingVersion(t *testing.T) {
	store, err := NewFileContractStore(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = store.Contracts(semver.MustParse("9.9.9"))
	assert.Error(t, err)
}

func TestFileContractStore_IDFallsBackToFilename(t *testing.T) {
	root := t.TempDir()
	writeContract(t, root, "1.0.0", "anonymous.yaml", "name: Anonymous\n")

	store, err := NewFileContractStore(root, nil)
	require.NoError(t, err)

	set, err := store.Contracts(semver.MustParse("1.0.0"))
	require.NoError(t, err)
	assert.Contains(t, set, "anonymous")
}

func TestFileContractStore_Versions(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"1.0.0", "2.0.0", "1.2.0", "not-a-version", "v3"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0755))
	}

	store, err := NewFileContractStore(root, nil)
	require.NoError(t, err)

	got, err := store.Versions()
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "1.0.0", got[0].String())
	assert.Equal(t, "1.2.0", got[1].String())
	assert.Equal(t, "2.0.0", got[2].String())
}

func TestFileContractStore_SaveRoundTrip(t *testing.T) {
	store, err := NewFileContractStore(t.TempDir(), nil)
	require.NoError(t, err)

	set := map[string]*contract.Definition{
		"echo": {
			ID:   "echo",
			Name: "Echo",
			Input: &contract.Schema{
				Kind: contract.KindObject,
				Properties: map[string]*contract.Schema{
					"message": {Kind: contract.KindPrimitive, Type: contract.TypeString},
				},
			},
		},
	}
	require.NoError(t, store.SaveContracts(semver.MustParse("1.0.0"), set))

	versions, err := store.Versions()
	require.NoError(t, err)
	require.Len(t, versions, 1)

	loaded, err := store.Contracts(semver.MustParse("1.0.0"))
	require.NoError(t, err)
	require.Contains(t, loaded, "echo")
	assert.Equal(t, "Echo", loaded["echo"].Name)
}

func TestFileContractStore_WatchInvalidatesCache(t *testing.T) {
	root := t.TempDir()
	writeContract(t, root, "1.0.0", "echo.yaml", echoYAML)

	store, err := NewFileContractStore(root, nil)
	require.NoError(t, err)
	require.NoError(t, store.Watch())
	defer store.Close()

	set, err := store.Contracts(semver.MustParse("1.0.0"))
	require.NoError(t, err)
	require.Contains(t, set, "echo")

	// Rewrite the file with a second contract; the watcher should drop the
	// cached set so the next load sees it.
	writeContract(t, root, "1.0.0", "reverse.yaml", "id: reverse\nname: Reverse\n")

	require.Eventually(t, func() bool {
		set, err := store.Contracts(semver.MustParse("1.0.0"))
		return err == nil && len(set) == 2
	}, 2*time.Second, 20*time.Millisecond)
}
