package stubgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "same.go"), []byte("package x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "changed.go"), []byte("package x\n// old\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "version.go"),
		[]byte("// Generator version: v0.1.0\npackage x\n"), 0o644))

	files := []File{
		{Path: "same.go", Content: []byte("package x\n")},
		{Path: "changed.go", Content: []byte("package x\n// new\n")},
		{Path: "version.go", Content: []byte("// Generator version: v0.2.0\npackage x\n")},
		{Path: "missing.go", Content: []byte("package x\n")},
	}

	result, err := CompareFiles(dir, files)
	require.NoError(t, err)
	assert.False(t, result.UpToDate)
	assert.Equal(t, []string{"changed.go"}, result.Differences)
	assert.Equal(t, []string{"missing.go"}, result.Missing)
}

func TestCompareFilesUpToDate(t *testing.T) {
	dir := t.TempDir()
	files := []File{{Path: "sub/a.go", Content: []byte("package sub\n")}}
	require.NoError(t, WriteFiles(dir, files))

	result, err := CompareFiles(dir, files)
	require.NoError(t, err)
	assert.True(t, result.UpToDate)
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	empty, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Empty(t, empty.Interfaces)

	m := &Manifest{GeneratorVersion: "v0.1.0"}
	m.Upsert(ManifestEntry{Name: "Message", Source: "message.yaml", Fingerprint: "abc", Files: []string{"message/message_gen.go"}})
	m.Upsert(ManifestEntry{Name: "Ledger", Source: "ledger.yaml", Fingerprint: "def"})
	m.Upsert(ManifestEntry{Name: "Message", Source: "message.yaml", Fingerprint: "xyz"})
	require.Len(t, m.Interfaces, 2)
	assert.Equal(t, "Ledger", m.Interfaces[0].Name)

	require.NoError(t, WriteManifest(dir, m))
	got, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "v0.1.0", got.GeneratorVersion)

	e, ok := got.Entry("Message")
	require.True(t, ok)
	assert.Equal(t, "xyz", e.Fingerprint)
	_, ok = got.Entry("Nope")
	assert.False(t, ok)
}
