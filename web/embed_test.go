package web

import (
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDictionaryBytes(t *testing.T) []byte {
	t.Helper()
	sub, err := StaticFS()
	require.NoError(t, err)
	data, err := fs.ReadFile(sub, SampleDictionary)
	require.NoError(t, err)
	return data
}

func TestSampleDictionaryIsValidJSON(t *testing.T) {
	data := sampleDictionaryBytes(t)

	var doc struct {
		Name         string           `json:"name"`
		Measurements []map[string]any `json:"measurements"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotEmpty(t, doc.Name)
	assert.NotEmpty(t, doc.Measurements)
}

func TestDictionaryFileSystemEmbedded(t *testing.T) {
	dfs, err := NewDictionaryFileSystem("")
	require.NoError(t, err)
	assert.True(t, dfs.Exists())

	f, err := dfs.Open("/anything.json")
	require.NoError(t, err)
	defer f.Close()

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, sampleDictionaryBytes(t), got)
}

func TestDictionaryFileSystemFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"disk","measurements":[]}`), 0644))

	dfs, err := NewDictionaryFileSystem(path)
	require.NoError(t, err)

	f, err := dfs.Open(SampleDictionary)
	require.NoError(t, err)
	defer f.Close()
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Contains(t, string(got), "disk")

	_, err = NewDictionaryFileSystem(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
