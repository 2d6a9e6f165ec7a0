// Package web provides the embedded sample dictionary served when no
// dictionary file is configured.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
)

// SampleDictionary is the embedded document name.
const SampleDictionary = "FPrimeDeploymentTopologyAppDictionary.json"

//go:embed static
var staticFS embed.FS

// StaticFS returns a filesystem rooted at the static directory.
func StaticFS() (fs.FS, error) {
	return fs.Sub(staticFS, "static")
}

// DictionaryFileSystem serves either a configured dictionary file from disk
// or the embedded sample.
type DictionaryFileSystem struct {
	fs http.FileSystem
}

// NewDictionaryFileSystem serves the file at dictionaryFile, or the embedded
// sample when dictionaryFile is empty.
func NewDictionaryFileSystem(dictionaryFile string) (*DictionaryFileSystem, error) {
	if dictionaryFile != "" {
		if _, err := os.Stat(dictionaryFile); err != nil {
			return nil, err
		}
		return &DictionaryFileSystem{fs: singleFile{path: dictionaryFile}}, nil
	}

	sub, err := StaticFS()
	if err != nil {
		return nil, err
	}
	return &DictionaryFileSystem{fs: http.FS(sub)}, nil
}

// Open opens the dictionary document. Every name resolves to the same file.
func (d *DictionaryFileSystem) Open(name string) (http.File, error) {
	return d.fs.Open("/" + SampleDictionary)
}

// Exists reports whether the dictionary document can be opened.
func (d *DictionaryFileSystem) Exists() bool {
	f, err := d.Open(SampleDictionary)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// singleFile is an http.FileSystem exposing one file from disk. The file is
// reopened on every request so edits are served immediately.
type singleFile struct {
	path string
}

func (s singleFile) Open(string) (http.File, error) {
	return os.Open(s.path)
}
