package dictionary

import (
	"context"
	"os"

	"github.com/fidde/fprime_openmct/pkg/models"
)

// FileLoader reads the dictionary from a local file on every Load.
type FileLoader struct {
	path string
}

// NewFileLoader creates a loader for the document at path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

// Load reads and parses the file.
func (l *FileLoader) Load(ctx context.Context) (*models.Dictionary, error) {
	if err := ctx.Err(); err != nil {
		return nil, &models.FetchError{Source: l.path, Err: err}
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, &models.FetchError{Source: l.path, Err: err}
	}
	return Parse(data, l.path)
}
