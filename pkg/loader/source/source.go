// Package source opens documents as text regardless of where their bytes
// are stored.
package source

import (
	"context"
	"fmt"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader/pdf"
)

// New creates a SourceFile whose loader yields text. raw provides the
// stored bytes of the file; PDFs get a text extraction layer on top of it.
func New(id, path string, raw loader.FileLoader) (loader.SourceFile, error) {
	file, err := loader.NewSourceFile(loader.NewSourceFileParams{
		ID:       id,
		FilePath: path,
		Loader:   raw,
	})
	if err != nil {
		return loader.SourceFile{}, err
	}
	if file.FileType == loader.SourceTypePDF {
		file.Loader = pdf.NewPDFFileLoader(raw)
	}
	return file, nil
}

// Text opens the file and returns its text.
func Text(ctx context.Context, id, path string, raw loader.FileLoader) (string, error) {
	file, err := New(id, path, raw)
	if err != nil {
		return "", err
	}
	b, err := file.GetText(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load %s: %w", path, err)
	}
	return string(b), nil
}
