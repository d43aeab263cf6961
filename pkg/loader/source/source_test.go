package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader"
	ioloader "github.com/OFFIS-RIT/synthetix/backend/pkg/loader/io"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader/mem"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader/pdf"
)

func TestNew_WrapsPDF(t *testing.T) {
	raw := mem.NewMemoryFileLoader()

	file, err := New("1", "notes.pdf", raw)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := file.Loader.(*pdf.PDFFileLoader); !ok {
		t.Fatalf("Loader = %T, want *pdf.PDFFileLoader", file.Loader)
	}

	file, err = New("2", "notes.md", raw)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if file.Loader != loader.FileLoader(raw) {
		t.Fatalf("Loader = %T, want the raw loader", file.Loader)
	}

	if _, err := New("3", "notes.docx", raw); !errors.Is(err, loader.ErrUnsupportedFileType) {
		t.Fatalf("New() error = %v, want %v", err, loader.ErrUnsupportedFileType)
	}
}

func TestText_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cells.txt")
	if err := os.WriteFile(path, []byte("The cell membrane controls transport."), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := Text(context.Background(), "cells", path, ioloader.NewIOFileLoader())
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if got != "The cell membrane controls transport." {
		t.Fatalf("Text() = %q", got)
	}

	if _, err := Text(context.Background(), "missing", filepath.Join(t.TempDir(), "none.txt"), ioloader.NewIOFileLoader()); err == nil {
		t.Fatal("Text() expected error for missing file")
	}
}
