package mem

import (
	"context"
	"errors"
	"testing"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader"
)

func TestMemoryFileLoader(t *testing.T) {
	l := NewMemoryFileLoader()
	l.Put("upload-1", []byte("cell text"))

	got, err := l.GetFileText(context.Background(), loader.SourceFile{ID: "upload-1", FilePath: "cells.txt"})
	if err != nil || string(got) != "cell text" {
		t.Fatalf("GetFileText() = %q, %v", got, err)
	}

	l.Delete("upload-1")
	if _, err := l.GetFileText(context.Background(), loader.SourceFile{ID: "upload-1"}); !errors.Is(err, loader.ErrFileNotFound) {
		t.Fatalf("GetFileText() error = %v, want %v", err, loader.ErrFileNotFound)
	}
}
