package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type SourceType string

const (
	SourceTypePDF      SourceType = "pdf"
	SourceTypeText     SourceType = "text"
	SourceTypeMarkdown SourceType = "markdown"
	SourceTypeWeb      SourceType = "web"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileNotFound        = errors.New("file not found")
)

// SourceFile is a document a knowledge graph is extracted from.
//
// The actual file content is retrieved via the associated FileLoader.
type SourceFile struct {
	ID       string
	FilePath string
	FileType SourceType
	Loader   FileLoader
}

// NewSourceFileParams defines the input parameters for creating a new
// SourceFile.
type NewSourceFileParams struct {
	ID       string
	FilePath string
	Loader   FileLoader
}

// NewSourceFile creates a SourceFile and detects its type from the path.
func NewSourceFile(params NewSourceFileParams) (SourceFile, error) {
	fileType, err := DetectFileType(params.FilePath)
	if err != nil {
		return SourceFile{}, err
	}
	return SourceFile{
		ID:       params.ID,
		FilePath: params.FilePath,
		FileType: fileType,
		Loader:   params.Loader,
	}, nil
}

// GetText retrieves the text content of the file using its Loader.
//
// Example:
//
//	text, err := file.GetText(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(string(text))
func (f *SourceFile) GetText(ctx context.Context) ([]byte, error) {
	if f.Loader == nil {
		return nil, fmt.Errorf("no loader configured for %s", f.FilePath)
	}
	return f.Loader.GetFileText(ctx, *f)
}

// FileLoader defines the interface for loading the contents of a SourceFile.
// Implementations may load files from disk, memory, the web or cloud
// storage, or convert the bytes of another loader into text.
type FileLoader interface {
	GetFileText(ctx context.Context, file SourceFile) ([]byte, error)
}

// DetectFileType maps a file path or URL onto a SourceType. http and https
// URLs are web sources unless they point at a PDF.
func DetectFileType(path string) (SourceType, error) {
	lower := strings.ToLower(strings.TrimSpace(path))
	isURL := strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
	if isURL {
		lower = strings.SplitN(strings.SplitN(lower, "?", 2)[0], "#", 2)[0]
	}

	switch filepath.Ext(lower) {
	case ".pdf":
		return SourceTypePDF, nil
	case ".txt", ".text":
		if isURL {
			return SourceTypeWeb, nil
		}
		return SourceTypeText, nil
	case ".md", ".markdown":
		if isURL {
			return SourceTypeWeb, nil
		}
		return SourceTypeMarkdown, nil
	}

	if isURL {
		return SourceTypeWeb, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, filepath.Ext(lower))
}

// CacheKey generates a unique cache key for a SourceFile based on its ID and path.
func CacheKey(file SourceFile) string {
	return file.ID + ":" + file.FilePath
}
