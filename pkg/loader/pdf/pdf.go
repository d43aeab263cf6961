package pdf

import (
	"context"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader"
)

// PDFFileLoader extracts the text of PDF files. The raw PDF bytes come from
// the wrapped loader.
type PDFFileLoader struct {
	loader loader.FileLoader
	cache  loader.Cache
}

var _ loader.FileLoader = (*PDFFileLoader)(nil)

// NewPDFFileLoader creates a PDF loader that reads raw bytes from l.
func NewPDFFileLoader(l loader.FileLoader) *PDFFileLoader {
	return &PDFFileLoader{loader: l}
}

// GetFileText extracts text from a PDF file. Results are cached.
func (l *PDFFileLoader) GetFileText(ctx context.Context, file loader.SourceFile) ([]byte, error) {
	return l.cache.Load(loader.CacheKey(file), func() ([]byte, error) {
		content, err := l.loader.GetFileText(ctx, file)
		if err != nil {
			return nil, err
		}
		return parsePDF(ctx, content)
	})
}
