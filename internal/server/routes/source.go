package routes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/OFFIS-RIT/synthetix/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader/mem"
	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader/source"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const maxUploadSize = 50 << 20

var errNoSource = errors.New("no file, url or text provided")

// sourceRequest names a document by exactly one of an upload, a URL or
// inline text.
type sourceRequest struct {
	URL      string `json:"url" form:"url"`
	Text     string `json:"text" form:"text"`
	Filename string `json:"filename" form:"filename"`
	Strategy string `json:"strategy" form:"strategy"`
}

// loadError carries the HTTP status a failed load should be answered with.
type loadError struct {
	status int
	err    error
}

func (e *loadError) Error() string { return e.err.Error() }
func (e *loadError) Unwrap() error { return e.err }

func badSource(err error) error {
	return &loadError{status: http.StatusBadRequest, err: err}
}

func statusOf(err error) int {
	var le *loadError
	if errors.As(err, &le) {
		return le.status
	}
	return http.StatusInternalServerError
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxUploadSize {
		return nil, badSource(fmt.Errorf("file exceeds %d bytes", maxUploadSize))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, badSource(err)
	}
	defer f.Close()

	b, err := io.ReadAll(io.LimitReader(f, maxUploadSize))
	if err != nil {
		return nil, badSource(err)
	}
	return b, nil
}

// formFile returns the uploaded "file" of a multipart request, or nil.
func formFile(c echo.Context) *multipart.FileHeader {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil
	}
	return fh
}

// loadSource returns the text and the file name of the requested document.
// An upload wins over a URL, which wins over inline text.
func loadSource(ctx context.Context, app *middleware.App, req sourceRequest, fh *multipart.FileHeader) (string, string, error) {
	if fh != nil {
		data, err := readUpload(fh)
		if err != nil {
			return "", "", err
		}
		return textFromBytes(ctx, fh.Filename, data)
	}

	switch {
	case req.URL != "":
		if app.Web == nil {
			return "", "", &loadError{status: http.StatusServiceUnavailable, err: errors.New("web sources are disabled")}
		}
		if _, err := loader.DetectFileType(req.URL); err != nil {
			return "", "", badSource(err)
		}
		text, err := source.Text(ctx, gonanoid.Must(), req.URL, app.Web)
		if err != nil {
			return "", "", &loadError{status: http.StatusBadGateway, err: err}
		}
		name := req.Filename
		if name == "" {
			name = req.URL
		}
		return text, name, nil
	case req.Text != "":
		name := req.Filename
		if name == "" {
			name = "document.txt"
		}
		return req.Text, name, nil
	default:
		return "", "", badSource(errNoSource)
	}
}

func textFromBytes(ctx context.Context, filename string, data []byte) (string, string, error) {
	id := gonanoid.Must()
	files := mem.NewMemoryFileLoader()
	files.Put(id, data)

	text, err := source.Text(ctx, id, filepath.Base(filename), files)
	if err != nil {
		if errors.Is(err, loader.ErrUnsupportedFileType) {
			return "", "", badSource(err)
		}
		return "", "", &loadError{status: http.StatusUnprocessableEntity, err: err}
	}
	return text, filename, nil
}
