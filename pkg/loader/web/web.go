package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/OFFIS-RIT/synthetix/backend/pkg/loader"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/corpix/uarand"
	"golang.org/x/net/html"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 20 << 20
)

// WebFileLoader loads content from web URLs and extracts readable text.
// For HTML pages, it uses readability to extract the main content. Other
// content types are returned as fetched, so a PDF loader can wrap it.
type WebFileLoader struct {
	client *http.Client
	cache  loader.Cache
}

var _ loader.FileLoader = (*WebFileLoader)(nil)

// NewWebFileLoader creates a new web loader with a default HTTP client.
func NewWebFileLoader() *WebFileLoader {
	return NewWebFileLoaderWithClient(&http.Client{Timeout: defaultTimeout})
}

// NewWebFileLoaderWithClient creates a web loader using client.
func NewWebFileLoaderWithClient(client *http.Client) *WebFileLoader {
	return &WebFileLoader{client: client}
}

// GetFileText fetches a URL and extracts readable text content. Results are
// cached.
func (l *WebFileLoader) GetFileText(ctx context.Context, file loader.SourceFile) ([]byte, error) {
	return l.cache.Load(loader.CacheKey(file), func() ([]byte, error) {
		return l.fetch(ctx, file.FilePath)
	})
}

func (l *WebFileLoader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", uarand.GetRandom())

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("got non-OK status code: %v", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return body, nil
	}

	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil {
		var builder strings.Builder
		if err := article.RenderText(&builder); err != nil {
			return nil, fmt.Errorf("failed to render article text: %w", err)
		}
		if text := strings.TrimSpace(builder.String()); text != "" {
			return []byte(text), nil
		}
	}

	// pages readability cannot handle still yield their visible text
	text, err := visibleText(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return []byte(text), nil
}

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

// visibleText returns the text nodes of an HTML document, one per line.
func visibleText(body []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				lines = append(lines, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(lines, "\n"), nil
}
