// Package page loads the HTML document a practice session is built from.
package page

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-shiori/dom"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// DefaultMaxBodySize caps how much HTML is read from a remote page.
const DefaultMaxBodySize = 10 * 1024 * 1024

// Page is a loaded HTML document. The raw bytes are kept so every render can
// work on a fresh tree.
type Page struct {
	Location string
	Title    string
	SiteName string
	// Lang is the lang attribute of the root element, possibly empty.
	Lang string
	raw  []byte
}

// Loader fetches pages from http(s) URLs or reads them from disk.
type Loader struct {
	Client      *http.Client
	MaxBodySize int64
	Logger      *slog.Logger
}

// NewLoader returns a Loader with a client using the given timeout.
func NewLoader(timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Loader{
		Client:      &http.Client{Timeout: timeout},
		MaxBodySize: DefaultMaxBodySize,
	}
}

// Load reads the page at location, which is either an http(s) URL or a file path.
func (l *Loader) Load(ctx context.Context, location string) (*Page, error) {
	var (
		body []byte
		err  error
		base *url.URL
	)
	if isRemote(location) {
		base, err = url.Parse(location)
		if err != nil {
			return nil, fmt.Errorf("parse url %q: %w", location, err)
		}
		body, err = l.fetch(ctx, location)
	} else {
		body, err = os.ReadFile(location)
		if abs, absErr := filepath.Abs(location); absErr == nil {
			base = &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
		}
	}
	if err != nil {
		return nil, err
	}
	return l.FromBytes(location, base, body)
}

// FromBytes builds a Page from already loaded HTML.
func (l *Loader) FromBytes(location string, base *url.URL, body []byte) (*Page, error) {
	p := &Page{Location: location, raw: body}
	doc, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if root := dom.QuerySelector(doc, "html"); root != nil {
		p.Lang = strings.TrimSpace(dom.GetAttribute(root, "lang"))
	}

	if base == nil {
		base = &url.URL{}
	}
	article, err := readability.FromReader(bytes.NewReader(body), base)
	if err != nil {
		l.logger().Debug("readability extraction failed, using <title>", "location", location, "error", err)
	} else {
		p.Title = article.Title
		p.SiteName = article.SiteName
	}
	if p.Title == "" {
		if t := dom.QuerySelector(doc, "title"); t != nil {
			p.Title = strings.TrimSpace(dom.TextContent(t))
		}
	}
	return p, nil
}

// Parse returns a fresh document tree for the page.
func (p *Page) Parse() (*html.Node, error) {
	doc, err := html.Parse(bytes.NewReader(p.raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p.Location, err)
	}
	return doc, nil
}

// Bytes returns the raw HTML.
func (p *Page) Bytes() []byte { return p.raw }

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Some sites block non-browser clients.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,pl;q=0.8")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: got status code %d", location, resp.StatusCode)
	}

	limit := l.MaxBodySize
	if limit <= 0 {
		limit = DefaultMaxBodySize
	}
	if resp.ContentLength > limit {
		return nil, fmt.Errorf("fetch %s: content-length %d exceeds limit of %d bytes", location, resp.ContentLength, limit)
	}
	// Read one byte past the limit to tell "exactly at limit" from "truncated".
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("fetch %s: body exceeded maximum size limit of %d bytes", location, limit)
	}
	return body, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
