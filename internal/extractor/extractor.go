package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/mktud1/arq503/internal/pkg/logger"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 5 << 20 // 5 MiB
)

// Page is the cleaned text of a fetched web page.
type Page struct {
	URL     string
	Title   string
	Content string
}

// Extractor fetches pages and reduces them to readable text.
type Extractor struct {
	httpClient *http.Client
	logger     *logger.Logger
}

// New creates an extractor with the given timeout (zero uses the default).
func New(timeout time.Duration, log *logger.Logger) *Extractor {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Extractor{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: log,
	}
}

// Extract fetches pageURL and returns its readable text content.
// Non-article pages fall back to a plain tag-stripping pass.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*Page, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", pageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "arq503-analysis/1.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", pageURL, err)
	}

	article, err := readability.FromReader(bytes.NewReader(body), parsed)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return &Page{
			URL:     pageURL,
			Title:   article.Title,
			Content: normalizeWhitespace(article.TextContent),
		}, nil
	}

	if e.logger != nil {
		e.logger.Debug("readability parse failed, falling back to plain text",
			zap.String("url", pageURL),
			zap.Error(err))
	}

	text, err := plainText(body)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", pageURL, err)
	}

	return &Page{
		URL:     pageURL,
		Title:   pageTitle(body),
		Content: text,
	}, nil
}

// plainText strips tags from raw HTML, skipping script and style subtrees.
func plainText(raw []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return normalizeWhitespace(sb.String()), nil
}

// pageTitle pulls the <title> text out of raw HTML, empty if absent.
func pageTitle(raw []byte) string {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return title
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
