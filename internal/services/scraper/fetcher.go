// Package scraper fetches web pages, strips boilerplate and converts the
// main content to markdown for analysis.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/FellowTraveler/WebRAgent/internal/common"
	"github.com/FellowTraveler/WebRAgent/internal/httpclient"
	"github.com/FellowTraveler/WebRAgent/internal/models"
)

// boilerplateSelector matches elements removed before content extraction.
const boilerplateSelector = "nav, footer, header, aside, script, style, noscript, iframe, svg, button, form"

// mainContentSelector matches likely main-content containers, tried in
// order before falling back to body.
const mainContentSelector = "article, main, #content, .content, .article, .post"

const truncationNote = "... [Content truncated]"

// Fetcher downloads and cleans web pages. One Fetcher owns the bounded
// worker pool used for multi-URL fetches and the per-domain rate limiter.
type Fetcher struct {
	client     *http.Client
	limiter    *DomainLimiter
	converter  *md.Converter
	userAgent  string
	maxContent int
	maxBody    int64
	workers    int
	logger     arbor.ILogger
}

// NewFetcher creates a page fetcher from config.
func NewFetcher(cfg *common.ScraperConfig, logger arbor.ILogger) *Fetcher {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Fetcher{
		client:     httpclient.NewDefaultHTTPClient(cfg.RequestTimeout.Duration),
		limiter:    NewDomainLimiter(cfg.RequestDelay.Duration),
		converter:  md.NewConverter("", true, nil),
		userAgent:  cfg.UserAgent,
		maxContent: cfg.MaxContentLength,
		maxBody:    int64(cfg.MaxBodySize),
		workers:    workers,
		logger:     logger,
	}
}

// Fetch downloads one page and extracts its main content as markdown.
// Non-HTML responses return a page with Success=false rather than an error,
// so callers can distinguish unusable content from transport failures.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*models.FetchedPage, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL %q", rawURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}

	if err := f.limiter.Wait(ctx, parsed.Host); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch of %s returned status %d", rawURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "application/xhtml") {
		f.logger.Debug().
			Str("url", rawURL).
			Str("content_type", contentType).
			Msg("Skipping non-HTML content")
		return &models.FetchedPage{
			URL:         rawURL,
			Title:       pageTitleFromURL(parsed),
			Content:     fmt.Sprintf("[Non-HTML content: %s]", contentType),
			ContentType: contentType,
			Success:     false,
		}, nil
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = pageTitleFromURL(parsed)
	}

	doc.Find(boilerplateSelector).Remove()

	main := doc.Find(mainContentSelector).First()
	if main.Length() == 0 {
		main = doc.Find("body")
	}

	content := strings.TrimSpace(f.converter.Convert(main))
	if content == "" {
		return &models.FetchedPage{
			URL:         rawURL,
			Title:       title,
			Content:     "[No content extracted]",
			ContentType: contentType,
			Success:     false,
		}, nil
	}

	if f.maxContent > 0 && len(content) > f.maxContent {
		content = content[:f.maxContent] + truncationNote
	}

	f.logger.Debug().
		Str("url", rawURL).
		Int("content_length", len(content)).
		Msg("Fetched page")

	return &models.FetchedPage{
		URL:         rawURL,
		Title:       title,
		Content:     content,
		ContentType: contentType,
		Success:     true,
	}, nil
}

func pageTitleFromURL(u *url.URL) string {
	if base := path.Base(u.Path); base != "" && base != "/" && base != "." {
		return base
	}
	return u.Host
}
