package favicon

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"

	httpclient "github.com/MarinaBrowser/marina/shell/internal/providers/http/client"
)

// Metadata is what a page resolves to
type Metadata struct {
	IconURL  string
	IconType string
	Title    string
}

// Fetcher resolves page metadata through the shared HTTP client
type Fetcher struct {
	client    *httpclient.Client
	maxPage   int64
	maxIcon   int64
	sanitizer *bluemonday.Policy
}

// NewFetcher creates a fetcher; byte caps guard against hostile pages
func NewFetcher(client *httpclient.Client, maxPage, maxIcon int64) *Fetcher {
	if maxPage <= 0 {
		maxPage = 1 << 20
	}
	if maxIcon <= 0 {
		maxIcon = 1 << 20
	}
	return &Fetcher{
		client:    client,
		maxPage:   maxPage,
		maxIcon:   maxIcon,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Resolve fetches pageURL and extracts its icon URL and title. The icon is
// downloaded and sniffed before the URL is reported, so callers can trust it
// points at an actual image.
func (f *Fetcher) Resolve(ctx context.Context, pageURL string) (*Metadata, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	body, _, err := f.client.Get(ctx, pageURL, f.maxPage)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	href, title := f.scanPage(body)

	iconURL, err := absoluteIconURL(base, href)
	if err != nil {
		return nil, err
	}

	iconType, err := f.VerifyIcon(ctx, iconURL)
	if err != nil {
		return nil, err
	}

	return &Metadata{IconURL: iconURL, IconType: iconType, Title: title}, nil
}

// VerifyIcon downloads an icon and sniffs its content; only image payloads pass
func (f *Fetcher) VerifyIcon(ctx context.Context, iconURL string) (string, error) {
	body, _, err := f.client.Get(ctx, iconURL, f.maxIcon)
	if err != nil {
		return "", fmt.Errorf("fetch icon: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty icon body")
	}

	mtype := mimetype.Detect(body)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("icon content type %s is not an image", mtype.String())
	}
	return mtype.String(), nil
}

// scanPage extracts the best icon href and the page title from raw HTML
func (f *Fetcher) scanPage(raw []byte) (href, title string) {
	doc, err := parseHTML(raw)
	if err == nil {
		href = iconFromDoc(doc)
		title = f.titleFromDoc(doc)
	}

	// Exotic or broken markup: try the XPath scan before giving up
	if href == "" {
		href = iconFromXPath(raw)
	}
	return href, title
}

// parseHTML decodes with charset detection, falling back to raw parsing
func parseHTML(raw []byte) (*goquery.Document, error) {
	detected := detectCharset(raw)

	utf8Reader, err := charset.NewReader(bytes.NewReader(raw), detected)
	if err != nil {
		return goquery.NewDocumentFromReader(bytes.NewReader(raw))
	}
	return goquery.NewDocumentFromReader(utf8Reader)
}

// detectCharset returns the best-guess charset of the payload
func detectCharset(data []byte) string {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(data)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

// iconFromDoc scans link elements for icon relations, preferring explicit
// rel=icon over apple-touch and vendor variants
func iconFromDoc(doc *goquery.Document) string {
	var icon, fallback string

	doc.Find("link[rel][href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		rel := strings.ToLower(s.AttrOr("rel", ""))
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || !strings.Contains(rel, "icon") {
			return true
		}

		switch rel {
		case "icon", "shortcut icon":
			icon = href
			return false
		default: // apple-touch-icon, mask-icon, fluid-icon, ...
			if fallback == "" {
				fallback = href
			}
		}
		return true
	})

	if icon != "" {
		return icon
	}
	return fallback
}

// iconFromXPath is the fallback scan for markup the selector engine rejects
func iconFromXPath(raw []byte) string {
	node, err := htmlquery.Parse(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	link := htmlquery.FindOne(node, "//link[contains(@rel, 'icon')]")
	if link == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.SelectAttr(link, "href"))
}

// titleFromDoc prefers <title>, falls back to og:title, and strips any markup
func (f *Fetcher) titleFromDoc(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("meta[property='og:title']").AttrOr("content", ""))
	}
	return strings.TrimSpace(f.sanitizer.Sanitize(title))
}

// absoluteIconURL resolves href against the page URL; empty href means the
// conventional /favicon.ico
func absoluteIconURL(base *url.URL, href string) (string, error) {
	if href == "" {
		href = "/favicon.ico"
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse icon href: %w", err)
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", fmt.Errorf("unsupported icon scheme %q", resolved.Scheme)
	}
	return resolved.String(), nil
}
