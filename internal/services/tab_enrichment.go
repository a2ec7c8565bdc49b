package services

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"tabswitch/internal/infrastructure/errors"
	"tabswitch/internal/types"
)

// TabEnrichmentService fetches page metadata for tabs whose derived
// URL-or-title is an absolute http(s) URL. It runs off the discovery
// path; discovery never waits on the network.
type TabEnrichmentService struct {
	collector *colly.Collector
}

// NewTabEnrichmentService creates an enrichment service with a shared
// base collector. Each preview runs on a clone so handlers never
// accumulate across calls.
func NewTabEnrichmentService() *TabEnrichmentService {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"),
	)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
	})
	c.SetRequestTimeout(10 * time.Second)

	return &TabEnrichmentService{
		collector: c,
	}
}

// Preview fetches the tab's page and extracts title, description, and
// canonical URL. Returns a validation-classified error when the tab's
// URL-or-title is not an absolute http(s) URL.
func (es *TabEnrichmentService) Preview(tab types.Tab) (*types.TabPreview, error) {
	pageURL, ok := previewURL(tab)
	if !ok {
		return nil, errors.NewAutomationError("preview_tab",
			fmt.Errorf("tab %s has no fetchable URL", tab.ID),
			errors.ErrCodeValidation)
	}

	preview := &types.TabPreview{
		TabID: tab.ID,
		URL:   pageURL,
	}

	var fetchErr error

	c := es.collector.Clone()

	c.OnHTML("title", func(e *colly.HTMLElement) {
		if preview.PageTitle == "" {
			preview.PageTitle = strings.TrimSpace(e.Text)
		}
	})

	c.OnHTML(`meta[name="description"]`, func(e *colly.HTMLElement) {
		preview.Description = strings.TrimSpace(e.Attr("content"))
	})

	c.OnHTML(`link[rel="canonical"]`, func(e *colly.HTMLElement) {
		preview.CanonicalURL = strings.TrimSpace(e.Attr("href"))
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("fetch failed: %w", err)
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, errors.NewAutomationError("preview_tab", err, errors.ErrCodeInternal)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, errors.NewAutomationError("preview_tab", fetchErr, errors.ErrCodeInternal)
	}

	preview.FetchedAt = time.Now()
	return preview, nil
}

// previewURL reports whether the tab's derived URL-or-title parses as
// an absolute http(s) URL worth fetching.
func previewURL(tab types.Tab) (string, bool) {
	candidate := strings.TrimSpace(tab.URLOrTitle)
	if candidate == "" {
		return "", false
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return candidate, true
}
