// Package parser extracts offer rows from pracuj.pl listing-page HTML.
//
// Parsing is driven by the site's data-test attributes rather than element
// positions, so cosmetic redesigns that keep the attributes intact do not
// break extraction. Rows missing a required field are skipped and counted,
// never fatal.
package parser

import (
	"bytes"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/praclabs/workinator/internal/offers"
)

// ListingParser implements offers.Parser over goquery documents.
type ListingParser struct {
	logger *zap.Logger
}

// New constructs a ListingParser.
func New(logger *zap.Logger) *ListingParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingParser{logger: logger}
}

// Parse extracts offer rows and the pagination ceiling from one listing page.
// Unreadable HTML or a missing offers container yields an empty page.
func (p *ListingParser) Parse(pageURL string, body []byte) offers.ListingPage {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		p.logger.Warn("unparseable listing page", zap.String("url", pageURL), zap.Error(err))
		return offers.ListingPage{}
	}

	page := offers.ListingPage{MaxPage: maxPageNumber(doc)}

	base, err := url.Parse(pageURL)
	if err != nil {
		base = nil
	}

	container := doc.Find("div#offers-list")
	if container.Length() == 0 {
		p.logger.Warn("offers container missing", zap.String("url", pageURL))
		return page
	}

	container.Find("div[data-test-offerid]").Each(func(_ int, row *goquery.Selection) {
		raw, ok := p.extractRow(row, base)
		if !ok {
			page.Skipped++
			return
		}
		page.Rows = append(page.Rows, raw)
	})

	p.logger.Debug("parsed listing page",
		zap.String("url", pageURL),
		zap.Int("rows", len(page.Rows)),
		zap.Int("skipped", page.Skipped),
		zap.Int("max_page", page.MaxPage),
	)
	return page
}

// extractRow pulls one offer out of its container element. Position title and
// detail link are required; everything else is best-effort.
func (p *ListingParser) extractRow(row *goquery.Selection, base *url.URL) (offers.RawOffer, bool) {
	title := row.Find(`h2[data-test="offer-title"]`).First()
	position := offers.CleanText(title.Find("a").First().Text())
	if position == "" {
		position = offers.CleanText(title.Text())
	}
	if position == "" {
		p.logger.Debug("row skipped: no position title")
		return offers.RawOffer{}, false
	}

	href, ok := title.Find("a").First().Attr("href")
	if !ok || href == "" {
		href, _ = row.Find(`a[data-test="link-offer"]`).First().Attr("href")
	}
	if href == "" {
		p.logger.Debug("row skipped: no detail link", zap.String("position", position))
		return offers.RawOffer{}, false
	}

	return offers.RawOffer{
		Position:  position,
		Company:   extractCompany(row),
		City:      extractCity(row),
		Salary:    offers.CleanText(row.Find(`span[data-test="offer-salary"]`).First().Text()),
		PostedAt:  offers.CleanText(row.Find(`[data-test="text-added"]`).First().Text()),
		SourceURL: resolveLink(base, href),
	}, true
}

func extractCompany(row *goquery.Selection) string {
	name := row.Find(`div[data-test="section-company"] h3[data-test="text-company-name"]`).First().Text()
	if c := offers.CleanText(name); c != "" {
		return c
	}
	// Some listing variants only carry the company in the logo alt text.
	alt, _ := row.Find(`img[data-test="image-responsive"]`).First().Attr("alt")
	return offers.CleanText(alt)
}

func extractCity(row *goquery.Selection) string {
	if c := offers.CleanText(row.Find(`h4[data-test="text-region"]`).First().Text()); c != "" {
		return c
	}
	// Multi-location offers list each location as its own item.
	return offers.CleanText(row.Find(`li[data-test^="offer-location-"]`).First().Text())
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func maxPageNumber(doc *goquery.Document) int {
	text := offers.CleanText(doc.Find(`span[data-test="top-pagination-max-page-number"]`).First().Text())
	if text == "" {
		return 0
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
