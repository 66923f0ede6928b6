// Package query translates user search criteria into pracuj.pl listing URLs.
package query

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/praclabs/workinator/internal/offers"
)

// DefaultBaseURL is the listing root of the source site.
const DefaultBaseURL = "https://www.pracuj.pl/praca"

// Builder maps a SearchQuery and page index onto the source site's URL
// scheme. Build is pure and deterministic: identical input always yields a
// byte-identical URL. City names are never validated, the source site is the
// authority on what exists.
type Builder struct {
	baseURL string
}

// NewBuilder constructs a Builder. An empty baseURL selects DefaultBaseURL.
func NewBuilder(baseURL string) *Builder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Builder{baseURL: strings.TrimRight(baseURL, "/")}
}

// Build renders the listing URL for one page of the query. The site encodes
// keywords and location as path segments with role suffixes (";kw", ";wp"),
// the search radius as "rd" and the page index as "pn" (page 1 implicit).
func (b *Builder) Build(q offers.SearchQuery, page int) string {
	var sb strings.Builder
	sb.WriteString(b.baseURL)

	if kw := strings.Join(q.Keywords, " "); kw != "" {
		sb.WriteString("/")
		sb.WriteString(url.PathEscape(kw))
		sb.WriteString(";kw")
	}
	if slug := CitySlug(q.City); slug != "" {
		sb.WriteString("/")
		sb.WriteString(url.PathEscape(slug))
		sb.WriteString(";wp")
	}

	var params []string
	if q.Distance > 0 {
		params = append(params, fmt.Sprintf("rd=%d", q.Distance))
	}
	if page > 1 {
		params = append(params, fmt.Sprintf("pn=%d", page))
	}
	if len(params) > 0 {
		sb.WriteString("?")
		sb.WriteString(strings.Join(params, "&"))
	}
	return sb.String()
}

// CitySlug renders a city name as the site's location token: lowercased,
// diacritics stripped, spaces replaced with hyphens. Unknown cities pass
// through after the same transform.
func CitySlug(city string) string {
	return strings.ReplaceAll(offers.Fold(city), " ", "-")
}
