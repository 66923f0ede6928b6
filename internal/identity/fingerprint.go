// Package identity assigns stable fingerprints to parsed offer rows and
// reconciles them against the store, so repeated crawls never duplicate a
// posting.
package identity

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/praclabs/workinator/internal/offers"
)

// Fingerprint derives the dedup key for a raw offer row. The key is a hash
// over the folded company, position and city plus the path component of the
// detail link, so tracking parameters and capitalization changes never mint
// a new identity.
func Fingerprint(raw offers.RawOffer, hasher offers.Hasher) (string, error) {
	canonical := strings.Join([]string{
		offers.Fold(raw.Company),
		offers.Fold(raw.Position),
		offers.Fold(raw.City),
		sourcePath(raw.SourceURL),
	}, "|")

	digest, err := hasher.Hash([]byte(canonical))
	if err != nil {
		return "", fmt.Errorf("fingerprint offer: %w", err)
	}
	return digest, nil
}

// sourcePath strips the query string and fragment from a detail link. An
// unparseable link falls back to the raw string so the row still gets a
// deterministic identity.
func sourcePath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}
