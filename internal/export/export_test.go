package export

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/praclabs/workinator/internal/offers"
	"github.com/praclabs/workinator/internal/store/memory"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	base := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	seed := []offers.Offer{
		{
			Fingerprint: "fp-1",
			Company:     "Acme",
			Position:    "Python Developer",
			City:        "Warszawa",
			Salary:      "12 000 zł",
			SourceURL:   "https://www.pracuj.pl/praca/python,oferta,1",
			AddedAt:     base,
			SearchCity:  "Warszawa",
		},
		{
			Fingerprint:    "fp-2",
			Company:        "Beta, Inc.",
			Position:       "Go Developer",
			City:           "Kraków",
			SourceURL:      "https://www.pracuj.pl/praca/go,oferta,2",
			AddedAt:        base.Add(time.Hour),
			SearchCity:     "Kraków",
			SearchDistance: 25,
		},
	}
	for _, o := range seed {
		inserted, err := s.InsertIfAbsent(context.Background(), o)
		require.NoError(t, err)
		require.True(t, inserted)
	}
	return s
}

func TestOffersDelegatesFilters(t *testing.T) {
	t.Parallel()

	svc := NewService(seedStore(t))
	got, err := svc.Offers(context.Background(), offers.Filters{City: "kraków"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "fp-2", got[0].Fingerprint)
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	svc := NewService(seedStore(t))
	var sb strings.Builder
	n, err := svc.WriteCSV(context.Background(), &sb, offers.Filters{})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	records, err := csv.NewReader(strings.NewReader(sb.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, csvHeader, records[0])

	// Newest first; quoted comma in the company survives the round trip.
	require.Equal(t, "fp-2", records[1][0])
	require.Equal(t, "Beta, Inc.", records[1][1])
	require.Equal(t, "2026-08-30T09:00:00Z", records[1][7])
	require.Equal(t, "25", records[1][9])
	require.Equal(t, "fp-1", records[2][0])
}

func TestWriteCSVEmptyStoreStillWritesHeader(t *testing.T) {
	t.Parallel()

	svc := NewService(memory.New())
	var sb strings.Builder
	n, err := svc.WriteCSV(context.Background(), &sb, offers.Filters{})
	require.NoError(t, err)
	require.Equal(t, 0, n)
	require.Equal(t, strings.Join(csvHeader, ",")+"\n", sb.String())
}
