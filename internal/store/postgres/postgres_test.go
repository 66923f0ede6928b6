package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/praclabs/workinator/internal/offers"
)

func testOffer() offers.Offer {
	return offers.Offer{
		Fingerprint:    "fp-1",
		Company:        "Acme",
		Position:       "Go Developer",
		City:           "Warszawa",
		Salary:         "18 000 zł",
		SourceURL:      "https://www.pracuj.pl/praca/go-developer,oferta,1",
		PostedAt:       "Opublikowana: 29 sierpnia 2026",
		AddedAt:        time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		SearchCity:     "Warszawa",
		SearchDistance: 10,
	}
}

func TestInsertIfAbsentInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	o := testOffer()
	mock.ExpectExec("INSERT INTO offers").
		WithArgs(
			o.Fingerprint, o.Company, o.Position, o.City, o.Salary,
			o.SourceURL, o.PostedAt, o.AddedAt, o.SearchCity, o.SearchDistance,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	inserted, err := store.InsertIfAbsent(context.Background(), o)
	require.NoError(t, err)
	require.True(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertIfAbsentReportsDuplicate(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	o := testOffer()
	mock.ExpectExec("INSERT INTO offers").
		WithArgs(
			o.Fingerprint, o.Company, o.Position, o.City, o.Salary,
			o.SourceURL, o.PostedAt, o.AddedAt, o.SearchCity, o.SearchDistance,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := store.InsertIfAbsent(context.Background(), o)
	require.NoError(t, err)
	require.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryBuildsFiltersAndScans(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	o := testOffer()
	rows := pgxmock.NewRows([]string{
		"fingerprint", "company", "position", "city", "salary",
		"source_url", "posted_at", "added_at", "search_city", "search_distance",
	}).AddRow(
		o.Fingerprint, o.Company, o.Position, o.City, o.Salary,
		o.SourceURL, o.PostedAt, o.AddedAt, o.SearchCity, o.SearchDistance,
	)

	mock.ExpectQuery("SELECT (.+) FROM offers WHERE city ILIKE \\$1 ORDER BY added_at DESC LIMIT \\$2").
		WithArgs("%warszawa%", 5).
		WillReturnRows(rows)

	got, err := store.Query(context.Background(), offers.Filters{City: "warszawa", Limit: 5})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, o, got[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBackendFailuresCarryIOKind(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock)
	require.NoError(t, err)

	o := testOffer()
	mock.ExpectExec("INSERT INTO offers").
		WithArgs(
			o.Fingerprint, o.Company, o.Position, o.City, o.Salary,
			o.SourceURL, o.PostedAt, o.AddedAt, o.SearchCity, o.SearchDistance,
		).
		WillReturnError(errors.New("connection reset by peer"))

	_, err = store.InsertIfAbsent(context.Background(), o)
	var se *offers.StoreError
	require.ErrorAs(t, err, &se)
	require.Equal(t, offers.StoreIOFailure, se.Kind)

	mock.ExpectQuery("SELECT (.+) FROM offers ORDER BY added_at DESC").
		WillReturnError(errors.New("connection reset by peer"))

	_, err = store.Query(context.Background(), offers.Filters{})
	se = nil
	require.ErrorAs(t, err, &se)
	require.Equal(t, offers.StoreIOFailure, se.Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSchemaIndexesFilterColumns(t *testing.T) {
	t.Parallel()

	for _, idx := range []string{
		"idx_offers_added_at",
		"idx_offers_company",
		"idx_offers_position",
		"idx_offers_city",
	} {
		require.Contains(t, schema, idx)
	}
}

func TestNewStoreWithPoolRequiresPool(t *testing.T) {
	t.Parallel()

	_, err := NewStoreWithPool(nil)
	require.Error(t, err)
}
