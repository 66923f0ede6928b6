package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/praclabs/workinator/internal/offers"
)

func TestBuildURLShapes(t *testing.T) {
	t.Parallel()

	b := NewBuilder("")

	cases := []struct {
		name string
		q    offers.SearchQuery
		page int
		want string
	}{
		{
			name: "bare",
			q:    offers.SearchQuery{},
			page: 1,
			want: "https://www.pracuj.pl/praca",
		},
		{
			name: "keywords only",
			q:    offers.SearchQuery{Keywords: []string{"python", "developer"}},
			page: 1,
			want: "https://www.pracuj.pl/praca/python%20developer;kw",
		},
		{
			name: "city only",
			q:    offers.SearchQuery{City: "warszawa"},
			page: 1,
			want: "https://www.pracuj.pl/praca/warszawa;wp",
		},
		{
			name: "keywords and city",
			q:    offers.SearchQuery{Keywords: []string{"python"}, City: "warszawa"},
			page: 1,
			want: "https://www.pracuj.pl/praca/python;kw/warszawa;wp",
		},
		{
			name: "distance",
			q:    offers.SearchQuery{City: "warszawa", Distance: 50},
			page: 1,
			want: "https://www.pracuj.pl/praca/warszawa;wp?rd=50",
		},
		{
			name: "second page",
			q:    offers.SearchQuery{City: "warszawa", Distance: 50},
			page: 2,
			want: "https://www.pracuj.pl/praca/warszawa;wp?rd=50&pn=2",
		},
		{
			name: "diacritics slugged",
			q:    offers.SearchQuery{City: "Zielona Góra"},
			page: 1,
			want: "https://www.pracuj.pl/praca/zielona-gora;wp",
		},
		{
			name: "stroked letters slugged",
			q:    offers.SearchQuery{City: "Łódź"},
			page: 1,
			want: "https://www.pracuj.pl/praca/lodz;wp",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, b.Build(tc.q, tc.page))
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	t.Parallel()

	b := NewBuilder("")
	q := offers.SearchQuery{Keywords: []string{"go", "backend"}, City: "Kraków", Distance: 30}

	first := b.Build(q, 3)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, b.Build(q, 3))
	}
}

func TestBuildCustomBase(t *testing.T) {
	t.Parallel()

	b := NewBuilder("http://127.0.0.1:8080/praca/")
	got := b.Build(offers.SearchQuery{City: "gdynia"}, 1)
	require.Equal(t, "http://127.0.0.1:8080/praca/gdynia;wp", got)
}

func TestCitySlugPassthrough(t *testing.T) {
	t.Parallel()

	// The builder never validates city existence.
	require.Equal(t, "atlantyda", CitySlug("Atlantyda"))
	require.Equal(t, "", CitySlug(""))
}
