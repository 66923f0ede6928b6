package offers

import "testing"

func TestCleanText(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"basic trim", "  Hello World  ", "Hello World"},
		{"non-breaking spaces", "Hello  World", "Hello World"},
		{"whitespace run", "Hello   \n\t  World", "Hello World"},
		{"empty", "", ""},
		{"only whitespace", "   \n\t  ", ""},
		{"mixed", "  Python Developer\n\n  Remote\t\t  ", "Python Developer Remote"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanText(tc.in); got != tc.want {
				t.Errorf("CleanText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFold(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Senior Go Developer", "senior go developer"},
		{"strips diacritics", "Kraków", "krakow"},
		{"stroked l", "Łódź", "lodz"},
		{"collapses whitespace", "  Acme  Sp. z o.o. ", "acme sp. z o.o."},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Fold(tc.in); got != tc.want {
				t.Errorf("Fold(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFoldEquivalence(t *testing.T) {
	t.Parallel()

	if Fold("Kraków") != Fold("KRAKOW") {
		t.Fatal("expected diacritic and case variants to fold to the same value")
	}
	if Fold("Python  Developer") != Fold("python developer") {
		t.Fatal("expected whitespace variants to fold to the same value")
	}
}
