package similarity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Jon  Smith ", "jon smith"},
		{"O'Brien", "obrien"},
		{"Smith, Jr", "smith"},
		{"Robert Downey Jr.", "robert downey"},
		{"Henry VIII", "henry viii"}, // only the fixed suffix set is stripped
		{"MARTINEZ III", "martinez"},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Normalize(tc.in), "Normalize(%q)", tc.in)
	}
}

func TestPercent_IdentityIsAlways100(t *testing.T) {
	for _, s := range []string{"a", "jon smith", "thunder fc", ""} {
		require.Equal(t, 100, Percent(s, s))
	}
}

func TestPercent_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"jon", "john"},
		{"smith", "smyth"},
		{"thunder fc", "thunder"},
		{"", "abc"},
	}
	for _, p := range pairs {
		require.Equal(t, Percent(p[0], p[1]), Percent(p[1], p[0]), "Percent(%q, %q)", p[0], p[1])
	}
}

func TestPercent_KnownDistances(t *testing.T) {
	// jon -> john: one insertion over maxLen 4.
	require.Equal(t, 75, Percent("jon", "john"))
	// Entirely different strings of equal length score 0.
	require.Equal(t, 0, Percent("abc", "xyz"))
	// Empty vs non-empty scores 0.
	require.Equal(t, 0, Percent("", "abc"))
}

func TestNamePercent_SuffixAndCaseInsensitive(t *testing.T) {
	require.Equal(t, 100, NamePercent("Jon Smith Jr.", "jon   smith"))
	require.Equal(t, 100, NamePercent("O'Brien", "OBrien"))
}
