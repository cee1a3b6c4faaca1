package store

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Jane Doe", "jane doe"},
		{"Jane_Doe", "jane doe"},
		{" jane  doe ", "jane doe"},
		{"José García", "jose garcia"},
		{"", ""},
		{"  ", ""},
		{"MARÍA__DELA_CRUZ", "maria dela cruz"},
	}

	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
