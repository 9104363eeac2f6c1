package phone

import "testing"

func TestNormalizeCanonicalizesFrenchNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"06 12 34 56 78", "+33612345678"},
		{"0612345678", "+33612345678"},
		{"+33 6 12 34 56 78", "+33612345678"},
		{"0033612345678", "+33612345678"},
		{"01.42.68.53.00", "+33142685300"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range tests {
		got := Normalize(tc.input)
		if got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeUnparseableInputFallsBackToDigits(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"06 12", "+33612"},
		{"poste 42", "42"},
		{"+49 xx 123", "+49123"},
		{"no digits here", ""},
	}

	for _, tc := range tests {
		got := Normalize(tc.input)
		if got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"06 12 34 56 78",
		"+33612345678",
		"0033612345678",
		"06 12",
		"poste 42",
		"612",
		"garbage",
		"",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}
