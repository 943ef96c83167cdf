package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"national mobile", "999 000 111", "+51999000111"},
		{"already e164", "+51999000111", "+51999000111"},
		{"foreign e164 preserved", "+31612345678", "+31612345678"},
		{"garbage returned trimmed", "  not-a-number  ", "not-a-number"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeE164(tc.input); got != tc.want {
				t.Errorf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
