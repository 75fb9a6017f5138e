package analyzer

import (
	"strings"
	"testing"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("The quick brown fox")
	b := Fingerprint("The quick brown fox")
	if a != b {
		t.Errorf("same text hashed differently: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("fingerprint length = %d, want 64 hex chars", len(a))
	}
	if strings.ToLower(a) != a {
		t.Errorf("fingerprint not lowercase hex: %s", a)
	}
}

func TestFingerprintIgnoresCaseAndPunctuation(t *testing.T) {
	if Fingerprint("Hello, World!") != Fingerprint("hello world") {
		t.Error("case/punctuation variants hashed differently")
	}
	if Fingerprint("one two three") == Fingerprint("one two four") {
		t.Error("different content produced the same fingerprint")
	}
}

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Hello, World!", "hello world"},
		{"A1-B2_C3", "a1b2c3"},
		{"tabs\tand\nnewlines", "tabs\tand\nnewlines"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeText(c.in); got != c.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
