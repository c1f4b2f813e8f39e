package token

import (
	mathrand "math/rand"
	"strings"
	"testing"
)

func TestTokenShape(t *testing.T) {
	iss := NewIssuer()
	for n := 0; n < 100; n++ {
		tok := iss.New()
		if !strings.HasPrefix(tok, "TH_") {
			t.Fatalf("missing prefix: %q", tok)
		}
		if len(tok) != 35 {
			t.Fatalf("wrong length %d: %q", len(tok), tok)
		}
		for _, c := range tok[3:] {
			if !strings.ContainsRune(alphabet, c) {
				t.Fatalf("character %q outside alphabet in %q", c, tok)
			}
		}
	}
}

func TestSuccessiveTokensDiffer(t *testing.T) {
	iss := NewIssuer()
	seen := make(map[string]bool)
	for n := 0; n < 1000; n++ {
		tok := iss.New()
		if seen[tok] {
			t.Fatalf("collision after %d tokens: %q", n, tok)
		}
		seen[tok] = true
	}
}

func TestDeterministicWithInjectedRand(t *testing.T) {
	a := NewIssuer(WithRand(mathrand.New(mathrand.NewSource(42))))
	b := NewIssuer(WithRand(mathrand.New(mathrand.NewSource(42))))
	if a.New() != b.New() {
		t.Fatal("same seed must produce the same token")
	}
}
