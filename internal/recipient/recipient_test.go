package recipient

import (
	"strings"
	"testing"
)

func TestParseValidNumbers(t *testing.T) {
	p := NewParser("51")

	got := p.Parse("987654321, 123456789")
	want := []ID{"51987654321", "51123456789"}

	if len(got) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %q at position %d, got %q", want[i], i, got[i])
		}
	}
}

func TestParseDropsMalformedSegments(t *testing.T) {
	p := NewParser("51")

	cases := map[string]int{
		"abc, 12345":               0,
		"":                         0,
		"   ":                      0,
		"9876543210":               0, // 10 digits
		"98765432":                 0, // 8 digits
		"98765432a":                0,
		"987654321,abc,123456789":  2,
		" 987654321 , 987654321 ":  2, // duplicates kept
		"987654321,,   ,123456789": 2,
	}

	for input, want := range cases {
		if got := p.Parse(input); len(got) != want {
			t.Errorf("Parse(%q): expected %d ids, got %v", input, want, got)
		}
	}
}

func TestParseCanonicalForm(t *testing.T) {
	p := NewParser("51")

	for _, id := range p.Parse("911222333,000000000,999999999") {
		s := string(id)
		if !strings.HasPrefix(s, "51") {
			t.Fatalf("id %q missing country code prefix", s)
		}
		if len(s) != 11 {
			t.Fatalf("id %q has unexpected length %d", s, len(s))
		}
	}
}

func TestParsePreservesInputOrder(t *testing.T) {
	p := NewParser("51")

	got := p.Parse("300000000,100000000,200000000")
	want := []ID{"51300000000", "51100000000", "51200000000"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order not preserved: got %v", got)
		}
	}
}
