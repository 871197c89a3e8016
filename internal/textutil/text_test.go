package textutil

import "testing"

func TestNormalizeQuery(t *testing.T) {
	tests := map[string]string{
		"  Poor   Things ":    "Poor Things",
		"Бедные-\tнесчастные": "Бедные- несчастные",
		"Ame\u0301lie":        "Am\u00e9lie",
		"":                    "",
	}
	for in, want := range tests {
		if got := NormalizeQuery(in); got != want {
			t.Errorf("NormalizeQuery(%q) = %q want %q", in, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Фаворитка", 4); got != "Фаво" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Truncate("abc", 0); got != "" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestEllipsize(t *testing.T) {
	if got := Ellipsize("Поразительная история", 10); got != "Поразит..." {
		t.Fatalf("unexpected %q", got)
	}
	if got := Ellipsize("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestTitle(t *testing.T) {
	if got := Title("instagram reel"); got != "Instagram Reel" {
		t.Fatalf("unexpected %q", got)
	}
}
