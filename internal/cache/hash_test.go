package cache

import (
	"strconv"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestHash_KnownValues(t *testing.T) {
	cases := map[string]string{
		"":    "0",
		"a":   "2p",
		"abc": "22ci",
	}
	for in, want := range cases {
		if got := Hash(in); got != want {
			t.Fatalf("Hash(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHash_UsesUTF16CodeUnits(t *testing.T) {
	// U+1F600 is a surrogate pair (0xD83D 0xDE00): 0xD83D*31 + 0xDE00.
	want := strconv.FormatInt(0xD83D*31+0xDE00, 36)
	if got := Hash("😀"); got != want {
		t.Fatalf("Hash(emoji) = %q, want %q", got, want)
	}
}

func TestHash_KnownCollision(t *testing.T) {
	if Hash("Aa") != Hash("BB") {
		t.Fatalf("expected Aa and BB to collide")
	}
}

func TestKey_Format(t *testing.T) {
	k := Key("https://x/lecture/1", "abc")
	if !strings.HasPrefix(k, Prefix) || !strings.HasSuffix(k, "_22ci") {
		t.Fatalf("unexpected key %q", k)
	}
	seg, ok := urlSegment(k)
	if !ok || seg != Hash("https://x/lecture/1") {
		t.Fatalf("urlSegment(%q) = %q,%v", k, seg, ok)
	}
	if _, ok := urlSegment("other_key"); ok {
		t.Fatalf("expected foreign key to be rejected")
	}
}

func TestHash_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		h := Hash(s)
		if h != Hash(s) {
			t.Fatalf("hash not deterministic")
		}
		if h == "" || strings.Trim(h, "0123456789abcdefghijklmnopqrstuvwxyz") != "" {
			t.Fatalf("hash %q is not base-36", h)
		}
		if strings.Contains(h, "_") {
			t.Fatalf("hash %q contains key separator", h)
		}
	})
}
