package cache

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// Prefix namespaces every key this package writes.
const Prefix = "udemy_ai_cache_"

// Hash is a 32-bit rolling hash (h = h*31 + c over UTF-16 code units) in
// base 36. It is fast and stable across runs, and it collides: a matching
// hash is never proof that two inputs are equal.
func Hash(s string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return strconv.FormatInt(v, 36)
}

// Key derives the storage key for a (url, transcript) pair.
func Key(url, transcript string) string {
	return Prefix + Hash(url) + "_" + Hash(transcript)
}

// urlSegment returns the url-hash part of a namespaced key.
func urlSegment(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, Prefix)
	if !ok {
		return "", false
	}
	seg, _, ok := strings.Cut(rest, "_")
	return seg, ok
}
