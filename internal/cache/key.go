// Package cache provides a persistent response cache for model invocations,
// with a permanent in-memory fallback when the storage engine misbehaves.
package cache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// keyPrefixLen is how many characters of the serialized input are appended
// to the hash so keys stay human-inspectable.
const keyPrefixLen = 100

// CreateKey builds a deterministic fingerprint for an invocation input.
// The input is serialized with keys sorted, hashed with a fast 32-bit
// rolling hash, and the first 100 characters of the serialization are
// appended for inspectability. CreateKey never panics: if the input cannot
// be serialized it falls back to a timestamp-based key built from the
// top-level key names. The fallback key does not repeat for the same
// logical input, so such inputs never hit the cache.
//
// The 32-bit hash plus prefix is deliberately not collision-resistant;
// inputs that differ only past the 100-character mark and collide on the
// hash map to the same key. Fast, low-uniqueness keys are the trade-off
// here, not an oversight.
func CreateKey(input map[string]any) string {
	serialized, err := canonicalJSON(input)
	if err != nil {
		return fallbackKey(input)
	}

	h := rollingHash([]byte(serialized))
	return fmt.Sprintf("%08x_%s", h, truncate(serialized, keyPrefixLen))
}

// canonicalJSON serializes input deterministically. encoding/json sorts map
// keys at every nesting level, which is exactly the determinism needed.
func canonicalJSON(input map[string]any) (string, error) {
	b, err := json.Marshal(input)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// rollingHash computes a fast non-cryptographic 32-bit hash (h = h*31 + b,
// wrapping) over the serialized bytes.
func rollingHash(data []byte) uint32 {
	var h uint32
	for _, b := range data {
		h = h*31 + uint32(b)
	}
	return h
}

// fallbackKey builds a best-effort key from the current time and the
// input's top-level key names, for inputs that fail serialization.
func fallbackKey(input map[string]any) string {
	names := make([]string, 0, len(input))
	for k := range input {
		names = append(names, k)
	}
	sort.Strings(names)
	return fmt.Sprintf("fallback_%d_%s", time.Now().UnixNano(), strings.Join(names, "-"))
}

// truncate returns at most n runes of s, never splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
