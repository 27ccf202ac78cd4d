package cache

import (
	"strings"
	"testing"
)

func TestCreateKeyDeterministic(t *testing.T) {
	input := map[string]any{
		"goal":     "Learn Go",
		"task":     "Read the report",
		"language": "English",
	}

	k1 := CreateKey(input)
	k2 := CreateKey(input)
	if k1 != k2 {
		t.Errorf("CreateKey not idempotent: %q != %q", k1, k2)
	}
}

func TestCreateKeyOrderIndependent(t *testing.T) {
	// Maps built in different insertion orders must fingerprint identically.
	a := map[string]any{}
	a["goal"] = "Learn Go"
	a["task"] = "Read the report"
	a["nested"] = map[string]any{"x": 1, "y": 2}

	b := map[string]any{}
	b["nested"] = map[string]any{"y": 2, "x": 1}
	b["task"] = "Read the report"
	b["goal"] = "Learn Go"

	if CreateKey(a) != CreateKey(b) {
		t.Errorf("CreateKey depends on insertion order: %q != %q", CreateKey(a), CreateKey(b))
	}
}

func TestCreateKeyDistinguishesInputs(t *testing.T) {
	a := CreateKey(map[string]any{"goal": "Learn Go"})
	b := CreateKey(map[string]any{"goal": "Learn Rust"})
	if a == b {
		t.Errorf("different inputs produced the same key %q", a)
	}
}

func TestCreateKeyFormat(t *testing.T) {
	key := CreateKey(map[string]any{"goal": "Learn Go"})

	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		t.Fatalf("key %q missing hash_prefix structure", key)
	}
	if len(parts[0]) != 8 {
		t.Errorf("hash segment %q is not 8 hex chars", parts[0])
	}
	if !strings.Contains(parts[1], "Learn Go") {
		t.Errorf("prefix segment %q does not carry the serialized input", parts[1])
	}
}

func TestCreateKeyPrefixTruncation(t *testing.T) {
	long := strings.Repeat("task text ", 50)
	key := CreateKey(map[string]any{"task": long})

	idx := strings.Index(key, "_")
	if idx < 0 {
		t.Fatalf("key %q missing separator", key)
	}
	if got := len([]rune(key[idx+1:])); got != keyPrefixLen {
		t.Errorf("prefix length = %d, want %d", got, keyPrefixLen)
	}
}

func TestCreateKeyFallbackNeverPanics(t *testing.T) {
	// Channels are not JSON-serializable, forcing the fallback path.
	input := map[string]any{
		"goal": "Learn Go",
		"bad":  make(chan int),
	}

	key := CreateKey(input)
	if !strings.HasPrefix(key, "fallback_") {
		t.Errorf("key %q does not use the fallback form", key)
	}
	if !strings.HasSuffix(key, "bad-goal") {
		t.Errorf("fallback key %q does not end with sorted top-level key names", key)
	}
}

func TestRollingHashStable(t *testing.T) {
	if rollingHash([]byte("abc")) != rollingHash([]byte("abc")) {
		t.Error("rollingHash is not stable")
	}
	if rollingHash([]byte("abc")) == rollingHash([]byte("abd")) {
		t.Error("rollingHash does not distinguish close inputs")
	}
}
