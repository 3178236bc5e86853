package diskcache

import (
	"path/filepath"
	"testing"
)

func TestCache_PutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	if _, ok, err := c.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = (_, %v, %v), want (_, false, nil)", ok, err)
	}

	if err := c.Put("key1", `[{"value":"two"}]`); err != nil {
		t.Fatalf("Put: %v", err)
	}
	value, ok, err := c.Get("key1")
	if err != nil || !ok {
		t.Fatalf("Get(key1) = (%q, %v, %v), want a hit", value, ok, err)
	}
	if value != `[{"value":"two"}]` {
		t.Fatalf("Get(key1) = %q, want the stored JSON", value)
	}

	if err := c.Put("key1", `[{"value":"three"}]`); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	value, _, _ = c.Get("key1")
	if value != `[{"value":"three"}]` {
		t.Fatalf("Get(key1) after overwrite = %q, want updated value", value)
	}
}
