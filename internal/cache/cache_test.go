package cache

import (
	"testing"
	"time"
)

func TestPutLookup(t *testing.T) {
	c := New(time.Minute)

	c.Put("fp1", "https://alice.example/profile#me", 0)

	webid, ok := c.Lookup("fp1")
	if !ok || webid != "https://alice.example/profile#me" {
		t.Errorf("Lookup(fp1) = (%q, %v), want alice's webid", webid, ok)
	}

	if _, ok := c.Lookup("unknown"); ok {
		t.Error("Lookup(unknown) reported a hit")
	}
}

func TestExpiration(t *testing.T) {
	c := New(time.Minute)

	c.Put("fp1", "https://alice.example/profile#me", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Lookup("fp1"); ok {
		t.Error("expired entry still returned")
	}
}

func TestNeverExpires(t *testing.T) {
	c := New(time.Millisecond)

	c.Put("fp1", "https://alice.example/profile#me", -1)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Lookup("fp1"); !ok {
		t.Error("non-expiring entry was dropped")
	}
}

func TestDelete(t *testing.T) {
	c := New(time.Minute)

	c.Put("fp1", "https://alice.example/profile#me", 0)
	c.Delete("fp1")

	if _, ok := c.Lookup("fp1"); ok {
		t.Error("deleted entry still returned")
	}
}
