package diskcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetGetRoundTrip(t *testing.T) {
	c, err := Open(t.TempDir(), "crossref", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("10.1/abc", map[string]string{"title": "Go in Action"}); err != nil {
		t.Fatal(err)
	}

	var got map[string]string
	ok, err := c.Get("10.1/abc", &got)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got["title"] != "Go in Action" {
		t.Errorf("Get = %v, ok=%v", got, ok)
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	c, err := Open(t.TempDir(), "crossref", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	ok, err := c.Get("missing", &got)
	if err != nil || ok {
		t.Errorf("expected miss, got ok=%v err=%v", ok, err)
	}
}

func TestGetExpiredEntryRemoved(t *testing.T) {
	root := t.TempDir()
	c, err := Open(root, "crossref", time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(10 * time.Millisecond)

	var got string
	ok, err := c.Get("k", &got)
	if err != nil || ok {
		t.Errorf("expected expired miss, got ok=%v err=%v", ok, err)
	}

	entries, _ := os.ReadDir(filepath.Join(root, "crossref"))
	if len(entries) != 0 {
		t.Errorf("expired entry should be removed, found %d files", len(entries))
	}
}

func TestCorruptEntryTreatedAsMiss(t *testing.T) {
	root := t.TempDir()
	c, err := Open(root, "crossref", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	p := c.path("k")
	if err := os.WriteFile(p, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	var got string
	ok, err := c.Get("k", &got)
	if err != nil || ok {
		t.Errorf("expected corrupt entry treated as miss, got ok=%v err=%v", ok, err)
	}
}

func TestInvalidateRemovesEntry(t *testing.T) {
	c, err := Open(t.TempDir(), "crossref", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	if err := c.Invalidate("k"); err != nil {
		t.Fatal(err)
	}
	var got string
	ok, _ := c.Get("k", &got)
	if ok {
		t.Errorf("expected miss after invalidate")
	}
}
