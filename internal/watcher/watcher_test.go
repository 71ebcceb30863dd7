package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewBookFileEmittedAfterDebounce(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, Config{
		DebounceInterval: 20 * time.Millisecond,
		MinFileSizeBytes: 1,
		Extensions:       []string{"pdf"},
	}, 8)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	path := filepath.Join(root, "book.pdf")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-w.Events():
		if ev.Kind != NewBookFile || ev.Path != path {
			t.Errorf("got %+v, want NewBookFile %q", ev, path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for NewBookFile event")
	}
}

func TestDottedPathsIgnored(t *testing.T) {
	root := t.TempDir()
	if !isDotted(root, filepath.Join(root, ".hidden", "file.pdf")) {
		t.Errorf("expected dotted path component to be ignored")
	}
	if isDotted(root, filepath.Join(root, "visible", "file.pdf")) {
		t.Errorf("expected non-dotted path to pass")
	}
}

func TestMatchesBookFileRespectsMinSize(t *testing.T) {
	w := &Watcher{cfg: Config{Extensions: []string{"pdf"}, MinFileSizeBytes: 100}}
	if w.matchesBookFile("x.pdf", 10) {
		t.Errorf("file below min size should not match")
	}
	if !w.matchesBookFile("x.pdf", 200) {
		t.Errorf("file at/above min size should match")
	}
}
