package render

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCache_PutGet(t *testing.T) {
	dir := t.TempDir()

	pdf := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.4 fake content"), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := NewCache(filepath.Join(dir, "cache"))

	if _, ok := cache.Get(pdf, 0, 250); ok {
		t.Error("Get() on empty cache should miss")
	}

	img := []byte("png bytes")
	if err := cache.Put(pdf, 0, 250, img); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok := cache.Get(pdf, 0, 250)
	if !ok {
		t.Fatal("Get() should hit after Put()")
	}
	if string(got) != string(img) {
		t.Errorf("Get() = %q, want %q", got, img)
	}

	// Different page and DPI are distinct keys.
	if _, ok := cache.Get(pdf, 1, 250); ok {
		t.Error("different page should miss")
	}
	if _, ok := cache.Get(pdf, 0, 300); ok {
		t.Error("different dpi should miss")
	}
}

func TestCache_ContentKeyed(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(filepath.Join(dir, "cache"))

	pdf := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(pdf, []byte("version one"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := cache.Put(pdf, 0, 250, []byte("img")); err != nil {
		t.Fatal(err)
	}

	// A different file with different content misses even at the same path
	// shape. (The hash is memoized per path within one cache instance, so
	// use a fresh instance as a new process would.)
	if err := os.WriteFile(pdf, []byte("version two"), 0o644); err != nil {
		t.Fatal(err)
	}
	fresh := NewCache(filepath.Join(dir, "cache"))
	if _, ok := fresh.Get(pdf, 0, 250); ok {
		t.Error("changed content should miss")
	}
}
