package render

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Cache stores rendered page images on disk, keyed by a hash of the PDF
// content plus page number and DPI, so re-runs skip rasterization.
type Cache struct {
	dir string

	mu     sync.Mutex
	hashes map[string]string // pdf path -> content hash
}

// NewCache creates a render cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir, hashes: make(map[string]string)}
}

// Get returns the cached image for a page, if present.
func (c *Cache) Get(pdfPath string, pageNum, dpi int) ([]byte, bool) {
	key, err := c.key(pdfPath, pageNum, dpi)
	if err != nil {
		return nil, false
	}
	data, err := os.ReadFile(filepath.Join(c.dir, key+".png"))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put stores a rendered page image.
func (c *Cache) Put(pdfPath string, pageNum, dpi int, data []byte) error {
	key, err := c.key(pdfPath, pageNum, dpi)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	return os.WriteFile(filepath.Join(c.dir, key+".png"), data, 0o644)
}

// key derives the cache filename for one page.
func (c *Cache) key(pdfPath string, pageNum, dpi int) (string, error) {
	hash, err := c.fileHash(pdfPath)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_p%04d_r%d", hash, pageNum, dpi), nil
}

// fileHash computes (and memoizes) a short content hash of the PDF.
func (c *Cache) fileHash(pdfPath string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hash, ok := c.hashes[pdfPath]; ok {
		return hash, nil
	}

	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash PDF: %w", err)
	}
	hash := hex.EncodeToString(h.Sum(nil))[:16]
	c.hashes[pdfPath] = hash
	return hash, nil
}
