package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Page is one rendered document page ready for ingestion.
type Page struct {
	// DataURL is the rendered page image as a base64 data URL.
	DataURL string

	// Number is the zero-based page index within the source document.
	Number int

	// Source names the original document, e.g. its file name.
	Source string
}

// imageMIMETypes maps the page image extensions ingestion accepts.
var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// LoadPages reads a directory of pre-rendered page images and returns them
// as pages in lexical file order, which is expected to be page order. Files
// with non-image extensions are skipped.
func LoadPages(dir, source string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read page directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := imageMIMETypes[strings.ToLower(filepath.Ext(entry.Name()))]; ok {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no page images found in %s", dir)
	}

	pages := make([]Page, 0, len(names))
	for i, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read page image %s: %w", name, err)
		}
		mime := imageMIMETypes[strings.ToLower(filepath.Ext(name))]
		pages = append(pages, Page{
			DataURL: fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(raw)),
			Number:  i,
			Source:  source,
		})
	}
	return pages, nil
}

// IngestDirectory loads a directory of rendered pages and stores them.
// Re-ingesting the same directory appends duplicate points; callers that
// want a clean corpus recreate the collection first.
func (s *PageStore) IngestDirectory(ctx context.Context, dir, source string) (int, error) {
	pages, err := LoadPages(dir, source)
	if err != nil {
		return 0, err
	}
	if source == "" {
		for i := range pages {
			pages[i].Source = filepath.Base(dir)
		}
	}
	return s.AddPages(ctx, pages)
}
