package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadCorpusDir loads every .txt file in dir as a CorpusDocument titled by
// its file name without extension. Files are returned in name order.
func ReadCorpusDir(dir string) ([]CorpusDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	docs := make([]CorpusDocument, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		docs = append(docs, CorpusDocument{
			Title: strings.TrimSuffix(name, filepath.Ext(name)),
			Text:  string(data),
		})
	}
	return docs, nil
}
