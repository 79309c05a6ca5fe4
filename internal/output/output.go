// Package output reads and writes the comments document.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gauthierbraillon/ytcomments/internal/aggregator"
)

// Write encodes doc as indented JSON. Comment text is written verbatim,
// without HTML escaping.
func Write(w io.Writer, doc aggregator.Document) error {
	doc = doc.Normalized()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode comments: %w", err)
	}
	return nil
}

// WriteFile writes doc to path atomically: readers see either the previous
// file or the complete new one.
func WriteFile(path string, doc aggregator.Document) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmp := f.Name()

	if err := Write(f, doc); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// ReadFile parses a document written by WriteFile.
func ReadFile(path string) (aggregator.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read output file: %w", err)
	}
	var doc aggregator.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse output file: %w", err)
	}
	return doc, nil
}
