package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/possible/pkg/dag"
)

// Document is the persisted form of all graphs, keyed by graph ID.
type Document map[string]*dag.Graph

// Decode parses a document. Empty or whitespace-only input yields an empty
// document. Every graph is normalized; a graph stored without an ID takes
// its key.
func Decode(data []byte) (Document, error) {
	doc := make(Document)
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	for id, g := range doc {
		if g == nil {
			delete(doc, id)
			continue
		}
		if g.ID == "" {
			g.ID = id
		}
		g.Normalize()
	}
	return doc, nil
}

// Encode serializes a document with two-space indentation. Map keys are
// sorted by encoding/json, so equal documents encode to equal bytes.
func Encode(doc Document) ([]byte, error) {
	if doc == nil {
		doc = Document{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return append(data, '\n'), nil
}

// ReadDocument decodes a document from r. ReadDocument does not close r.
func ReadDocument(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data)
}

// WriteDocument encodes doc and writes it to w.
func WriteDocument(doc Document, w io.Writer) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ImportDocument reads the document stored at path.
func ImportDocument(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// ExportDocument writes doc to path, creating or truncating it.
func ExportDocument(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteDocument(doc, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
