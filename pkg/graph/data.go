package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Data Serialization API
// =============================================================================

// MarshalData serializes Data to pretty-printed JSON bytes.
func MarshalData(d Data) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalData deserializes JSON bytes into Data.
// Edges must reference nodes present in the node list.
func UnmarshalData(data []byte) (Data, error) {
	var d Data
	if err := json.Unmarshal(data, &d); err != nil {
		return Data{}, fmt.Errorf("unmarshal graph data: %w", err)
	}
	idx := d.Index()
	for _, e := range d.Edges {
		if _, ok := idx[e.Source]; !ok {
			return Data{}, fmt.Errorf("edge %s: unknown source %s", e.ID, e.Source)
		}
		if _, ok := idx[e.Target]; !ok {
			return Data{}, fmt.Errorf("edge %s: unknown target %s", e.ID, e.Target)
		}
	}
	return d, nil
}

// WriteData writes Data as JSON to an io.Writer.
func WriteData(d Data, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteDataFile writes Data to a JSON file.
func WriteDataFile(d Data, path string) error {
	data, err := MarshalData(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadDataFile reads Data from a JSON file.
func ReadDataFile(path string) (Data, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalData(data)
}
