package policy

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Parse reads a rights document. An empty document yields no statements.
func Parse(r io.Reader) (Statements, error) {
	var statements Statements
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&statements); err != nil {
		if errors.Is(err, io.EOF) {
			return Statements{}, nil
		}
		return nil, err
	}
	return statements, nil
}

// Marshal renders statements as a rights document
func Marshal(statements Statements) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode([]Statement(statements)); err != nil {
		return nil, fmt.Errorf("failed to encode rights document: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
