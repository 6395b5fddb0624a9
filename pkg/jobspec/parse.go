package jobspec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Parse decodes a Job Document from its wire JSON form. Unknown top-level
// fields are rejected per the schema contract.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode job document: %w", err)
	}
	return &doc, nil
}

// Marshal serialises a Job Document to its wire JSON form.
func Marshal(doc *Document) ([]byte, error) {
	return json.Marshal(doc)
}
