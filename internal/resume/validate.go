package resume

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/institute-portal/internal/schemas"
)

// Validate checks doc against the résumé document schema.
func Validate(doc Document) error {
	return schemas.Validate(schemas.ResumeDocument, doc)
}

// ParseDocument decodes and validates a JSON document.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, &ValidationError{Field: "document", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := Validate(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// LoadDocument reads a JSON document from disk.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read résumé document %s: %w", path, err)
	}
	return ParseDocument(data)
}
