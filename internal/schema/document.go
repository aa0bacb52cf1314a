package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML schema document from disk.
func Load(path string) (*Database, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema document: %w", err)
	}
	defer file.Close()

	db, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema document %s: %w", path, err)
	}
	return db, nil
}

// Decode parses a YAML schema document. Unknown keys are rejected so typos in
// hand-written documents do not silently drop columns or constraints.
func Decode(r io.Reader) (*Database, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var db Database
	if err := decoder.Decode(&db); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("schema document is empty")
		}
		return nil, err
	}
	return &db, nil
}

// Encode writes db as a YAML schema document.
func Encode(w io.Writer, db *Database) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(db); err != nil {
		return fmt.Errorf("failed to encode schema document: %w", err)
	}
	return encoder.Close()
}
