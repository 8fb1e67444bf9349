package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/scriptscan/internal/books"
)

// corpusSchema describes a JSON corpus: an object of verse keys to text.
const corpusSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "propertyNames": {
    "pattern": "^[0-9A-Za-z]+(-[0-9A-Za-z]+)*-[1-9][0-9]*-[1-9][0-9]*$"
  },
  "additionalProperties": {"type": "string"}
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("corpus.json", strings.NewReader(corpusSchema)); err != nil {
			schemaErr = fmt.Errorf("failed to load corpus schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("corpus.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile corpus schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// LoadJSON reads a JSON object mapping verse keys to text.
func LoadJSON(r io.Reader, registry *books.Registry) (*Corpus, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	s, err := schema()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	var verses map[string]string
	if err := json.Unmarshal(data, &verses); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return New(verses, registry)
}
