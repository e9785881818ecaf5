package codec

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jsamuelsen/verse-service/internal/domain"
)

// YAMLCodec handles YAML import/export of the collection.
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec.
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier.
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Extension returns the file extension used for exports.
func (c *YAMLCodec) Extension() string {
	return ".yaml"
}

// ContentType returns the MIME type of exported documents.
func (c *YAMLCodec) ContentType() string {
	return "application/yaml; charset=utf-8"
}

// Parse decodes the first YAML document in r.
func (c *YAMLCodec) Parse(r io.Reader) ([]Entry, error) {
	var doc any

	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrMalformed)
		}

		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	list, ok := doc.([]any)
	if !ok {
		return nil, ErrNotAList
	}

	return fromList(list), nil
}

// Export writes the collection as a YAML sequence.
func (c *YAMLCodec) Export(items []domain.Quotation, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	if err := encoder.Encode(toRecords(items)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to flush YAML: %w", err)
	}

	return nil
}
