package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jsamuelsen/verse-service/internal/domain"
)

// byteOrderMark is dropped from the start of imported documents.
var byteOrderMark = []byte("\ufeff")

// JSONCodec handles the JSON export file and the stored collection.
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier.
func (c *JSONCodec) Format() string {
	return "json"
}

// Extension returns the file extension used for exports.
func (c *JSONCodec) Extension() string {
	return ".json"
}

// ContentType returns the MIME type of exported documents.
func (c *JSONCodec) ContentType() string {
	return "application/json; charset=utf-8"
}

// Parse decodes a JSON document. The whole input must be a single value,
// optionally preceded by a UTF-8 byte order mark.
func (c *JSONCodec) Parse(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading JSON: %w", err)
	}

	var doc any
	if err := json.Unmarshal(bytes.TrimPrefix(data, byteOrderMark), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	list, ok := doc.([]any)
	if !ok {
		return nil, ErrNotAList
	}

	return fromList(list), nil
}

// Export writes the collection as a 2-space indented JSON list.
func (c *JSONCodec) Export(items []domain.Quotation, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(toRecords(items)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
