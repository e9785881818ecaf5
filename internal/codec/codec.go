// Package codec converts the verse collection to and from its file formats.
//
// Both formats share one wire shape: a top-level list of objects carrying the
// string fields zh, en, refZh, refEn and an optional id.
package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jsamuelsen/verse-service/internal/domain"
)

var (
	// ErrMalformed means the document could not be parsed at all.
	ErrMalformed = errors.New("malformed document")

	// ErrNotAList means the document parsed but its top level is not a list.
	ErrNotAList = errors.New("document is not a list")

	// ErrUnknownFormat is returned by ForFormat for unsupported format names.
	ErrUnknownFormat = errors.New("unknown format")
)

// Entry is one decoded list element.
type Entry struct {
	Quotation domain.Quotation

	// Problem describes why the element is not a well-formed quotation.
	// Empty for complete objects.
	Problem string
}

// Importer parses a document into entries.
type Importer interface {
	Parse(r io.Reader) ([]Entry, error)
	Format() string
}

// Exporter writes a collection as a document.
type Exporter interface {
	Export(items []domain.Quotation, w io.Writer) error
	Format() string
	Extension() string
	ContentType() string
}

// Codec combines both directions for a single format.
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec registered under name. Matching ignores case.
func ForFormat(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// ForFilename picks the codec for an uploaded file by its extension. Names
// without a .yaml or .yml extension are read as JSON.
func ForFilename(name string) Codec {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return NewYAMLCodec()
	default:
		return NewJSONCodec()
	}
}

// Quotations drops the problem annotations.
func Quotations(entries []Entry) []domain.Quotation {
	out := make([]domain.Quotation, len(entries))
	for i, e := range entries {
		out[i] = e.Quotation
	}

	return out
}

// record is the wire shape of one quotation.
type record struct {
	ID    string `json:"id,omitempty"    yaml:"id,omitempty"`
	Zh    string `json:"zh"              yaml:"zh"`
	En    string `json:"en"              yaml:"en"`
	RefZh string `json:"refZh"           yaml:"refZh"`
	RefEn string `json:"refEn"           yaml:"refEn"`
}

func toRecords(items []domain.Quotation) []record {
	out := make([]record, len(items))
	for i, q := range items {
		out[i] = record{
			ID:    q.ID,
			Zh:    q.PrimaryText,
			En:    q.SecondaryText,
			RefZh: q.PrimaryReference,
			RefEn: q.SecondaryReference,
		}
	}

	return out
}

// fromList converts a generically decoded list. Elements that are not objects
// become blank quotations, and non-string fields are rendered as text.
func fromList(list []any) []Entry {
	entries := make([]Entry, len(list))

	for i, elem := range list {
		obj, ok := elem.(map[string]any)
		if !ok {
			entries[i] = Entry{Problem: fmt.Sprintf("element %d is not an object", i+1)}

			continue
		}

		entries[i] = fromObject(i+1, obj)
	}

	return entries
}

func fromObject(pos int, obj map[string]any) Entry {
	var problems []string

	field := func(key string, required bool) string {
		raw, present := obj[key]
		if !present || raw == nil {
			if required {
				problems = append(problems, key+" is missing")
			}

			return ""
		}

		s, isString := raw.(string)
		if !isString {
			problems = append(problems, key+" is not a string")

			return fmt.Sprint(raw)
		}

		if required && strings.TrimSpace(s) == "" {
			problems = append(problems, key+" is empty")
		}

		return s
	}

	entry := Entry{
		Quotation: domain.Quotation{
			ID:                 field("id", false),
			PrimaryText:        field("zh", true),
			SecondaryText:      field("en", true),
			PrimaryReference:   field("refZh", true),
			SecondaryReference: field("refEn", true),
		},
	}

	if len(problems) > 0 {
		entry.Problem = fmt.Sprintf("element %d: %s", pos, strings.Join(problems, ", "))
	}

	return entry
}
