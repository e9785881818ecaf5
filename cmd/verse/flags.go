package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// formatValue is a --format flag restricted to the document formats.
type formatValue string

var _ pflag.Value = (*formatValue)(nil)

func (f *formatValue) String() string { return string(*f) }

func (f *formatValue) Set(s string) error {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "json", "yaml":
		*f = formatValue(v)
	case "yml":
		*f = "yaml"
	default:
		return fmt.Errorf("must be json or yaml, got %q", s)
	}

	return nil
}

func (f *formatValue) Type() string { return "format" }

// addFormatFlag registers --format on flags.
func addFormatFlag(flags *pflag.FlagSet, f *formatValue, usage string) {
	flags.VarP(f, "format", "f", usage)
}
