package render

import (
	"github.com/goccy/go-json"

	"github.com/matzehuels/lineageview/pkg/errors"
	"github.com/matzehuels/lineageview/pkg/explore"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// Formats lists every supported output format.
func Formats() []string {
	return []string{FormatJSON, FormatDOT, FormatSVG, FormatPNG}
}

// ValidateFormats checks that every format is supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, Formats()); err != nil {
			return err
		}
	}
	return nil
}

// Extension returns the file extension for a format.
func Extension(format string) string {
	return "." + format
}

// JSON encodes a view as indented JSON.
func JSON(v explore.View) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode view")
	}
	return append(data, '\n'), nil
}
