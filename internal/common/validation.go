package common

import (
	"fmt"
	"slices"

	"cvscore/internal/errors"
	"cvscore/internal/formatters"
)

// ValidateOutputFormat checks format against the configured formats and the
// formatter registry. An empty supported list allows every registered format.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	allowed := GetSupportedFormats(supportedFormats)
	if slices.Contains(allowed, format) {
		return nil
	}
	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("unsupported output format '%s'. Supported formats: %v", format, allowed), nil)
}

// GetSupportedFormats returns the configured formats that have a renderer,
// in configured order. An empty configuration yields every registered format.
func GetSupportedFormats(supportedFormats []string) []string {
	registered := formatters.GlobalRegistry.GetSupportedFormats()
	if len(supportedFormats) == 0 {
		return registered
	}
	formats := make([]string, 0, len(supportedFormats))
	for _, f := range supportedFormats {
		if slices.Contains(registered, f) && !slices.Contains(formats, f) {
			formats = append(formats, f)
		}
	}
	return formats
}
