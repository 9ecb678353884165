package common

import (
	"testing"

	"cvscore/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestValidateOutputFormat(t *testing.T) {
	standard := []string{"json", "text", "markdown"}

	tests := []struct {
		name      string
		format    string
		supported []string
		wantErr   string
	}{
		{name: "json", format: "json", supported: standard},
		{name: "markdown", format: "markdown", supported: standard},
		{name: "not configured", format: "text", supported: []string{"json"},
			wantErr: "unsupported output format 'text'. Supported formats: [json]"},
		{name: "case sensitive", format: "JSON", supported: standard,
			wantErr: "unsupported output format 'JSON'"},
		{name: "empty format", format: "", supported: standard,
			wantErr: "unsupported output format ''"},
		{name: "configured without renderer", format: "xml", supported: []string{"json", "xml"},
			wantErr: "Supported formats: [json]"},
		{name: "no configuration allows registered", format: "text", supported: nil},
		{name: "no configuration rejects unknown", format: "csv", supported: nil,
			wantErr: "unsupported output format 'csv'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Equal(t, errors.ErrCodeInvalidFormat, errors.CodeOf(err))
		})
	}
}

func TestGetSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"markdown", "json"}, GetSupportedFormats([]string{"markdown", "yaml", "json", "json"}))
	assert.Equal(t, []string{"json", "markdown", "text"}, GetSupportedFormats(nil))
	assert.Empty(t, GetSupportedFormats([]string{"csv"}))
}

func BenchmarkValidateOutputFormat(b *testing.B) {
	supported := []string{"json", "text", "markdown"}
	for b.Loop() {
		_ = ValidateOutputFormat("json", supported)
	}
}
