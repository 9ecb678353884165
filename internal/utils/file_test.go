package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "cv.json")
	require.NoError(t, os.WriteFile(small, []byte(`{"skills": []}`), 0600))

	tests := []struct {
		name    string
		file    string
		maxSize int64
		wantErr string
	}{
		{name: "readable file", file: small, maxSize: 1024},
		{name: "no size limit", file: small},
		{name: "empty name", file: "", wantErr: "cannot be empty"},
		{name: "missing", file: filepath.Join(dir, "missing.json"), wantErr: "does not exist"},
		{name: "directory", file: dir, wantErr: "is a directory"},
		{name: "too large", file: small, maxSize: 4, wantErr: "limit is 4 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputFile(tt.file, tt.maxSize)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateOutputFile(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, ValidateOutputFile(""))
	assert.NoError(t, ValidateOutputFile(filepath.Join(dir, "nested", "out.json")))
	assert.DirExists(t, filepath.Join(dir, "nested"))
	assert.ErrorContains(t, ValidateOutputFile(dir), "is a directory")
}

func TestFileKinds(t *testing.T) {
	assert.Equal(t, ".html", GetFileExtension("Posting.HTML"))
	assert.True(t, IsTextFile("cv.json"))
	assert.True(t, IsTextFile("job.htm"))
	assert.False(t, IsTextFile("cv.pdf"))
	assert.True(t, IsJSONFile("a/b/cv.JSON"))
	assert.False(t, IsJSONFile("cv.yaml"))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KiB", FormatFileSize(1536))
	assert.Equal(t, "10.0 MiB", FormatFileSize(10<<20))
}
