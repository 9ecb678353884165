// Package ingest turns raw input files and request bodies into the values
// the analysis engine consumes: schema-checked CV records and plain-text job
// descriptions.
package ingest

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"cvscore/internal/errors"
	"cvscore/internal/types"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed cv.schema.json
var cvSchemaJSON []byte

var (
	schemaOnce sync.Once
	cvSchema   *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		cvSchema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(cvSchemaJSON))
	})
	return cvSchema, schemaErr
}

// SchemaJSON returns the JSON Schema CV documents are validated against
func SchemaJSON() []byte {
	return append([]byte(nil), cvSchemaJSON...)
}

// ValidateCVJSON checks a raw CV document against the CV schema
func ValidateCVJSON(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeSchemaViolation, "CV schema failed to load", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidCV, "CV is not valid JSON", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		violations = append(violations, fmt.Sprintf("%s: %s", field, desc.Description()))
	}

	return errors.NewValidationError(errors.ErrCodeSchemaViolation,
		fmt.Sprintf("CV does not match schema: %s", strings.Join(violations, "; ")), nil).
		WithContext("violations", violations)
}

// ParseCV validates and decodes a CV document
func ParseCV(data []byte) (types.CVRecord, error) {
	var cv types.CVRecord
	if err := ValidateCVJSON(data); err != nil {
		return cv, err
	}
	if err := json.Unmarshal(data, &cv); err != nil {
		return cv, errors.NewValidationError(errors.ErrCodeInvalidCV, "Failed to decode CV", err)
	}
	return cv, nil
}

// CollectCVFiles expands paths into a sorted list of CV files. Directories
// contribute their top-level *.json files; plain files are kept as given.
func CollectCVFiles(paths ...string) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
					fmt.Sprintf("File not found: %s", path), err)
			}
			return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("Cannot access: %s", path), err)
		}

		if !info.IsDir() {
			add(filepath.Clean(path))
			continue
		}

		matches, err := filepath.Glob(filepath.Join(path, "*.json"))
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("Cannot list directory: %s", path), err)
		}
		for _, m := range matches {
			add(m)
		}
	}

	if len(files) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "No CV files found", nil).
			WithContext("paths", paths)
	}

	sort.Strings(files)
	return files, nil
}
