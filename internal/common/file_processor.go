package common

import (
	"fmt"
	"os"
	"path/filepath"

	"cvscore/internal/errors"
	"cvscore/internal/utils"
)

// FileProcessor reads command inputs and writes command outputs, turning
// filesystem failures into AppErrors
type FileProcessor struct {
	logger  *errors.Logger
	maxSize int64
}

// NewFileProcessor creates a processor without an input size limit
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// WithMaxSize limits input files to maxSize bytes; zero or less means no limit
func (fp *FileProcessor) WithMaxSize(maxSize int64) *FileProcessor {
	fp.maxSize = maxSize
	return fp
}

// ReadBytes validates filename and returns its content
func (fp *FileProcessor) ReadBytes(filename string) ([]byte, error) {
	if err := utils.ValidateInputFile(filename, fp.maxSize); err != nil {
		code := errors.ErrCodeInvalidInputFile
		if info, statErr := os.Stat(filename); statErr == nil && fp.maxSize > 0 && info.Size() > fp.maxSize {
			code = errors.ErrCodeFileTooLarge
		}
		return nil, errors.NewValidationError(code, fmt.Sprintf("Invalid file %s", filename), err).
			WithContext("file", filename)
	}

	if !utils.IsTextFile(filename) {
		fp.logger.Warn("File may not be a text file", "filename", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	return data, nil
}

// ReadFile is ReadBytes for text content
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	data, err := fp.ReadBytes(filename)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ValidateAndReadFiles reads every file in order, stopping at the first failure
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]string, error) {
	contents := make([]string, 0, len(filenames))
	for _, filename := range filenames {
		content, err := fp.ReadFile(filename)
		if err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}
	return contents, nil
}

// ValidateOutputFile checks that filename can be written. Empty means stdout.
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidOutputFile,
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}

// WriteFile writes content to filename, creating parent directories
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError(errors.ErrCodeFileWriteFailed,
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}
	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWriteFailed,
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	fp.logger.Debug("File written", "file", filename, "bytes", len(content))
	return nil
}
