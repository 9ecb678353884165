package common

import (
	"fmt"
	"io"
	"os"

	"cvscore/internal/errors"
	"cvscore/internal/formatters"
)

// CommandConfig carries the output flags shared by the file commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string

	// MaxFileSize limits every input file; zero disables the check
	MaxFileSize int64
	// Stdout receives the rendered output when OutputFile is empty; nil means os.Stdout
	Stdout io.Writer
}

// OutputHandler renders results through the formatter registry and writes
// them to a file or stdout
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
	stdout        io.Writer
}

func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger),
		registry:      formatters.GlobalRegistry,
		logger:        logger,
		stdout:        os.Stdout,
	}
}

// HandleOutput renders data in config.OutputFormat and writes it out
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile != "" {
		if err := oh.fileProcessor.WriteFile(config.OutputFile, output); err != nil {
			return err
		}
		oh.logger.Info("Output written successfully",
			"file", config.OutputFile, "format", config.OutputFormat)
		return nil
	}

	w := oh.stdout
	if config.Stdout != nil {
		w = config.Stdout
	}
	if _, err := io.WriteString(w, output); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWriteFailed, "Cannot write output", err)
	}
	return nil
}
