package common

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cvscore/internal/errors"
	"cvscore/internal/types"
)

type wordInput struct {
	name string
	text string
}

func countOperation(_ context.Context, in wordInput) (types.KeywordAnalysis, error) {
	return types.KeywordAnalysis{OverallMatch: len(strings.Fields(in.text))}, nil
}

func TestRunFileCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "jd.txt")
	if err := os.WriteFile(input, []byte("one two three"), 0600); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out", "result.json")

	var logged string
	err := RunFileCommand(
		context.Background(),
		nil,
		CommandConfig{OutputFile: output, OutputFormat: "json"},
		[]string{input},
		func(files, contents []string) (wordInput, error) {
			return wordInput{name: files[0], text: contents[0]}, nil
		},
		countOperation,
		func(in wordInput, _ CommandConfig) { logged = in.name },
	)
	if err != nil {
		t.Fatalf("RunFileCommand: %v", err)
	}
	if logged != input {
		t.Errorf("logDetails saw %q, want %q", logged, input)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `"overallMatch": 3`) {
		t.Errorf("unexpected output: %s", data)
	}
}

func TestRunFileCommandMissingFile(t *testing.T) {
	err := RunFileCommand(
		context.Background(),
		nil,
		CommandConfig{OutputFormat: "json"},
		[]string{filepath.Join(t.TempDir(), "missing.txt")},
		func(files, contents []string) (wordInput, error) { return wordInput{}, nil },
		countOperation,
		nil,
	)

	var appErr *errors.AppError
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !stderrors.As(err, &appErr) || appErr.Code != errors.ErrCodeInvalidInputFile {
		t.Errorf("expected %s, got %v", errors.ErrCodeInvalidInputFile, err)
	}
}

func TestOutputHandlerWritesToStdout(t *testing.T) {
	var buf bytes.Buffer
	handler := NewOutputHandler(nil)
	handler.stdout = &buf

	if err := handler.HandleOutput(types.KeywordAnalysis{OverallMatch: 40}, CommandConfig{OutputFormat: "text"}); err != nil {
		t.Fatalf("HandleOutput: %v", err)
	}
	if !strings.Contains(buf.String(), "Overall Match: 40%") {
		t.Errorf("unexpected output: %q", buf.String())
	}

	if err := handler.HandleOutput(types.KeywordAnalysis{}, CommandConfig{OutputFormat: "pdf"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestRunFileCommandRejectsLargeFiles(t *testing.T) {
	input := filepath.Join(t.TempDir(), "cv.json")
	if err := os.WriteFile(input, []byte(strings.Repeat("x", 64)), 0600); err != nil {
		t.Fatal(err)
	}

	called := false
	err := RunFileCommand(
		context.Background(),
		nil,
		CommandConfig{OutputFormat: "json", MaxFileSize: 32},
		[]string{input},
		func(files, contents []string) (wordInput, error) {
			called = true
			return wordInput{}, nil
		},
		countOperation,
		nil,
	)
	if got := errors.CodeOf(err); got != errors.ErrCodeFileTooLarge {
		t.Errorf("expected %s, got %v", errors.ErrCodeFileTooLarge, err)
	}
	if called {
		t.Error("input was built from an oversized file")
	}
}
