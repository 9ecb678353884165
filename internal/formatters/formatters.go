package formatters

import (
	"encoding/json"
	"fmt"
	"sort"

	"cvscore/internal/types"
)

// Data type names used as registry keys
const (
	TypeAny             = "any"
	TypeAnalysisResult  = "AnalysisResult"
	TypeKeywordAnalysis = "KeywordAnalysis"
	TypeBatchReport     = "BatchReport"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})
	registry.RegisterFormatter("text", TypeAnalysisResult, &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", TypeAnalysisResult, &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeKeywordAnalysis, &KeywordTextFormatter{})
	registry.RegisterFormatter("markdown", TypeKeywordAnalysis, &KeywordMarkdownFormatter{})
	registry.RegisterFormatter("text", TypeBatchReport, &BatchTextFormatter{})
	registry.RegisterFormatter("markdown", TypeBatchReport, &BatchMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	data = deref(data)
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// deref lets callers pass results by pointer or by value
func deref(data any) any {
	switch v := data.(type) {
	case *types.AnalysisResult:
		if v != nil {
			return *v
		}
	case *types.KeywordAnalysis:
		if v != nil {
			return *v
		}
	case *types.BatchReport:
		if v != nil {
			return *v
		}
	}
	return data
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisResult:
		return TypeAnalysisResult
	case types.KeywordAnalysis:
		return TypeKeywordAnalysis
	case types.BatchReport:
		return TypeBatchReport
	default:
		return TypeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
