package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AnalysisRequest is the input of the orchestrator
type AnalysisRequest struct {
	CV                   CVRecord       `json:"cv"`
	JobDescription       string         `json:"jobDescription,omitempty" validate:"max=200000"`
	JobDescriptionFormat string         `json:"jobDescriptionFormat,omitempty" validate:"omitempty,oneof=text html"`
	TargetIndustry       string         `json:"targetIndustry,omitempty" validate:"omitempty,max=64"`
	AnalysisTypes        []AnalysisKind `json:"analysisTypes" validate:"required,min=1,max=8,dive,required"`
}

// HasJobDescription reports whether a non-blank job description was supplied
func (r AnalysisRequest) HasJobDescription() bool {
	return strings.TrimSpace(r.JobDescription) != ""
}

// Validate validates the AnalysisRequest shape. Unknown analysis kinds are
// accepted here; the orchestrator ignores them.
func (r *AnalysisRequest) Validate() error {
	return validate.Struct(r)
}

// KeywordRequest asks for keyword matching only
type KeywordRequest struct {
	CVText               string    `json:"cvText,omitempty"`
	CV                   *CVRecord `json:"cv,omitempty" validate:"required_without=CVText"`
	JobDescription       string    `json:"jobDescription" validate:"required,max=200000"`
	JobDescriptionFormat string    `json:"jobDescriptionFormat,omitempty" validate:"omitempty,oneof=text html"`
}

// Validate validates the KeywordRequest
func (r *KeywordRequest) Validate() error {
	return validate.Struct(r)
}

// BatchItem is one CV in a batch request
type BatchItem struct {
	ID string   `json:"id,omitempty" validate:"omitempty,max=128"`
	CV CVRecord `json:"cv"`
}

// BatchRequest scores many CVs against one job description
type BatchRequest struct {
	CVs                  []BatchItem    `json:"cvs" validate:"required,min=1,dive"`
	JobDescription       string         `json:"jobDescription,omitempty" validate:"max=200000"`
	JobDescriptionFormat string         `json:"jobDescriptionFormat,omitempty" validate:"omitempty,oneof=text html"`
	TargetIndustry       string         `json:"targetIndustry,omitempty" validate:"omitempty,max=64"`
	AnalysisTypes        []AnalysisKind `json:"analysisTypes,omitempty" validate:"omitempty,max=8"`
}

// Validate validates the BatchRequest
func (r *BatchRequest) Validate() error {
	return validate.Struct(r)
}
