package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cvscore/internal/analysis"
	"cvscore/internal/batch"
	cvErrors "cvscore/internal/errors"
	"cvscore/internal/export"
	"cvscore/internal/ingest"
	"cvscore/internal/observability"
	"cvscore/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// analyzeRequestBody keeps the CV raw so it can be checked against the schema
type analyzeRequestBody struct {
	CV                   json.RawMessage      `json:"cv"`
	JobDescription       string               `json:"jobDescription"`
	JobDescriptionFormat string               `json:"jobDescriptionFormat"`
	TargetIndustry       string               `json:"targetIndustry"`
	AnalysisTypes        []types.AnalysisKind `json:"analysisTypes"`
}

type keywordsRequestBody struct {
	CVText               string          `json:"cvText"`
	CV                   json.RawMessage `json:"cv"`
	JobDescription       string          `json:"jobDescription"`
	JobDescriptionFormat string          `json:"jobDescriptionFormat"`
}

type batchRequestBody struct {
	CVs []struct {
		ID string          `json:"id"`
		CV json.RawMessage `json:"cv"`
	} `json:"cvs"`
	JobDescription       string               `json:"jobDescription"`
	JobDescriptionFormat string               `json:"jobDescriptionFormat"`
	TargetIndustry       string               `json:"targetIndustry"`
	AnalysisTypes        []types.AnalysisKind `json:"analysisTypes"`
}

// createAnalyzeHandler serves POST /analyze
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeErrorResponse(w, "Method not allowed", "use POST", http.StatusMethodNotAllowed)
			return
		}

		ctx, span := om.Tracer("cvscore.api").Start(r.Context(), "api.analyze")
		defer span.End()

		var body analyzeRequestBody
		if err := parseJSONRequest(r, &body); err != nil {
			validationFailed(span, err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		if isJSONNull(body.CV) {
			validationFailed(span, fmt.Errorf("missing cv"))
			writeErrorResponse(w, "Missing CV", "cv field is required", http.StatusBadRequest)
			return
		}

		cv, err := ingest.ParseCV(body.CV)
		if err != nil {
			validationFailed(span, err)
			writeAppError(w, "Invalid CV", err, http.StatusBadRequest)
			return
		}

		jobDescription, err := s.normalizeJobDescription(body.JobDescription, body.JobDescriptionFormat)
		if err != nil {
			validationFailed(span, err)
			writeAppError(w, "Invalid job description", err, http.StatusBadRequest)
			return
		}

		req := types.AnalysisRequest{
			CV:                   cv,
			JobDescription:       jobDescription,
			JobDescriptionFormat: body.JobDescriptionFormat,
			TargetIndustry:       s.industryOrDefault(body.TargetIndustry),
			AnalysisTypes:        body.AnalysisTypes,
		}
		if len(req.AnalysisTypes) == 0 {
			req.AnalysisTypes = s.AppConfig.DefaultKinds()
		}
		if err := req.Validate(); err != nil {
			validationFailed(span, err)
			writeErrorResponse(w, "Invalid analysis request", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("analysis.industry", req.TargetIndustry),
			attribute.Int("analysis.types", len(req.AnalysisTypes)),
			attribute.Bool("analysis.has_job_description", req.HasJobDescription()),
		)

		start := time.Now()
		result := analysis.New(s.Lexicons.Current()).AnalyzeCV(req)
		duration := time.Since(start)

		now := time.Now().UTC()
		result.AnalysisID = uuid.NewString()
		result.AnalyzedAt = &now

		metrics := om.GetMetrics()
		industryAttr := attribute.String("industry", result.Industry)
		metrics.RecordBusinessMetric(ctx, observability.MetricCVAnalyzed, result.Success, om, industryAttr)
		atsOverall := -1
		if result.ATSScore != nil {
			atsOverall = result.ATSScore.Overall
			span.SetAttributes(attribute.Int("analysis.ats_overall", atsOverall))
		}
		metrics.RecordAnalysis(ctx, duration, atsOverall, om, industryAttr)

		if !result.Success {
			span.RecordError(stderrors.New(result.Error))
			s.Logger.Warn("CV analysis failed",
				"analysis_id", result.AnalysisID,
				"request_id", requestIDFromContext(ctx),
				"error", result.Error)
			writeJSON(w, http.StatusInternalServerError, result)
			return
		}

		s.Logger.Debug("CV analyzed",
			"analysis_id", result.AnalysisID,
			"request_id", requestIDFromContext(ctx),
			"industry", result.Industry,
			"duration_ms", duration.Milliseconds())

		writeJSON(w, http.StatusOK, result)
	}
}

// createKeywordsHandler serves POST /keywords
func (s *Server) createKeywordsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeErrorResponse(w, "Method not allowed", "use POST", http.StatusMethodNotAllowed)
			return
		}

		ctx, span := om.Tracer("cvscore.api").Start(r.Context(), "api.keywords")
		defer span.End()

		var body keywordsRequestBody
		if err := parseJSONRequest(r, &body); err != nil {
			validationFailed(span, err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		req := types.KeywordRequest{
			CVText:               body.CVText,
			JobDescription:       body.JobDescription,
			JobDescriptionFormat: body.JobDescriptionFormat,
		}
		if !isJSONNull(body.CV) {
			cv, err := ingest.ParseCV(body.CV)
			if err != nil {
				validationFailed(span, err)
				writeAppError(w, "Invalid CV", err, http.StatusBadRequest)
				return
			}
			req.CV = &cv
		}
		if err := req.Validate(); err != nil {
			validationFailed(span, err)
			writeErrorResponse(w, "Invalid keyword request", err.Error(), http.StatusBadRequest)
			return
		}

		jobDescription, err := s.normalizeJobDescription(req.JobDescription, req.JobDescriptionFormat)
		if err != nil {
			validationFailed(span, err)
			writeAppError(w, "Invalid job description", err, http.StatusBadRequest)
			return
		}

		cvText := req.CVText
		if req.CV != nil {
			cvText = analysis.ExtractAllText(*req.CV)
		}

		result := analysis.New(s.Lexicons.Current()).MatchKeywords(cvText, jobDescription)
		span.SetAttributes(
			attribute.Int("keywords.job_keywords", len(result.JobKeywords)),
			attribute.Int("keywords.overall_match", result.OverallMatch),
		)
		om.GetMetrics().RecordBusinessMetric(ctx, observability.MetricKeywordsMatched, true, om)

		writeJSON(w, http.StatusOK, result)
	}
}

// createBatchHandler serves POST /batch. Clients that accept the XLSX
// content type, or pass ?format=xlsx, receive a workbook instead of JSON.
func (s *Server) createBatchHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeErrorResponse(w, "Method not allowed", "use POST", http.StatusMethodNotAllowed)
			return
		}

		ctx, span := om.Tracer("cvscore.api").Start(r.Context(), "api.batch")
		defer span.End()

		var body batchRequestBody
		if err := parseJSONRequest(r, &body); err != nil {
			validationFailed(span, err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if s.MaxBatchSize > 0 && len(body.CVs) > s.MaxBatchSize {
			err := fmt.Errorf("batch of %d CVs exceeds the limit of %d", len(body.CVs), s.MaxBatchSize)
			validationFailed(span, err)
			writeErrorResponse(w, "Batch too large", err.Error(), http.StatusRequestEntityTooLarge)
			return
		}

		// Unparseable CVs become failed entries instead of failing the batch
		req := types.BatchRequest{
			JobDescription:       body.JobDescription,
			JobDescriptionFormat: body.JobDescriptionFormat,
			TargetIndustry:       s.industryOrDefault(body.TargetIndustry),
			AnalysisTypes:        body.AnalysisTypes,
		}
		items := make([]batch.Item, len(body.CVs))
		for i, entry := range body.CVs {
			item := batch.Item{ID: entry.ID}
			if isJSONNull(entry.CV) {
				item.Err = fmt.Errorf("cv field is required")
			} else if cv, err := ingest.ParseCV(entry.CV); err != nil {
				item.Err = err
			} else {
				item.CV = cv
			}
			items[i] = item
			req.CVs = append(req.CVs, types.BatchItem{ID: item.ID, CV: item.CV})
		}
		if err := req.Validate(); err != nil {
			validationFailed(span, err)
			writeErrorResponse(w, "Invalid batch request", err.Error(), http.StatusBadRequest)
			return
		}

		jobDescription, err := s.normalizeJobDescription(req.JobDescription, req.JobDescriptionFormat)
		if err != nil {
			validationFailed(span, err)
			writeAppError(w, "Invalid job description", err, http.StatusBadRequest)
			return
		}

		runner := batch.NewRunner(analysis.New(s.Lexicons.Current()), s.Logger)
		report, err := runner.Run(ctx, items, batch.Options{
			JobDescription: jobDescription,
			Industry:       req.TargetIndustry,
			Kinds:          req.AnalysisTypes,
			Concurrency:    s.AppConfig.Analysis.BatchConcurrency,
		})
		om.GetMetrics().RecordBusinessMetric(ctx, observability.MetricBatchProcessed, err == nil, om,
			attribute.Int("size", len(items)))
		if err != nil {
			span.RecordError(err)
			s.Logger.LogError(err, "Batch analysis failed", "request_id", requestIDFromContext(ctx))
			writeAppError(w, "Batch analysis failed", err, http.StatusServiceUnavailable)
			return
		}

		span.SetAttributes(
			attribute.String("batch.id", report.BatchID),
			attribute.Int("batch.count", report.Summary.Count),
			attribute.Int("batch.failed", report.Summary.Failed),
		)

		if wantsXLSX(r) {
			w.Header().Set("Content-Type", export.ContentType)
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="batch-%s.xlsx"`, report.BatchID))
			if err := export.WriteBatchReportTo(w, report); err != nil {
				span.RecordError(err)
				s.Logger.LogError(err, "Failed to write batch workbook", "batch_id", report.BatchID)
			}
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

// normalizeJobDescription converts HTML descriptions to text and enforces the
// configured length limit. Blank input stays blank.
func (s *Server) normalizeJobDescription(raw, format string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	if format == "" {
		format = ingest.FormatText
	}
	return ingest.NormalizeJobDescription(raw, format, s.AppConfig.Analysis.MaxJobDescriptionChars)
}

func (s *Server) industryOrDefault(industry string) string {
	if strings.TrimSpace(industry) == "" {
		return s.AppConfig.Analysis.DefaultIndustry
	}
	return industry
}

func wantsXLSX(r *http.Request) bool {
	return r.URL.Query().Get("format") == "xlsx" || strings.Contains(r.Header.Get("Accept"), export.ContentType)
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

func validationFailed(span trace.Span, err error) {
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.type", "validation"))
}

// writeAppError writes err's message, and its code when err is an AppError
func writeAppError(w http.ResponseWriter, title string, err error, statusCode int) {
	if appErr, ok := cvErrors.AsAppError(err); ok {
		writeErrorResponse(w, title, appErr.Summary(), statusCode)
		return
	}
	writeErrorResponse(w, title, err.Error(), statusCode)
}
