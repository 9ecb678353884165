// Package batch scores many CVs against one job description concurrently
// and ranks them by ATS score.
package batch

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"cvscore/internal/analysis"
	"cvscore/internal/errors"
	"cvscore/internal/lexicon"
	"cvscore/internal/types"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when Options.Concurrency is not positive
const DefaultConcurrency = 4

// DefaultKinds are run when a batch names no analysis kinds
var DefaultKinds = []types.AnalysisKind{types.KindATSScore, types.KindContentQuality, types.KindLengthAnalysis}

// Item is one CV to score. Err marks an item that failed before analysis
// (for example an unreadable file); it is reported but not analyzed.
type Item struct {
	ID     string
	Source string
	CV     types.CVRecord
	Err    error
}

// Options control a batch run
type Options struct {
	JobDescription string
	Industry       string
	Kinds          []types.AnalysisKind
	Concurrency    int
	IncludeResults bool
}

// Runner runs batches with a fixed analyzer
type Runner struct {
	analyzer *analysis.Analyzer
	logger   *errors.Logger
}

// NewRunner creates a batch runner
func NewRunner(analyzer *analysis.Analyzer, logger *errors.Logger) *Runner {
	if analyzer == nil {
		analyzer = analysis.New(nil)
	}
	return &Runner{analyzer: analyzer, logger: logger}
}

// Run scores every item and returns the ranked report. Failures of single
// items are recorded in their entries; only cancellation aborts the run.
func (r *Runner) Run(ctx context.Context, items []Item, opts Options) (*types.BatchReport, error) {
	industry := lexicon.ResolveIndustry(opts.Industry)
	kinds := normalizeKinds(opts.Kinds)
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	entries := make([]types.BatchEntry, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = r.score(i, item, industry, kinds, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.NewAnalysisError(errors.ErrCodeAnalysisFailed, "Batch analysis was interrupted", err).
			WithContext("items", len(items))
	}

	rank(entries)

	report := &types.BatchReport{
		BatchID:     uuid.New().String(),
		Industry:    industry,
		GeneratedAt: time.Now().UTC(),
		Entries:     entries,
		Summary:     summarize(entries),
	}
	if strings.TrimSpace(opts.JobDescription) != "" {
		report.JobKeywords = r.analyzer.MatchKeywords("", opts.JobDescription).JobKeywords
	}

	if r.logger != nil {
		r.logger.Info("Batch analysis completed",
			"batch_id", report.BatchID,
			"count", report.Summary.Count,
			"failed", report.Summary.Failed,
			"average_ats", report.Summary.AverageATS)
	}
	return report, nil
}

func (r *Runner) score(i int, item Item, industry string, kinds []types.AnalysisKind, opts Options) types.BatchEntry {
	entry := types.BatchEntry{
		ID:     item.ID,
		Source: item.Source,
		Name:   strings.TrimSpace(item.CV.PersonalInfo.Name),
	}
	if entry.ID == "" {
		entry.ID = fmt.Sprintf("cv-%d", i+1)
	}

	if item.Err != nil {
		entry.Error = item.Err.Error()
		return entry
	}

	result := r.analyzer.AnalyzeCV(types.AnalysisRequest{
		CV:             item.CV,
		JobDescription: opts.JobDescription,
		TargetIndustry: industry,
		AnalysisTypes:  kinds,
	})
	if !result.Success {
		entry.Error = result.Error
		if r.logger != nil {
			r.logger.Warn("Batch entry failed", "id", entry.ID, "error", result.Error)
		}
		return entry
	}

	if result.ATSScore != nil {
		entry.ATSOverall = result.ATSScore.Overall
		entry.PassRate = result.ATSScore.PassRate
	}
	if result.ContentQuality != nil {
		entry.ContentOverall = result.ContentQuality.Overall
	}
	if result.LengthAnalysis != nil {
		entry.LengthScore = result.LengthAnalysis.Score
	}
	if result.KeywordAnalysis != nil {
		entry.KeywordMatch = result.KeywordAnalysis.OverallMatch
	}
	if opts.IncludeResults {
		entry.Result = result
	}
	return entry
}

// normalizeKinds falls back to the default kinds and makes sure the ATS score,
// which drives the ranking, is always computed
func normalizeKinds(kinds []types.AnalysisKind) []types.AnalysisKind {
	if len(kinds) == 0 {
		return slices.Clone(DefaultKinds)
	}
	out := slices.Clone(kinds)
	if !slices.Contains(out, types.KindATSScore) {
		out = append([]types.AnalysisKind{types.KindATSScore}, out...)
	}
	return out
}

// rank orders successful entries by ATS score (descending, ties by id in
// natural order) and places failed entries last with rank 0
func rank(entries []types.BatchEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if (a.Error == "") != (b.Error == "") {
			return a.Error == ""
		}
		if a.Error == "" && a.ATSOverall != b.ATSOverall {
			return a.ATSOverall > b.ATSOverall
		}
		return naturalLess(a.ID, b.ID)
	})

	for i := range entries {
		if entries[i].Error == "" {
			entries[i].Rank = i + 1
		}
	}
}

// naturalLess compares ids with digit runs taken as numbers, so cv-2 sorts
// before cv-10
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		switch {
		case da && db:
			na, ra := splitDigits(a)
			nb, rb := splitDigits(b)
			ta, tb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
			if len(ta) != len(tb) {
				return len(ta) < len(tb)
			}
			if ta != tb {
				return ta < tb
			}
			if len(na) != len(nb) {
				return len(na) < len(nb)
			}
			a, b = ra, rb
		case a[0] != b[0]:
			return a[0] < b[0]
		default:
			a, b = a[1:], b[1:]
		}
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func splitDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func summarize(entries []types.BatchEntry) types.BatchSummary {
	summary := types.BatchSummary{Count: len(entries)}

	total, scored := 0, 0
	for _, e := range entries {
		if e.Error != "" {
			summary.Failed++
			continue
		}
		total += e.ATSOverall
		scored++

		switch e.PassRate {
		case types.PassRateHigh:
			summary.High++
		case types.PassRateMedium:
			summary.Medium++
		default:
			summary.Low++
		}
	}

	if scored > 0 {
		summary.AverageATS = math.Round(float64(total)/float64(scored)*10) / 10
	}
	return summary
}
