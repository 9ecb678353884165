package types

import "time"

// PersonalInfo holds the contact and headline block of a CV
type PersonalInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Summary  string `json:"summary"`
	LinkedIn string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
	Photo    string `json:"photo,omitempty"`
}

// Experience is a single work history entry
type Experience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// Education is a single education entry
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Location    string `json:"location"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// Certification is a single certification entry
type Certification struct {
	Name        string `json:"name"`
	Issuer      string `json:"issuer"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// CVRecord is the structured CV consumed by the analysis engine.
// Every list may be empty and every string may be blank.
type CVRecord struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         []string        `json:"skills"`
	Certifications []Certification `json:"certifications"`
}

// AnalysisKind names one analysis the orchestrator can run
type AnalysisKind string

const (
	KindATSScore       AnalysisKind = "ats_score"
	KindContentQuality AnalysisKind = "content_quality"
	KindLengthAnalysis AnalysisKind = "length_analysis"
	KindDesignScore    AnalysisKind = "design_score"
)

// AllKinds lists every recognized analysis kind in dispatch order
var AllKinds = []AnalysisKind{KindATSScore, KindContentQuality, KindLengthAnalysis, KindDesignScore}

// Known reports whether the kind is recognized by the orchestrator
func (k AnalysisKind) Known() bool {
	switch k {
	case KindATSScore, KindContentQuality, KindLengthAnalysis, KindDesignScore:
		return true
	}
	return false
}

// Industry tags
const (
	IndustryTechnology = "technology"
	IndustryHealthcare = "healthcare"
	IndustryFinance    = "finance"
	IndustryMarketing  = "marketing"
	IndustryEducation  = "education"
)

// Importance levels for job keywords
const (
	ImportanceCritical   = "Critical"
	ImportanceImportant  = "Important"
	ImportanceNiceToHave = "Nice-to-have"
)

// ATS pass rates
const (
	PassRateHigh   = "High"
	PassRateMedium = "Medium"
	PassRateLow    = "Low"
)

// Jargon levels
const (
	JargonHigh   = "High"
	JargonMedium = "Medium"
	JargonLow    = "Low"
)

// Length actions and priorities
const (
	LengthActionExpand   = "expand"
	LengthActionCondense = "condense"
	LengthActionOptimal  = "optimal"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	SectionStatusOptimal = "optimal"
)

const (
	SeverityWarning = "warning"

	// DefaultExperienceItem labels an experience entry without a title
	DefaultExperienceItem = "Experience item"
)

// KeywordEntry is one ranked job keyword and how the CV covers it
type KeywordEntry struct {
	Keyword    string  `json:"keyword"`
	Frequency  int     `json:"frequency"`
	Importance string  `json:"importance"`
	CVMatches  int     `json:"cvMatches"`
	Density    float64 `json:"density"`
}

// KeywordAnalysis is the result of matching a CV against a job description
type KeywordAnalysis struct {
	JobKeywords  []KeywordEntry `json:"jobKeywords"`
	Missing      []string       `json:"missing"`
	Underused    []string       `json:"underused"`
	Overused     []string       `json:"overused"`
	OverallMatch int            `json:"overallMatch"`
}

// ATSBreakdown holds the ATS sub-scores
type ATSBreakdown struct {
	Formatting  int `json:"formatting"`
	Keywords    int `json:"keywords"`
	Structure   int `json:"structure"`
	Readability int `json:"readability"`
	FileFormat  int `json:"fileFormat"`
}

// ATSScore is the applicant-tracking-system compatibility score
type ATSScore struct {
	Overall         int          `json:"overall"`
	Breakdown       ATSBreakdown `json:"breakdown"`
	Recommendations []string     `json:"recommendations"`
	PassRate        string       `json:"passRate"`
}

// GrammarIssue is one triggered grammar rule
type GrammarIssue struct {
	Rule       string `json:"rule"`
	Text       string `json:"text"`
	Suggestion string `json:"suggestion"`
	Severity   string `json:"severity"`
	Position   int    `json:"position"`
	Count      int    `json:"count"`
}

// GrammarAnalysis is the grammar sub-analysis
type GrammarAnalysis struct {
	Score  int            `json:"score"`
	Issues []GrammarIssue `json:"issues"`
}

// ImpactAnalysis is the achievement/impact sub-analysis
type ImpactAnalysis struct {
	Score                 int                 `json:"score"`
	WeakVerbs             []string            `json:"weakVerbs"`
	SuggestedVerbs        map[string][]string `json:"suggestedVerbs,omitempty"`
	MissingQuantification []string            `json:"missingQuantification"`
	PassiveVoiceCount     int                 `json:"passiveVoiceCount"`
}

// ClarityAnalysis is the readability/clarity sub-analysis
type ClarityAnalysis struct {
	Score             int     `json:"score"`
	AvgSentenceLength float64 `json:"avgSentenceLength"`
	ReadabilityGrade  float64 `json:"readabilityGrade"`
	JargonLevel       string  `json:"jargonLevel"`
}

// ContentQuality averages the grammar, impact and clarity analyses
type ContentQuality struct {
	Overall int             `json:"overall"`
	Grammar GrammarAnalysis `json:"grammar"`
	Impact  ImpactAnalysis  `json:"impact"`
	Clarity ClarityAnalysis `json:"clarity"`
}

// LengthBenchmark is the per-industry word count target
type LengthBenchmark struct {
	Ideal int `json:"ideal" yaml:"ideal"`
	Min   int `json:"min" yaml:"min"`
	Max   int `json:"max" yaml:"max"`
}

// CurrentLength describes the measured length of a CV
type CurrentLength struct {
	WordCount int `json:"wordCount"`
	PageCount int `json:"pageCount"`
}

// LengthRecommendations is the expand/condense/optimal verdict
type LengthRecommendations struct {
	Action      string   `json:"action"`
	Suggestions []string `json:"suggestions"`
	Priority    string   `json:"priority"`
}

// SectionLength compares one section's word count with its target
type SectionLength struct {
	Current     int    `json:"current"`
	Recommended int    `json:"recommended"`
	Status      string `json:"status"`
}

// SectionBreakdown holds per-section word counts
type SectionBreakdown struct {
	Summary    SectionLength `json:"summary"`
	Experience SectionLength `json:"experience"`
	Education  SectionLength `json:"education"`
	Skills     SectionLength `json:"skills"`
}

// LengthAnalysis is the result of comparing CV length with industry benchmarks
type LengthAnalysis struct {
	Industry         string                `json:"industry"`
	Score            int                   `json:"score"`
	CurrentLength    CurrentLength         `json:"currentLength"`
	Benchmark        LengthBenchmark       `json:"benchmark"`
	Recommendations  LengthRecommendations `json:"recommendations"`
	SectionBreakdown SectionBreakdown      `json:"sectionBreakdown"`
}

// DesignScore is a placeholder visual design score
type DesignScore struct {
	Overall     int      `json:"overall"`
	Layout      int      `json:"layout"`
	Typography  int      `json:"typography"`
	Consistency int      `json:"consistency"`
	Notes       []string `json:"notes"`
}

// AnalysisResult holds one entry per requested analysis kind, plus keyword
// analysis whenever a job description was supplied.
type AnalysisResult struct {
	Success         bool             `json:"success"`
	Error           string           `json:"error,omitempty"`
	AnalysisID      string           `json:"analysisId,omitempty"`
	Industry        string           `json:"industry,omitempty"`
	AnalyzedAt      *time.Time       `json:"analyzedAt,omitempty"`
	ATSScore        *ATSScore        `json:"atsScore,omitempty"`
	ContentQuality  *ContentQuality  `json:"contentQuality,omitempty"`
	LengthAnalysis  *LengthAnalysis  `json:"lengthAnalysis,omitempty"`
	DesignScore     *DesignScore     `json:"designScore,omitempty"`
	KeywordAnalysis *KeywordAnalysis `json:"keywordAnalysis,omitempty"`
}

// BatchEntry is one ranked CV in a batch report
type BatchEntry struct {
	ID             string `json:"id"`
	Source         string `json:"source,omitempty"`
	Name           string `json:"name,omitempty"`
	Rank           int    `json:"rank"`
	ATSOverall     int    `json:"atsOverall"`
	PassRate       string `json:"passRate,omitempty"`
	ContentOverall int    `json:"contentOverall"`
	LengthScore    int    `json:"lengthScore"`
	KeywordMatch   int    `json:"keywordMatch"`
	Error          string `json:"error,omitempty"`

	Result *AnalysisResult `json:"result,omitempty"`
}

// BatchSummary aggregates a batch report
type BatchSummary struct {
	Count      int     `json:"count"`
	Failed     int     `json:"failed"`
	AverageATS float64 `json:"averageAts"`
	High       int     `json:"high"`
	Medium     int     `json:"medium"`
	Low        int     `json:"low"`
}

// BatchReport is the ranked outcome of scoring many CVs against one job description
type BatchReport struct {
	BatchID     string         `json:"batchId"`
	Industry    string         `json:"industry"`
	GeneratedAt time.Time      `json:"generatedAt"`
	JobKeywords []KeywordEntry `json:"jobKeywords,omitempty"`
	Entries     []BatchEntry   `json:"entries"`
	Summary     BatchSummary   `json:"summary"`
}
