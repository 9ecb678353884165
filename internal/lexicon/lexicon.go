// Package lexicon holds the word lists and benchmark tables used by the
// analysis engine. The tables are data: an embedded default ships with the
// binary and an external YAML file can replace it at runtime.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"cvscore/internal/types"

	"gopkg.in/yaml.v3"
)

//go:embed default_lexicon.yaml
var defaultLexiconYAML []byte

// DefaultIndustry is used when a request names no industry or an unknown one
const DefaultIndustry = types.IndustryTechnology

// Industries lists the supported industry tags
var Industries = []string{
	types.IndustryTechnology,
	types.IndustryHealthcare,
	types.IndustryFinance,
	types.IndustryMarketing,
	types.IndustryEducation,
}

// WeakPhrase maps a weak phrase to stronger replacements
type WeakPhrase struct {
	Phrase       string   `yaml:"phrase"`
	Alternatives []string `yaml:"alternatives"`
}

// SectionTargets holds recommended word counts per CV section
type SectionTargets struct {
	Summary    int `yaml:"summary"`
	Experience int `yaml:"experience"`
	Education  int `yaml:"education"`
	Skills     int `yaml:"skills"`
}

// Lexicon is an immutable set of analysis tables. Build one with Parse,
// Load or Default; do not mutate it after construction.
type Lexicon struct {
	Version          string                           `yaml:"version"`
	StopWords        []string                         `yaml:"stopWords"`
	WeakPhrases      []WeakPhrase                     `yaml:"weakPhrases"`
	PassiveMarkers   []string                         `yaml:"passiveMarkers"`
	IndustryTerms    map[string][]string              `yaml:"industryTerms"`
	Benchmarks       map[string]types.LengthBenchmark `yaml:"benchmarks"`
	SectionTargets   SectionTargets                   `yaml:"sectionTargets"`
	DecorativeGlyphs []string                         `yaml:"decorativeGlyphs"`
	TableMarkers     []string                         `yaml:"tableMarkers"`
	BulletMarkers    []string                         `yaml:"bulletMarkers"`

	stopWords map[string]struct{}
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
)

// Default returns the embedded lexicon
func Default() *Lexicon {
	defaultOnce.Do(func() {
		lex, err := Parse(defaultLexiconYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded lexicon is invalid: %v", err))
		}
		defaultLex = lex
	})
	return defaultLex
}

// DefaultYAML returns the embedded lexicon source
func DefaultYAML() []byte {
	out := make([]byte, len(defaultLexiconYAML))
	copy(out, defaultLexiconYAML)
	return out
}

// Parse decodes and validates a YAML lexicon
func Parse(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	if err := lex.Validate(); err != nil {
		return nil, err
	}
	lex.index()
	return &lex, nil
}

// Load reads and parses a lexicon file
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file %s: %w", path, err)
	}
	lex, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("lexicon file %s: %w", path, err)
	}
	return lex, nil
}

// Validate checks that every table the analyzers depend on is present
func (l *Lexicon) Validate() error {
	if len(l.StopWords) == 0 {
		return fmt.Errorf("stopWords must not be empty")
	}
	if len(l.WeakPhrases) == 0 {
		return fmt.Errorf("weakPhrases must not be empty")
	}
	for i, wp := range l.WeakPhrases {
		if strings.TrimSpace(wp.Phrase) == "" {
			return fmt.Errorf("weakPhrases[%d] has an empty phrase", i)
		}
	}
	if len(l.PassiveMarkers) == 0 {
		return fmt.Errorf("passiveMarkers must not be empty")
	}
	for _, industry := range Industries {
		if len(l.IndustryTerms[industry]) == 0 {
			return fmt.Errorf("industryTerms for %q must not be empty", industry)
		}
		b, ok := l.Benchmarks[industry]
		if !ok {
			return fmt.Errorf("missing length benchmark for %q", industry)
		}
		if b.Min <= 0 || b.Min > b.Ideal || b.Ideal > b.Max {
			return fmt.Errorf("benchmark for %q must satisfy 0 < min <= ideal <= max, got %+v", industry, b)
		}
	}
	return nil
}

func (l *Lexicon) index() {
	l.stopWords = make(map[string]struct{}, len(l.StopWords))
	for _, w := range l.StopWords {
		l.stopWords[strings.ToLower(w)] = struct{}{}
	}
}

// IsStopWord reports whether a lowercased token is a stop word
func (l *Lexicon) IsStopWord(token string) bool {
	if l.stopWords == nil {
		return slices.Contains(l.StopWords, token)
	}
	_, ok := l.stopWords[token]
	return ok
}

// TermsFor returns the preferred terms of an industry, falling back to the default industry
func (l *Lexicon) TermsFor(industry string) []string {
	if terms, ok := l.IndustryTerms[industry]; ok {
		return terms
	}
	return l.IndustryTerms[DefaultIndustry]
}

// BenchmarkFor returns the length benchmark of an industry, falling back to the default industry
func (l *Lexicon) BenchmarkFor(industry string) types.LengthBenchmark {
	if b, ok := l.Benchmarks[industry]; ok {
		return b
	}
	return l.Benchmarks[DefaultIndustry]
}

// ResolveIndustry normalizes an industry tag. Unknown or empty tags resolve to the default industry.
func ResolveIndustry(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, industry := range Industries {
		if tag == industry {
			return industry
		}
	}
	return DefaultIndustry
}

// IsKnownIndustry reports whether tag names a supported industry
func IsKnownIndustry(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for _, industry := range Industries {
		if tag == industry {
			return true
		}
	}
	return false
}
