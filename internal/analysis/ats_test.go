package analysis

import (
	"slices"
	"strings"
	"testing"

	"cvscore/internal/types"
)

func TestFormattingScore(t *testing.T) {
	a := New(nil)

	tests := []struct {
		name string
		cv   types.CVRecord
		want int
	}{
		{
			name: "standard sections capped at 100",
			cv:   completeCV(),
			want: 100,
		},
		{
			name: "no sections, plain text",
			cv:   types.CVRecord{PersonalInfo: types.PersonalInfo{Summary: "Plain summary"}},
			want: 100,
		},
		{
			name: "glyphs and table markers",
			cv:   types.CVRecord{PersonalInfo: types.PersonalInfo{Summary: "★ Great ★ engineer | team"}},
			want: 75,
		},
		{
			name: "glyph penalty is capped",
			cv:   types.CVRecord{PersonalInfo: types.PersonalInfo{Summary: strings.Repeat("● ", 12) + "─"}},
			want: 55,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.formattingScore(tt.cv, ExtractAllText(tt.cv)); got != tt.want {
				t.Errorf("formattingScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKeywordScore(t *testing.T) {
	a := New(nil)

	tests := []struct {
		name     string
		cv       types.CVRecord
		jd       string
		industry string
		want     int
	}{
		{"no job description", completeCV(), "", types.IndustryTechnology, 70},
		{"no qualifying keywords", completeCV(), "the and for", types.IndustryTechnology, 70},
		{"full match with industry bonus", completeCV(), "Kubernetes engineer with cloud experience", types.IndustryTechnology, 100},
		{"partial match", janeDoe(), "Haskell compiler engineer", types.IndustryTechnology, 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.keywordScore(ExtractAllText(tt.cv), tt.jd, tt.industry)
			if got != tt.want {
				t.Errorf("keywordScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStructureScore(t *testing.T) {
	withCert := completeCV()
	withCert.Certifications = []types.Certification{{Name: "BLS", Issuer: "AHA"}}

	tests := []struct {
		name     string
		cv       types.CVRecord
		industry string
		want     int
	}{
		{"technology with website", completeCV(), types.IndustryTechnology, 100},
		{"finance has no bonus", completeCV(), types.IndustryFinance, 95},
		{"healthcare without certification", completeCV(), types.IndustryHealthcare, 95},
		{"healthcare bonus is capped", withCert, types.IndustryHealthcare, 100},
		{"sparse CV", janeDoe(), types.IndustryTechnology, 45},
		{"empty CV", types.CVRecord{}, types.IndustryTechnology, 0},
		{"short multibyte summary", types.CVRecord{PersonalInfo: types.PersonalInfo{Summary: strings.Repeat("é", 30)}}, types.IndustryFinance, 0},
		{"long multibyte summary", types.CVRecord{PersonalInfo: types.PersonalInfo{Summary: strings.Repeat("é", 50)}}, types.IndustryFinance, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := structureScore(tt.cv, tt.industry); got != tt.want {
				t.Errorf("structureScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReadabilityScore(t *testing.T) {
	a := New(nil)

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"only terminators", "... !!! ???", 0},
		{"short sentences", "I build systems. I test them.", 85},
		{"long sentence", strings.Repeat("word ", 30) + ".", 80},
		{"slightly long sentence", strings.Repeat("word ", 22) + ".", 90},
		{"comfortable sentence", strings.Repeat("word ", 12) + ".", 100},
		{"bullets offset short sentences", "• one. • two. • three. • four. • five. • six.", 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.readabilityScore(tt.text); got != tt.want {
				t.Errorf("readabilityScore(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestATSRecommendations(t *testing.T) {
	a := New(nil)

	all := a.atsRecommendations(types.ATSBreakdown{Formatting: 50, Keywords: 50, Structure: 50, Readability: 50}, types.IndustryMarketing)
	if len(all) != 9 {
		t.Fatalf("expected 9 recommendations, got %d: %v", len(all), all)
	}
	if !strings.HasPrefix(all[0], "Remove decorative symbols") {
		t.Errorf("formatting recommendations must come first, got %q", all[0])
	}
	if all[4] != "Add marketing industry terms such as: seo, campaign, analytics" {
		t.Errorf("unexpected industry recommendation %q", all[4])
	}
	if !strings.HasPrefix(all[7], "Keep sentences") {
		t.Errorf("readability recommendations must come last, got %q", all[7])
	}

	none := a.atsRecommendations(types.ATSBreakdown{Formatting: 80, Keywords: 70, Structure: 75, Readability: 80}, types.IndustryTechnology)
	if len(none) != 0 {
		t.Errorf("expected no recommendations at the thresholds, got %v", none)
	}
}

func TestCalculateATSScore(t *testing.T) {
	a := New(nil)

	score := a.CalculateATSScore(completeCV(), "Kubernetes engineer with cloud experience", types.IndustryTechnology)
	if score.Breakdown.FileFormat != 85 {
		t.Errorf("file format score must be 85, got %d", score.Breakdown.FileFormat)
	}
	if score.Overall < 0 || score.Overall > 100 {
		t.Errorf("overall out of range: %d", score.Overall)
	}
	if score.PassRate != passRateFor(score.Overall) {
		t.Errorf("pass rate %s does not match overall %d", score.PassRate, score.Overall)
	}

	low := a.CalculateATSScore(janeDoe(), "Haskell compiler engineer", types.IndustryTechnology)
	if !slices.Contains(low.Recommendations, "Add technology industry terms such as: agile, cloud, api") {
		t.Errorf("expected industry term recommendation, got %v", low.Recommendations)
	}
}

func TestPassRate(t *testing.T) {
	tests := []struct {
		overall int
		want    string
	}{
		{100, types.PassRateHigh},
		{85, types.PassRateHigh},
		{84, types.PassRateMedium},
		{70, types.PassRateMedium},
		{69, types.PassRateLow},
		{0, types.PassRateLow},
	}

	for _, tt := range tests {
		if got := passRateFor(tt.overall); got != tt.want {
			t.Errorf("passRateFor(%d) = %s, want %s", tt.overall, got, tt.want)
		}
	}
}
