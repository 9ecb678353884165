package analysis

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"cvscore/internal/types"
)

func TestMatchKeywords(t *testing.T) {
	a := New(nil)

	jd := "Python developer with Python and Django experience. Python, Django, Kubernetes!"
	got := a.MatchKeywords("Python engineer with Django", jd)

	wantOrder := []string{"python", "django", "developer", "experience", "kubernetes"}
	var order []string
	for _, kw := range got.JobKeywords {
		order = append(order, kw.Keyword)
	}
	if !reflect.DeepEqual(order, wantOrder) {
		t.Fatalf("keyword order = %v, want %v", order, wantOrder)
	}

	python := got.JobKeywords[0]
	if python.Frequency != 3 || python.Importance != types.ImportanceImportant || python.CVMatches != 1 {
		t.Errorf("unexpected python entry %+v", python)
	}
	if python.Density != 25 {
		t.Errorf("expected python density 25, got %v", python.Density)
	}
	if got.JobKeywords[2].Importance != types.ImportanceNiceToHave {
		t.Errorf("single occurrence should be Nice-to-have, got %s", got.JobKeywords[2].Importance)
	}

	if got.OverallMatch != 40 {
		t.Errorf("expected overall match 40, got %d", got.OverallMatch)
	}
	if !reflect.DeepEqual(got.Underused, []string{"python", "django"}) {
		t.Errorf("unexpected underused %v", got.Underused)
	}
	if !reflect.DeepEqual(got.Overused, []string{"python", "django"}) {
		t.Errorf("unexpected overused %v", got.Overused)
	}
	if len(got.Missing) != 0 {
		t.Errorf("no critical keywords expected, got missing %v", got.Missing)
	}
}

func TestMatchKeywordsCriticalMissing(t *testing.T) {
	a := New(nil)

	got := a.MatchKeywords("rust", "golang golang golang golang rust")

	if got.JobKeywords[0].Importance != types.ImportanceCritical {
		t.Errorf("four occurrences should be Critical, got %s", got.JobKeywords[0].Importance)
	}
	if !reflect.DeepEqual(got.Missing, []string{"golang"}) {
		t.Errorf("expected golang missing, got %v", got.Missing)
	}
	if got.OverallMatch != 50 {
		t.Errorf("expected overall match 50, got %d", got.OverallMatch)
	}
}

func TestMatchKeywordsNoQualifyingTokens(t *testing.T) {
	a := New(nil)

	tests := []struct {
		name string
		jd   string
	}{
		{"empty", ""},
		{"only stop words", "the and for with would could"},
		{"only short tokens", "go, js, sql, c++"},
		{"punctuation", "!!! ??? ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.MatchKeywords("Experienced Go developer", tt.jd)
			if got.OverallMatch != 0 {
				t.Errorf("expected overall match 0, got %d", got.OverallMatch)
			}
			if got.JobKeywords == nil || len(got.JobKeywords) != 0 {
				t.Errorf("expected an empty keyword list, got %v", got.JobKeywords)
			}
		})
	}
}

func TestMatchKeywordsTopTwenty(t *testing.T) {
	a := New(nil)

	var tokens []string
	for i := range 25 {
		tokens = append(tokens, fmt.Sprintf("skill%02d", i))
	}
	// a repeated late token outranks the single ones
	tokens = append(tokens, "skill24")

	got := a.MatchKeywords("", strings.Join(tokens, " "))
	if len(got.JobKeywords) != maxJobKeywords {
		t.Fatalf("expected %d keywords, got %d", maxJobKeywords, len(got.JobKeywords))
	}
	if got.JobKeywords[0].Keyword != "skill24" {
		t.Errorf("expected most frequent keyword first, got %s", got.JobKeywords[0].Keyword)
	}
	if got.JobKeywords[1].Keyword != "skill00" || got.JobKeywords[19].Keyword != "skill18" {
		t.Errorf("ties must keep first-occurrence order, got %s..%s",
			got.JobKeywords[1].Keyword, got.JobKeywords[19].Keyword)
	}
	for _, kw := range got.JobKeywords {
		if kw.Density != 0 {
			t.Errorf("empty CV must have zero density, got %v for %s", kw.Density, kw.Keyword)
		}
	}
}

func TestTokenize(t *testing.T) {
	a := New(nil)

	got := a.tokenize("Senior C++/Go Engineer: builds APIs, owns on-call & mentors THE team.")
	want := []string{"senior", "engineer", "builds", "apis", "owns", "call", "mentors", "team"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tokenize() = %v, want %v", got, want)
	}
}

func BenchmarkMatchKeywords(b *testing.B) {
	a := New(nil)
	cv := ExtractAllText(completeCV())
	jd := strings.Repeat("We need a Kubernetes engineer with Go, PostgreSQL and cloud services experience. ", 20)

	for b.Loop() {
		a.MatchKeywords(cv, jd)
	}
}
