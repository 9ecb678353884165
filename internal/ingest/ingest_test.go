package ingest

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cvscore/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCV = `{
  "personalInfo": {"name": "Jane Doe", "email": "jane@example.com"},
  "experience": [
    {"title": "Engineer", "company": "Acme", "current": true,
     "description": "Responsible for building things. Increased revenue by 20%."}
  ],
  "skills": ["Python", "SQL"]
}`

func appErrorCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr), "expected *AppError, got %T", err)
	return appErr.Code
}

func TestParseCV(t *testing.T) {
	cv, err := ParseCV([]byte(sampleCV))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", cv.PersonalInfo.Name)
	require.Len(t, cv.Experience, 1)
	assert.True(t, cv.Experience[0].Current)
	assert.Equal(t, []string{"Python", "SQL"}, cv.Skills)
	assert.Empty(t, cv.Education)
}

func TestParseCVAcceptsSparseDocuments(t *testing.T) {
	for _, doc := range []string{
		`{}`,
		`{"personalInfo": null, "experience": null, "skills": []}`,
		`{"personalInfo": {"name": null}, "extra": {"ignored": true}}`,
	} {
		_, err := ParseCV([]byte(doc))
		assert.NoError(t, err, doc)
	}
}

func TestParseCVRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantCode string
		wantText string
	}{
		{"not json", `{"personalInfo": `, errors.ErrCodeInvalidCV, ""},
		{"top level array", `[]`, errors.ErrCodeSchemaViolation, "(root)"},
		{"skills must be strings", `{"skills": ["Go", 42]}`, errors.ErrCodeSchemaViolation, "skills.1"},
		{"experience must be a list", `{"experience": {"title": "x"}}`, errors.ErrCodeSchemaViolation, "experience"},
		{"current must be boolean", `{"experience": [{"current": "yes"}]}`, errors.ErrCodeSchemaViolation, "experience.0.current"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCV([]byte(tt.doc))
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, appErrorCode(t, err))
			if tt.wantText != "" {
				assert.Contains(t, err.Error(), tt.wantText)
			}
		})
	}
}

func TestCollectCVFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "a.json", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sampleCV), 0600))
	}
	single := filepath.Join(t.TempDir(), "single.json")
	require.NoError(t, os.WriteFile(single, []byte(sampleCV), 0600))

	files, err := CollectCVFiles(dir, single, filepath.Join(dir, "a.json"))
	require.NoError(t, err)

	want := []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json"), single}
	assert.ElementsMatch(t, want, files)
	assert.IsNonDecreasing(t, files)

	_, err = CollectCVFiles(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeFileNotFound, appErrorCode(t, err))

	_, err = CollectCVFiles(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, appErrorCode(t, err))
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		content  string
		want     string
	}{
		{"job.html", "plain words", FormatHTML},
		{"job.HTM", "", FormatHTML},
		{"job.txt", "<p>looks like html</p>", FormatText},
		{"", "  <html><body>Go</body></html>", FormatHTML},
		{"", "We need a <strong> engineer", FormatText},
		{"job.description", "Senior engineer", FormatText},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.filename, tt.content), "%s %q", tt.filename, tt.content)
	}
}

func TestHTMLToText(t *testing.T) {
	html := `<html><head><style>p{}</style><script>track()</script></head>
<body>
  <nav>Home | Jobs</nav>
  <h1>Senior   Go Engineer</h1>
  <p>Build <b>distributed</b> systems.<br>Own on-call.</p>
  <ul><li>Kubernetes</li><li>PostgreSQL</li></ul>
  <footer>Copyright</footer>
</body></html>`

	text, err := HTMLToText(html)
	require.NoError(t, err)

	assert.Equal(t, "Senior Go Engineer\nBuild distributed systems.\nOwn on-call.\nKubernetes\nPostgreSQL", text)
	assert.NotContains(t, text, "track")
	assert.NotContains(t, text, "Copyright")
}

func TestNormalizeJobDescription(t *testing.T) {
	text, err := NormalizeJobDescription("  Go engineer  ", FormatText, 0)
	require.NoError(t, err)
	assert.Equal(t, "Go engineer", text)

	text, err = NormalizeJobDescription("<p>Go <em>engineer</em></p>", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "Go engineer", text)

	_, err = NormalizeJobDescription(strings.Repeat("é", 11), FormatText, 10)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, appErrorCode(t, err))

	_, err = NormalizeJobDescription(strings.Repeat("é", 10), FormatText, 10)
	assert.NoError(t, err)

	_, err = NormalizeJobDescription("x", "pdf", 0)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidFormat, appErrorCode(t, err))
}
