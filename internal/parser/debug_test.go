package parser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnose_BlockedPage(t *testing.T) {
	d, err := Diagnose(readHTML(t, "blocked_page.html"), DefaultSelectors())
	require.NoError(t, err)

	assert.Equal(t, "Just a moment...", d.Title)
	assert.True(t, d.LikelyBlocked())
	assert.ElementsMatch(t, []string{"just a moment", "cloudflare", "verify you are a human"}, d.Blocked)
	require.NotEmpty(t, d.Selectors)
	assert.Equal(t, SelectorCount{Selector: "article.job-tile", Count: 0}, d.Selectors[0])
}

func TestDiagnose_ResultsPage(t *testing.T) {
	d, err := Diagnose(readHTML(t, "search_page.html"), DefaultSelectors())
	require.NoError(t, err)

	assert.False(t, d.LikelyBlocked())
	assert.Equal(t, 3, d.Selectors[0].Count)
}

func TestDiagnose_TruncatesBody(t *testing.T) {
	html := "<html><body><p>" + strings.Repeat("a", 2*bodySampleLen) + "</p></body></html>"

	d, err := Diagnose(html, DefaultSelectors())
	require.NoError(t, err)

	assert.Len(t, d.BodySample, bodySampleLen+len("..."))
}

func TestDiagnose_TruncatesOnRuneBoundary(t *testing.T) {
	html := "<html><body><p>a" + strings.Repeat("é", 400) + "</p></body></html>"

	d, err := Diagnose(html, DefaultSelectors())
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(d.BodySample))
	assert.Equal(t, "a"+strings.Repeat("é", 249)+"...", d.BodySample)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "short", n: 10, want: "short"},
		{in: "exactly", n: 7, want: "exactly"},
		{in: "abcdef", n: 3, want: "abc..."},
		{in: "日本語", n: 4, want: "日..."},
		{in: "日本語", n: 2, want: "..."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.n), "truncate(%q, %d)", tt.in, tt.n)
	}
}
