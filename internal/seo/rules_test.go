package seo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLimits = limits{titleMin: 10, titleMax: 60, descMin: 50, descMax: 160}

func rulesOf(t *testing.T, p *page) []string {
	t.Helper()
	var out []string
	for _, f := range evaluate(p, testLimits, func(string) bool { return true }) {
		out = append(out, f.Rule)
	}
	return out
}

func cleanPage() *page {
	return &page{
		rel:            "index.html",
		title:          "A perfectly fine title",
		lang:           "en",
		description:    strings.Repeat("d", 80),
		hasDescription: true,
		hasCanonical:   true,
		h1Count:        1,
	}
}

func TestEvaluate_CleanPage(t *testing.T) {
	assert.Empty(t, rulesOf(t, cleanPage()))
}

func TestEvaluate_TitleLength(t *testing.T) {
	p := cleanPage()
	p.title = "Short"
	assert.Equal(t, []string{RuleTitleTooShort}, rulesOf(t, p))

	p.title = strings.Repeat("é", 61)
	assert.Equal(t, []string{RuleTitleTooLong}, rulesOf(t, p))

	// Runes, not bytes.
	p.title = strings.Repeat("é", 60)
	assert.Empty(t, rulesOf(t, p))
}

func TestEvaluate_DescriptionLength(t *testing.T) {
	p := cleanPage()
	p.description = "too short"
	assert.Equal(t, []string{RuleMetaDescriptionLength}, rulesOf(t, p))

	p.description = ""
	assert.Equal(t, []string{RuleMissingMetaDescription}, rulesOf(t, p))
}

func TestEvaluate_ImgAltIsOneFindingPerPage(t *testing.T) {
	p := cleanPage()
	p.imgMissingAlt = 3
	fs := evaluate(p, testLimits, func(string) bool { return true })
	require.Len(t, fs, 1)
	assert.Equal(t, RuleImgMissingAlt, fs[0].Rule)
	assert.Contains(t, fs[0].Message, "3 image(s)")
}

func TestParsePage(t *testing.T) {
	doc := `<html LANG="de"><head>
<title>  Hallo Welt  </title>
<meta name="Description" content="Beschreibung">
<link rel="alternate canonical" href="/de/">
</head><body>
<h1>Eins</h1>
<img src="a.png" alt="">
<img src="b.png">
<a href="a.html">a</a><a href="a.html">again</a><a href="">empty</a>
</body></html>`

	p, err := parsePage("de/index.html", strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "Hallo Welt", p.title)
	assert.Equal(t, "de", p.lang)
	assert.Equal(t, "Beschreibung", p.description)
	assert.True(t, p.hasCanonical)
	assert.Equal(t, 1, p.h1Count)
	assert.Equal(t, 1, p.imgMissingAlt, "empty alt is valid for decorative images")
	assert.Equal(t, []string{"a.html"}, p.links)
}

func TestInternalTarget(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		rel    string
		href   string
		target string
		ok     bool
	}{
		{"sibling", "index.html", "about.html", "about.html", true},
		{"nested", "blog/post.html", "other.html", "blog/other.html", true},
		{"parent", "blog/post.html", "../index.html", "index.html", true},
		{"rooted", "blog/post.html", "/pricing.html", "pricing.html", true},
		{"query and fragment", "index.html", "about.html?x=1#team", "about.html", true},
		{"htm", "index.html", "old.HTM", "old.HTM", true},
		{"escapes root", "index.html", "../up.html", "", true},
		{"external", "index.html", "https://acme.test/a.html", "", false},
		{"protocol relative", "index.html", "//cdn.test/a.html", "", false},
		{"mailto", "index.html", "mailto:a@b.c", "", false},
		{"anchor", "index.html", "#top", "", false},
		{"directory", "index.html", "docs/", "", false},
		{"asset", "index.html", "logo.png", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			target, ok := internalTarget(tt.rel, tt.href)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.target, target)
		})
	}
}
