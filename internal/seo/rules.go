package seo

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/growth-cli/internal/model"
)

// Rule names.
const (
	RuleMissingTitle           = "missing_title"
	RuleTitleTooShort          = "title_too_short"
	RuleTitleTooLong           = "title_too_long"
	RuleMissingMetaDescription = "missing_meta_description"
	RuleMetaDescriptionLength  = "meta_description_length"
	RuleMissingH1              = "missing_h1"
	RuleMultipleH1             = "multiple_h1"
	RuleImgMissingAlt          = "img_missing_alt"
	RuleMissingCanonical       = "missing_canonical"
	RuleMissingLang            = "missing_lang"
	RuleNoindex                = "noindex"
	RuleBrokenInternalLink     = "broken_internal_link"
)

// limits are the length bounds the title and description rules use.
type limits struct {
	titleMin, titleMax int
	descMin, descMax   int
}

// evaluate applies every rule to p. exists reports whether a
// site-relative target file is present.
func evaluate(p *page, l limits, exists func(rel string) bool) []model.SEOFinding {
	var out []model.SEOFinding
	add := func(rule string, sev model.AuditSeverity, element, msg, rec string) {
		out = append(out, model.SEOFinding{
			Rule:           rule,
			Severity:       sev,
			Page:           p.rel,
			Message:        msg,
			Element:        element,
			Recommendation: rec,
		})
	}

	switch n := utf8.RuneCountInString(p.title); {
	case n == 0:
		add(RuleMissingTitle, model.AuditCritical, "title",
			"page has no <title>",
			"Add a unique, descriptive <title> element.")
	case n < l.titleMin:
		add(RuleTitleTooShort, model.AuditWarning, "title",
			fmt.Sprintf("title is %d characters (minimum %d)", n, l.titleMin),
			"Expand the title to describe the page.")
	case n > l.titleMax:
		add(RuleTitleTooLong, model.AuditWarning, "title",
			fmt.Sprintf("title is %d characters (maximum %d)", n, l.titleMax),
			"Shorten the title so it is not truncated in search results.")
	}

	if !p.hasDescription || p.description == "" {
		add(RuleMissingMetaDescription, model.AuditWarning, "meta[name=description]",
			"page has no meta description",
			"Add a meta description summarizing the page.")
	} else if n := utf8.RuneCountInString(p.description); n < l.descMin || n > l.descMax {
		add(RuleMetaDescriptionLength, model.AuditInfo, "meta[name=description]",
			fmt.Sprintf("meta description is %d characters (recommended %d-%d)", n, l.descMin, l.descMax),
			"Adjust the meta description length.")
	}

	switch {
	case p.h1Count == 0:
		add(RuleMissingH1, model.AuditWarning, "h1",
			"page has no <h1>",
			"Add a single <h1> heading.")
	case p.h1Count > 1:
		add(RuleMultipleH1, model.AuditInfo, "h1",
			fmt.Sprintf("page has %d <h1> headings", p.h1Count),
			"Use one <h1> and demote the rest.")
	}

	if p.imgMissingAlt > 0 {
		add(RuleImgMissingAlt, model.AuditWarning, "img",
			fmt.Sprintf("%d image(s) missing alt text", p.imgMissingAlt),
			"Add alt attributes to every image.")
	}
	if !p.hasCanonical {
		add(RuleMissingCanonical, model.AuditInfo, "link[rel=canonical]",
			"page has no canonical link",
			"Add <link rel=\"canonical\"> pointing at the preferred URL.")
	}
	if p.lang == "" {
		add(RuleMissingLang, model.AuditInfo, "html[lang]",
			"<html> has no lang attribute",
			"Declare the page language on the <html> element.")
	}
	if strings.Contains(p.robots, "noindex") {
		add(RuleNoindex, model.AuditWarning, "meta[name=robots]",
			"page is marked noindex",
			"Remove noindex if the page should appear in search results.")
	}

	for _, href := range p.links {
		target, ok := internalTarget(p.rel, href)
		if !ok {
			continue
		}
		if target == "" || !exists(target) {
			add(RuleBrokenInternalLink, model.AuditCritical, href,
				fmt.Sprintf("internal link %q points to a missing page", href),
				"Fix or remove the link.")
		}
	}
	return out
}

// internalTarget resolves a relative .html/.htm href against the page.
// ok is false for external, anchor or non-HTML links. An empty target
// means the href escapes the site root.
func internalTarget(rel, href string) (target string, ok bool) {
	if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "//") {
		return "", false
	}
	if i := strings.IndexAny(href, ":/?#"); i >= 0 && href[i] == ':' {
		return "", false // scheme (http:, mailto:, tel:)
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	ext := strings.ToLower(path.Ext(href))
	if ext != ".html" && ext != ".htm" {
		return "", false
	}

	var joined string
	if strings.HasPrefix(href, "/") {
		joined = path.Clean(href)
	} else {
		joined = path.Join("/", path.Dir(rel), href)
	}
	// path.Join on a rooted path cannot escape "/", so compare against
	// the unrooted form to detect "..".
	if strings.HasPrefix(path.Join(path.Dir(rel), href), "..") && !strings.HasPrefix(href, "/") {
		return "", true
	}
	return strings.TrimPrefix(joined, "/"), true
}
