package content

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/growth-cli/internal/model"
)

// Headline patterns per content type. Placeholders: {brand}, {tagline},
// {goal}, {angle}, {audience}, {keyword}.
var headlines = map[model.ContentType][]string{
	model.ContentLandingPage: {
		"{goal} with {brand}",
		"{angle}",
		"{brand}: {tagline}",
	},
	model.ContentEmail: {
		"{goal}: here is how",
		"{angle}, starting today",
		"A quick note from {brand}",
	},
	model.ContentSocialPost: {
		"{angle}",
		"{goal} in less time",
	},
	model.ContentAdCopy: {
		"{angle}",
		"{brand} for {audience}",
		"{goal} with {brand}",
	},
}

// renderer fills templates for one request.
type renderer struct {
	profile  *Profile
	goal     string
	keywords []string
	features []string
	audience string
	title    cases.Caser
}

func (r renderer) replacer(i int) *strings.Replacer {
	angle := r.goal
	if n := len(r.profile.ValueProps); n > 0 {
		angle = r.profile.ValueProps[i%n]
	}
	keyword := ""
	if len(r.keywords) > 0 {
		keyword = r.keywords[i%len(r.keywords)]
	}
	audience := r.audience
	if audience == "" {
		audience = "your team"
	}
	return strings.NewReplacer(
		"{brand}", r.profile.Brand.Name,
		"{tagline}", r.profile.Brand.Tagline,
		"{goal}", r.goal,
		"{angle}", angle,
		"{audience}", audience,
		"{keyword}", keyword,
	)
}

// variant renders variant i. Headlines rotate through the type's patterns
// and the CTA alternates between primary and secondary.
func (r renderer) variant(t model.ContentType, i int) model.ContentVariant {
	rep := r.replacer(i)
	patterns := headlines[t]
	headline := rep.Replace(patterns[i%len(patterns)])
	if strings.TrimSpace(strings.Trim(headline, ":")) == "" || strings.HasSuffix(headline, ": ") {
		headline = r.profile.Brand.Name
	}

	cta := r.profile.CTA.Primary
	if i%2 == 1 && r.profile.CTA.Secondary != "" {
		cta = r.profile.CTA.Secondary
	}

	return model.ContentVariant{
		Headline: r.title.String(headline),
		Body:     r.body(t, rep),
		CTA:      cta,
	}
}

func (r renderer) body(t model.ContentType, rep *strings.Replacer) string {
	var sb strings.Builder
	switch t {
	case model.ContentLandingPage:
		if r.profile.Brand.Tagline != "" {
			sb.WriteString(rep.Replace("{tagline}.\n\n"))
		}
		sb.WriteString(rep.Replace("{brand} helps {audience} {goal}."))
		if len(r.features) > 0 {
			sb.WriteString("\n")
			for _, f := range r.features {
				sb.WriteString("\n- " + f)
			}
		}
	case model.ContentEmail:
		sb.WriteString("Hi there,\n\n")
		sb.WriteString(rep.Replace("{angle}. That is why {audience} choose {brand} to {goal}."))
		if len(r.features) > 0 {
			sb.WriteString("\n\nWhat you get: " + strings.Join(r.features, ", ") + ".")
		}
		sb.WriteString(rep.Replace("\n\nThe {brand} team"))
	case model.ContentSocialPost:
		sb.WriteString(rep.Replace("{angle}. {brand} helps {audience} {goal}."))
		if tags := hashtags(r.keywords); tags != "" {
			sb.WriteString(" " + tags)
		}
	case model.ContentAdCopy:
		sb.WriteString(rep.Replace("{angle}. {goal} with {brand}."))
	}
	return strings.TrimSpace(sb.String())
}

func hashtags(keywords []string) string {
	tags := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.Join(strings.Fields(k), "")
		if k != "" {
			tags = append(tags, "#"+k)
		}
	}
	return strings.Join(tags, " ")
}

// fillEmpty keeps variants structurally complete after avoided words
// were removed.
func fillEmpty(v *model.ContentVariant, p *Profile, goal string) {
	if v.Headline == "" {
		v.Headline = p.Brand.Name
	}
	if v.Body == "" {
		v.Body = goal
	}
	if v.CTA == "" {
		v.CTA = "Learn more"
	}
}
