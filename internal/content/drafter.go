// Package content drafts templated marketing copy from brand profiles.
// LLM providers are recorded but never called.
package content

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/canonical"
	"github.com/sells-group/growth-cli/internal/config"
	"github.com/sells-group/growth-cli/internal/model"
)

// LLMProviderNone drafts from templates only.
const LLMProviderNone = model.LLMProviderNone

// LLMProviders lists the accepted llm_provider values.
func LLMProviders() []string {
	return model.LLMProviders()
}

const defaultMaxVariants = 5

// Options describes one drafting request.
type Options struct {
	Tenant         model.TenantContext
	ProfileName    string
	ContentType    model.ContentType
	Goal           string
	Keywords       []string
	Features       []string
	TargetAudience string
	LLMProvider    string
	VariantCount   int
}

// Drafter renders copy from profiles in a directory.
type Drafter struct {
	dir         string
	cache       *ProfileCache
	maxVariants int
	provider    string
	now         func() time.Time
	title       cases.Caser
}

// NewDrafter creates a Drafter. Profile caching follows profiles.cache.
func NewDrafter(profiles config.ProfilesConfig, cfg config.ContentConfig) *Drafter {
	d := &Drafter{
		dir:         profiles.Dir,
		maxVariants: cfg.MaxVariants,
		provider:    cfg.DefaultLLMProvider,
		now:         time.Now,
		title:       cases.Title(language.English, cases.NoLower),
	}
	if profiles.Cache {
		d.cache = NewProfileCache()
	}
	if d.maxVariants <= 0 {
		d.maxVariants = defaultMaxVariants
	}
	if d.provider == "" {
		d.provider = LLMProviderNone
	}
	return d
}

// WithClock replaces the clock used for created_at.
func (d *Drafter) WithClock(now func() time.Time) *Drafter {
	d.now = now
	return d
}

// DraftContent loads the named profile and renders the requested variants.
func (d *Drafter) DraftContent(ctx context.Context, opts Options) (*model.ContentDraft, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts, warnings, err := d.normalize(opts)
	if err != nil {
		return nil, err
	}

	path, err := ProfilePath(d.dir, opts.ProfileName)
	if err != nil {
		return nil, err
	}
	var profile *Profile
	if d.cache != nil {
		profile, err = d.cache.Get(path)
	} else {
		profile, err = LoadProfile(path)
	}
	if err != nil {
		return nil, err
	}

	keywords := opts.Keywords
	if len(keywords) == 0 {
		keywords = profile.Keywords
	}
	if keywords == nil {
		keywords = []string{}
	}
	audience := opts.TargetAudience
	if audience == "" {
		audience = profile.Audience
	}

	r := renderer{
		profile:  profile,
		goal:     opts.Goal,
		keywords: keywords,
		features: opts.Features,
		audience: audience,
		title:    d.title,
	}
	variants := make([]model.ContentVariant, opts.VariantCount)
	for i := range variants {
		variants[i] = r.variant(opts.ContentType, i)
	}

	draftID, err := draftID(opts, keywords)
	if err != nil {
		return nil, err
	}
	for i := range variants {
		variants[i].VariantID = fmt.Sprintf("%s-v%d", draftID, i+1)
	}
	warnings = append(warnings, scrub(variants, profile.Voice.Avoid)...)
	for i := range variants {
		fillEmpty(&variants[i], profile, opts.Goal)
	}

	draft := &model.ContentDraft{
		TenantID:       opts.Tenant.TenantID,
		ProjectID:      opts.Tenant.ProjectID,
		DraftID:        draftID,
		CreatedAt:      model.FormatTime(d.now()),
		ProfileName:    profile.Name,
		ContentType:    opts.ContentType,
		Goal:           opts.Goal,
		Keywords:       keywords,
		TargetAudience: audience,
		LLMProvider:    opts.LLMProvider,
		Variants:       variants,
		Warnings:       warnings,
		Evidence: []model.EvidenceLink{
			{
				Type:        model.EvidenceAssumption,
				Path:        path,
				Description: "brand profile " + profile.Name,
			},
		},
	}
	if len(profile.ValueProps) > 0 {
		draft.Evidence = append(draft.Evidence, model.EvidenceLink{
			Type:        model.EvidenceJSONPath,
			Path:        "value_props",
			Description: "value propositions used as copy angles",
			Value:       len(profile.ValueProps),
		})
	}

	zap.L().Info("content: draft complete",
		zap.String("profile", profile.Name),
		zap.String("content_type", string(opts.ContentType)),
		zap.Int("variants", len(variants)),
		zap.Int("warnings", len(warnings)))
	return draft, nil
}

func (d *Drafter) normalize(opts Options) (Options, []string, error) {
	var (
		issues   []apperr.Issue
		warnings []string
	)
	if opts.ProfileName == "" {
		issues = append(issues, apperr.Issue{Path: "profile", Message: "is required"})
	}
	if opts.ContentType == "" {
		opts.ContentType = model.ContentLandingPage
	}
	if !validContentType(opts.ContentType) {
		issues = append(issues, apperr.Issue{Path: "content_type", Message: fmt.Sprintf("invalid value %q", opts.ContentType)})
	}
	if strings.TrimSpace(opts.Goal) == "" {
		issues = append(issues, apperr.Issue{Path: "goal", Message: "is required"})
	}
	if opts.LLMProvider == "" {
		opts.LLMProvider = d.provider
	}
	if !validProvider(opts.LLMProvider) {
		issues = append(issues, apperr.Issue{Path: "llm_provider", Message: fmt.Sprintf("invalid value %q", opts.LLMProvider)})
	}
	if opts.VariantCount < 0 {
		issues = append(issues, apperr.Issue{Path: "variant_count", Message: "must be >= 1"})
	}
	if len(issues) > 0 {
		return opts, nil, apperr.Validation("invalid content draft request", issues...)
	}

	if opts.VariantCount == 0 {
		opts.VariantCount = 1
	}
	if opts.VariantCount > d.maxVariants {
		warnings = append(warnings, fmt.Sprintf("variant_count %d capped at %d", opts.VariantCount, d.maxVariants))
		opts.VariantCount = d.maxVariants
	}
	if opts.LLMProvider != LLMProviderNone {
		warnings = append(warnings, fmt.Sprintf("llm_provider %q requested but LLM enhancement is not available; templated copy used", opts.LLMProvider))
	}
	return opts, warnings, nil
}

func validContentType(t model.ContentType) bool {
	for _, v := range model.ContentTypes() {
		if v == t {
			return true
		}
	}
	return false
}

func validProvider(p string) bool {
	for _, v := range LLMProviders() {
		if v == p {
			return true
		}
	}
	return false
}

func draftID(opts Options, keywords []string) (string, error) {
	features := opts.Features
	if features == nil {
		features = []string{}
	}
	h, err := canonical.StableHash(map[string]any{
		"profile":         opts.ProfileName,
		"content_type":    string(opts.ContentType),
		"goal":            opts.Goal,
		"keywords":        keywords,
		"features":        features,
		"target_audience": opts.TargetAudience,
		"variant_count":   opts.VariantCount,
	})
	if err != nil {
		return "", eris.Wrap(err, "content: draft id")
	}
	return "draft-" + h[:12], nil
}

// scrub removes avoided words from every variant field and returns one
// warning per word found.
func scrub(variants []model.ContentVariant, avoid []string) []string {
	var warnings []string
	for _, word := range avoid {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		re := regexp.MustCompile(`(?i)\s*\b` + regexp.QuoteMeta(word) + `\b`)
		found := false
		for i := range variants {
			v := &variants[i]
			for _, field := range []*string{&v.Headline, &v.Body, &v.CTA} {
				if re.MatchString(*field) {
					found = true
					*field = strings.TrimSpace(re.ReplaceAllString(*field, ""))
				}
			}
		}
		if found {
			warnings = append(warnings, fmt.Sprintf("removed avoided word %q", word))
		}
	}
	return warnings
}
