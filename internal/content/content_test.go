package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/config"
	"github.com/sells-group/growth-cli/internal/model"
	"github.com/sells-group/growth-cli/internal/schema"
)

const acmeProfile = `name: acme
brand:
  name: Acme
  tagline: Widgets that just work
voice:
  tone: friendly
  avoid: [cheap]
audience: small teams
value_props:
  - Ship widgets twice as fast
  - Cheap to run at any scale
cta:
  primary: Start free trial
  secondary: Book a demo
keywords: [widgets, automation]
`

var tenant = model.TenantContext{TenantID: "acme", ProjectID: "web"}

func profilesDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func newDrafter(dir string, cache bool, maxVariants int) *Drafter {
	return NewDrafter(config.ProfilesConfig{Dir: dir, Cache: cache}, config.ContentConfig{MaxVariants: maxVariants}).
		WithClock(func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) })
}

func TestDraftContent_LandingPage(t *testing.T) {
	dir := profilesDir(t, map[string]string{"acme.yaml": acmeProfile})

	d, err := newDrafter(dir, false, 5).DraftContent(context.Background(), Options{
		Tenant:       tenant,
		ProfileName:  "acme",
		ContentType:  model.ContentLandingPage,
		Goal:         "grow signups",
		Features:     []string{"SSO", "Audit log"},
		VariantCount: 2,
	})
	require.NoError(t, err)

	require.Len(t, d.Variants, 2)
	assert.Equal(t, "Grow Signups With Acme", d.Variants[0].Headline)
	assert.Equal(t, "Start free trial", d.Variants[0].CTA)
	assert.Contains(t, d.Variants[0].Body, "Acme helps small teams grow signups.")
	assert.Contains(t, d.Variants[0].Body, "- SSO")

	// "Cheap" is on the profile's avoid list.
	assert.Equal(t, "To Run At Any Scale", d.Variants[1].Headline)
	assert.Equal(t, "Book a demo", d.Variants[1].CTA)
	assert.Contains(t, d.Warnings, `removed avoided word "cheap"`)

	assert.Equal(t, d.DraftID+"-v1", d.Variants[0].VariantID)
	assert.Equal(t, []string{"widgets", "automation"}, d.Keywords, "profile keywords are the default")
	assert.Equal(t, "small teams", d.TargetAudience)
	assert.Equal(t, LLMProviderNone, d.LLMProvider)
	assert.Equal(t, "2024-03-01T09:00:00.000Z", d.CreatedAt)

	assert.NoError(t, schema.ValidateContentDraft(*d))
}

func TestDraftContent_AllContentTypes(t *testing.T) {
	dir := profilesDir(t, map[string]string{"acme.yml": acmeProfile})
	drafter := newDrafter(dir, true, 5)

	for _, ct := range model.ContentTypes() {
		t.Run(string(ct), func(t *testing.T) {
			d, err := drafter.DraftContent(context.Background(), Options{
				Tenant:       tenant,
				ProfileName:  "acme",
				ContentType:  ct,
				Goal:         "launch the beta",
				Keywords:     []string{"beta launch"},
				VariantCount: 3,
			})
			require.NoError(t, err)
			assert.Len(t, d.Variants, 3)
			assert.NoError(t, schema.ValidateContentDraft(*d))
			if ct == model.ContentSocialPost {
				assert.Contains(t, d.Variants[0].Body, "#betalaunch")
			}
		})
	}
}

func TestDraftContent_DeterministicIDs(t *testing.T) {
	dir := profilesDir(t, map[string]string{"acme.yaml": acmeProfile})
	opts := Options{Tenant: tenant, ProfileName: "acme", ContentType: model.ContentEmail, Goal: "win back churned users"}

	a, err := newDrafter(dir, false, 5).DraftContent(context.Background(), opts)
	require.NoError(t, err)
	b, err := NewDrafter(config.ProfilesConfig{Dir: dir}, config.ContentConfig{}).DraftContent(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, a.DraftID, b.DraftID)
	assert.Equal(t, a.Variants, b.Variants)
}

func TestDraftContent_CacheHitMatchesMiss(t *testing.T) {
	dir := profilesDir(t, map[string]string{"acme.yaml": acmeProfile})
	drafter := newDrafter(dir, true, 5)
	opts := Options{Tenant: tenant, ProfileName: "acme", Goal: "grow signups", VariantCount: 2}

	miss, err := drafter.DraftContent(context.Background(), opts)
	require.NoError(t, err)
	hit, err := drafter.DraftContent(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, miss, hit)
	hits, misses := drafter.cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestDraftContent_LLMProviderIsStubbed(t *testing.T) {
	dir := profilesDir(t, map[string]string{"acme.yaml": acmeProfile})

	d, err := newDrafter(dir, false, 5).DraftContent(context.Background(), Options{
		Tenant: tenant, ProfileName: "acme", Goal: "grow signups", LLMProvider: "anthropic",
	})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", d.LLMProvider)
	require.NotEmpty(t, d.Warnings)
	assert.Contains(t, d.Warnings[0], "LLM enhancement is not available")
}

func TestDraftContent_ConfiguredProviderIsDefault(t *testing.T) {
	dir := profilesDir(t, map[string]string{"acme.yaml": acmeProfile})
	d := NewDrafter(config.ProfilesConfig{Dir: dir}, config.ContentConfig{MaxVariants: 5, DefaultLLMProvider: "local"})

	draft, err := d.DraftContent(context.Background(), Options{Tenant: tenant, ProfileName: "acme", Goal: "grow signups"})
	require.NoError(t, err)
	assert.Equal(t, "local", draft.LLMProvider)

	draft, err = d.DraftContent(context.Background(), Options{Tenant: tenant, ProfileName: "acme", Goal: "grow signups", LLMProvider: LLMProviderNone})
	require.NoError(t, err)
	assert.Equal(t, LLMProviderNone, draft.LLMProvider, "an explicit provider wins")
}

func TestDraftContent_VariantCountCapped(t *testing.T) {
	dir := profilesDir(t, map[string]string{"acme.yaml": acmeProfile})

	d, err := newDrafter(dir, false, 2).DraftContent(context.Background(), Options{
		Tenant: tenant, ProfileName: "acme", Goal: "grow signups", VariantCount: 4,
	})
	require.NoError(t, err)
	assert.Len(t, d.Variants, 2)
	assert.Contains(t, d.Warnings, "variant_count 4 capped at 2")
}

func TestDraftContent_Errors(t *testing.T) {
	dir := profilesDir(t, map[string]string{
		"acme.yaml":    acmeProfile,
		"typo.yaml":    acmeProfile + "colour: blue\n",
		"nobrand.yaml": "name: nobrand\ncta:\n  primary: Go\n",
	})
	drafter := newDrafter(dir, true, 5)

	tests := []struct {
		name string
		opts Options
		code apperr.Code
		msg  string
	}{
		{"missing profile", Options{ProfileName: "ghost", Goal: "g"}, apperr.CodeDependency, "profile ghost.yaml not found"},
		{"unknown field", Options{ProfileName: "typo", Goal: "g"}, apperr.CodeValidation, "colour"},
		{"missing brand", Options{ProfileName: "nobrand", Goal: "g"}, apperr.CodeValidation, "brand.name: is required"},
		{"path traversal", Options{ProfileName: "../acme", Goal: "g"}, apperr.CodeValidation, "profile"},
		{"bad type", Options{ProfileName: "acme", Goal: "g", ContentType: "billboard"}, apperr.CodeValidation, "content_type"},
		{"no goal", Options{ProfileName: "acme"}, apperr.CodeValidation, "goal: is required"},
		{"bad provider", Options{ProfileName: "acme", Goal: "g", LLMProvider: "gpt"}, apperr.CodeValidation, "llm_provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Tenant = tenant
			_, err := drafter.DraftContent(context.Background(), tt.opts)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperr.Classify(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestProfileCache_ReloadsChangedFile(t *testing.T) {
	dir := profilesDir(t, map[string]string{"acme.yaml": acmeProfile})
	path := filepath.Join(dir, "acme.yaml")
	cache := NewProfileCache()

	p1, err := cache.Get(path)
	require.NoError(t, err)
	p1.Brand.Name = "mutated"

	p2, err := cache.Get(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme", p2.Brand.Name, "cached profile is copied out")

	require.NoError(t, os.WriteFile(path, []byte(acmeProfile+"# trailing comment to change size\n"), 0o644))
	_, err = cache.Get(path)
	require.NoError(t, err)

	hits, misses := cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 2, misses)
}

func TestRenderMarkdown(t *testing.T) {
	d := &model.ContentDraft{
		DraftID:     "draft-1",
		ProfileName: "acme",
		ContentType: model.ContentEmail,
		Goal:        "grow signups",
		Keywords:    []string{"widgets"},
		LLMProvider: "none",
		CreatedAt:   "2024-03-01T09:00:00.000Z",
		Variants:    []model.ContentVariant{{VariantID: "draft-1-v1", Headline: "Hello", Body: "Body text", CTA: "Start"}},
		Warnings:    []string{"careful"},
	}

	md := RenderMarkdown(d)
	assert.Contains(t, md, "# Content Draft: acme\n")
	assert.Contains(t, md, "- Keywords: widgets\n")
	assert.Contains(t, md, "## Variant 1 (draft-1-v1)\n\n### Hello\n\nBody text\n\n**CTA:** Start\n")
	assert.Contains(t, md, "## Warnings\n\n- careful\n")
}
