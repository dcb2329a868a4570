package model

// ContentType is the kind of marketing copy being drafted.
type ContentType string

const (
	ContentLandingPage ContentType = "landing_page"
	ContentEmail       ContentType = "email"
	ContentSocialPost  ContentType = "social_post"
	ContentAdCopy      ContentType = "ad_copy"
)

// ContentTypes returns every valid content type.
func ContentTypes() []ContentType {
	return []ContentType{ContentLandingPage, ContentEmail, ContentSocialPost, ContentAdCopy}
}

// LLMProviderNone drafts from templates only. Any other provider is
// recorded on the draft and stubbed.
const LLMProviderNone = "none"

// LLMProviders lists the accepted llm_provider values.
func LLMProviders() []string {
	return []string{LLMProviderNone, "openai", "anthropic", "local"}
}

// ContentVariant is one drafted alternative.
type ContentVariant struct {
	VariantID string `json:"variant_id"`
	Headline  string `json:"headline"`
	Body      string `json:"body"`
	CTA       string `json:"cta"`
}

// ContentDraft is the drafter's output for one request.
type ContentDraft struct {
	TenantID       string           `json:"tenant_id"`
	ProjectID      string           `json:"project_id"`
	DraftID        string           `json:"draft_id"`
	CreatedAt      string           `json:"created_at"`
	ProfileName    string           `json:"profile_name"`
	ContentType    ContentType      `json:"content_type"`
	Goal           string           `json:"goal"`
	Keywords       []string         `json:"keywords"`
	TargetAudience string           `json:"target_audience,omitempty"`
	LLMProvider    string           `json:"llm_provider"`
	Variants       []ContentVariant `json:"variants"`
	Warnings       []string         `json:"warnings,omitempty"`
	Evidence       []EvidenceLink   `json:"evidence"`
}
