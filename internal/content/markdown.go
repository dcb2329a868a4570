package content

import (
	"fmt"
	"strings"

	"github.com/sells-group/growth-cli/internal/model"
)

// RenderMarkdown renders a draft for human review.
func RenderMarkdown(d *model.ContentDraft) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Content Draft: %s\n\n", d.ProfileName)
	fmt.Fprintf(&sb, "- Draft: %s\n", d.DraftID)
	fmt.Fprintf(&sb, "- Type: %s\n", d.ContentType)
	fmt.Fprintf(&sb, "- Goal: %s\n", d.Goal)
	if len(d.Keywords) > 0 {
		fmt.Fprintf(&sb, "- Keywords: %s\n", strings.Join(d.Keywords, ", "))
	}
	if d.TargetAudience != "" {
		fmt.Fprintf(&sb, "- Audience: %s\n", d.TargetAudience)
	}
	fmt.Fprintf(&sb, "- LLM provider: %s\n", d.LLMProvider)
	fmt.Fprintf(&sb, "- Created: %s\n", d.CreatedAt)

	for i, v := range d.Variants {
		fmt.Fprintf(&sb, "\n## Variant %d (%s)\n\n", i+1, v.VariantID)
		fmt.Fprintf(&sb, "### %s\n\n", v.Headline)
		sb.WriteString(v.Body)
		fmt.Fprintf(&sb, "\n\n**CTA:** %s\n", v.CTA)
	}

	if len(d.Warnings) > 0 {
		sb.WriteString("\n## Warnings\n\n")
		for _, w := range d.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}
	return sb.String()
}
