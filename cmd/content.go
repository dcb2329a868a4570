package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/growth-cli/internal/artifact"
	"github.com/sells-group/growth-cli/internal/content"
	"github.com/sells-group/growth-cli/internal/model"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Templated marketing copy from brand profiles",
}

var (
	contentProfile     string
	contentType        string
	contentGoal        string
	contentKeywords    []string
	contentFeatures    []string
	contentAudience    string
	contentLLMProvider string
	contentVariants    int
	contentJSON        bool
)

var contentDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft copy variants and write content-draft.json/.md",
	Long: `Loads <profiles.dir>/<profile>.yaml and renders the requested number of
variants for a landing page, email, social post or ad. LLM providers are
recorded but never called. A publish_content job request is written next to
the draft; publishing requires approval and a policy token.

Examples:
  growth-cli content draft --profile acme --goal "increase signups" --variants 3
  growth-cli content draft --profile acme --type email --goal "win back users" --keywords widgets,teams`,
	RunE: runContentDraft,
}

func init() {
	f := contentDraftCmd.Flags()
	f.StringVar(&contentProfile, "profile", "", "brand profile name (required)")
	f.StringVar(&contentType, "type", string(model.ContentLandingPage), "landing_page, email, social_post or ad_copy")
	f.StringVar(&contentGoal, "goal", "", "what the copy should achieve (required)")
	f.StringSliceVar(&contentKeywords, "keywords", nil, "comma-separated keywords (default from profile)")
	f.StringSliceVar(&contentFeatures, "features", nil, "comma-separated features to mention")
	f.StringVar(&contentAudience, "audience", "", "target audience (default from profile)")
	f.StringVar(&contentLLMProvider, "llm-provider", "", "none, openai, anthropic or local (default from config)")
	f.IntVar(&contentVariants, "variants", 1, "number of variants")
	f.String("out", "", "output directory (default from config)")
	f.String("trace", "", "trace id (default generated)")
	f.BoolVar(&contentJSON, "json", false, "print the draft as JSON")
	addTenantFlags(contentDraftCmd)

	contentCmd.AddCommand(contentDraftCmd)
	rootCmd.AddCommand(contentCmd)
}

func runContentDraft(cmd *cobra.Command, _ []string) error {
	tc, err := resolveTenant(cmd, model.TenantContext{})
	if err != nil {
		return err
	}

	draft, err := content.NewDrafter(cfg.Profiles, cfg.Content).DraftContent(cmd.Context(), content.Options{
		Tenant:         tc,
		ProfileName:    contentProfile,
		ContentType:    model.ContentType(contentType),
		Goal:           contentGoal,
		Keywords:       contentKeywords,
		Features:       contentFeatures,
		TargetAudience: contentAudience,
		LLMProvider:    contentLLMProvider,
		VariantCount:   contentVariants,
	})
	if err != nil {
		return err
	}

	dir := outDir(cmd)
	paths := []string{
		filepath.Join(dir, "content-draft.json"),
		filepath.Join(dir, "content-draft.md"),
	}
	if err := artifact.WriteJSON(paths[0], draft); err != nil {
		return err
	}
	if err := artifact.WriteText(paths[1], content.RenderMarkdown(draft)); err != nil {
		return err
	}
	jobPath, err := writeJob(dir, "publish-content.json", newBuilder().PublishContent(tc, *draft, "content draft"), traceID(cmd))
	if err != nil {
		return err
	}
	paths = append(paths, jobPath)
	zap.L().Info("content: draft written",
		zap.String("draft_id", draft.DraftID),
		zap.Int("variants", len(draft.Variants)),
		zap.Int("warnings", len(draft.Warnings)),
	)

	w := cmd.OutOrStdout()
	if contentJSON {
		return printJSON(w, draft)
	}
	tw := newTable(w, "Variant", "Headline", "CTA")
	for _, v := range draft.Variants {
		tw.AppendRow([]any{v.VariantID, v.Headline, v.CTA})
	}
	tw.Render()
	for _, warn := range draft.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
	fmt.Fprintln(w, "publish_content jobs require approval and a policy token")
	printFiles(w, paths)
	return nil
}
