package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/bundle"
)

var (
	validateFile      string
	validateIntegrity bool
	validateJSON      bool
)

var validateBundleCmd = &cobra.Command{
	Use:   "validate-bundle",
	Short: "Check a job request bundle's policy invariants",
	Long: `Validates any request-bundle.json, however it was produced: structure,
pinned schema_version, tenant/project consistency, idempotency keys,
unavailable job types and policy token flags on action jobs. With
--verify-integrity the idempotency keys, request ordering and canonical_hash
are recomputed as well.`,
	RunE: runValidateBundle,
}

func init() {
	f := validateBundleCmd.Flags()
	f.StringVar(&validateFile, "file", "", "bundle file (required)")
	f.BoolVar(&validateIntegrity, "verify-integrity", false, "recompute keys, ordering and canonical hash")
	f.BoolVar(&validateJSON, "json", false, "print the result as JSON")

	rootCmd.AddCommand(validateBundleCmd)
}

func runValidateBundle(cmd *cobra.Command, _ []string) error {
	data, err := readInput(validateFile, "--file")
	if err != nil {
		return err
	}

	res := bundle.ValidateWithOptions(data, bundle.Options{VerifyIntegrity: validateIntegrity})
	zap.L().Info("validate-bundle: checked",
		zap.String("file", validateFile),
		zap.Bool("success", res.Success),
		zap.Int("errors", len(res.Errors)),
	)

	w := cmd.OutOrStdout()
	if validateJSON {
		if err := printJSON(w, res); err != nil {
			return err
		}
	} else if res.Success {
		fmt.Fprintf(w, "%s: valid\n", validateFile)
	} else {
		for _, e := range res.Errors {
			fmt.Fprintf(w, "%s: %s\n", validateFile, e)
		}
	}

	if !res.Success {
		issues := make([]apperr.Issue, len(res.Errors))
		for i, e := range res.Errors {
			issues[i] = apperr.Issue{Message: e}
		}
		return apperr.Validation("bundle failed validation", issues...)
	}
	return nil
}
