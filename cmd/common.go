package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/artifact"
	"github.com/sells-group/growth-cli/internal/canonical"
	"github.com/sells-group/growth-cli/internal/jobs"
	"github.com/sells-group/growth-cli/internal/model"
	"github.com/sells-group/growth-cli/internal/schema"
)

// addTenantFlags registers --tenant and --project on cmd.
func addTenantFlags(cmd *cobra.Command) {
	cmd.Flags().String("tenant", "", "tenant id (default from config)")
	cmd.Flags().String("project", "", "project id (default from config)")
}

// resolveTenant picks each id from the flag, then fallback, then config.
func resolveTenant(cmd *cobra.Command, fallback model.TenantContext) (model.TenantContext, error) {
	tenantFlag, _ := cmd.Flags().GetString("tenant")
	projectFlag, _ := cmd.Flags().GetString("project")
	tc := model.TenantContext{
		TenantID:  firstNonEmpty(tenantFlag, fallback.TenantID, cfg.Tenant.TenantID),
		ProjectID: firstNonEmpty(projectFlag, fallback.ProjectID, cfg.Tenant.ProjectID),
	}
	if err := schema.ValidateTenantContext(tc); err != nil {
		return tc, err
	}
	return tc, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// outDir returns the --out flag or the configured output directory.
func outDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("out"); dir != "" {
		return dir
	}
	return cfg.Output.Dir
}

// readInput reads a file named on the command line.
func readInput(path, what string) ([]byte, error) {
	if path == "" {
		return nil, apperr.Validation("missing flag", apperr.Issue{Path: what, Message: "is required"})
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Dependency(eris.Wrapf(err, "read %s", what), path)
	}
	return data, nil
}

func newBuilder() *jobs.Builder {
	return jobs.NewBuilder(jobs.Config{
		Rates:           cfg.Jobs.Rates(),
		DefaultPriority: model.Priority(cfg.Jobs.DefaultPriority),
		DeadlineHours:   cfg.Jobs.DeadlineHours,
	})
}

// traceID returns --trace or a fresh id.
func traceID(cmd *cobra.Command) string {
	if t, _ := cmd.Flags().GetString("trace"); t != "" {
		return t
	}
	return uuid.NewString()
}

// writeJob stamps the trace id on r and writes it as a bundle entry, so
// the idempotency key and policy token flag travel with the request.
func writeJob(dir, name string, r model.JobRequest, trace string) (string, error) {
	r.Context.TraceID = trace
	entry, err := jobs.Entry(r)
	if err != nil {
		return "", apperr.Unexpected(err, "build job entry")
	}
	path := filepath.Join(dir, "jobs", name)
	if err := artifact.WriteJSON(path, entry); err != nil {
		return "", err
	}
	return path, nil
}

// printJSON writes v deterministically to w.
func printJSON(w io.Writer, v any) error {
	out, err := canonical.SerializeDeterministic(v)
	if err != nil {
		return apperr.Unexpected(err, "serialize output")
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

func newTable(w io.Writer, header ...any) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row(header))
	return tw
}

func printFiles(w io.Writer, paths []string) {
	for _, p := range paths {
		fmt.Fprintf(w, "wrote %s\n", p)
	}
}
