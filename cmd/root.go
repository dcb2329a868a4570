package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sells-group/growth-cli/internal/apperr"
	"github.com/sells-group/growth-cli/internal/config"
)

var cfg *config.Config

var (
	configPath string
	logLevel   string
	debug      bool
)

// errContext describes the running command. It is attached, redacted, to
// the error envelope.
var errContext map[string]any

var rootCmd = &cobra.Command{
	Use:   "growth-cli",
	Short: "Runnerless growth automation toolkit",
	Long: `Analyzes static site exports, funnel events, experiment candidates and
brand profiles, and writes a canonical report plus an approval-gated bundle
of job requests. Nothing is ever executed: every request requires approval,
and action jobs additionally require a policy token.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		errContext = commandContext(cmd)

		c, err := config.LoadFile(configPath)
		if err != nil {
			return apperr.WrapValidation(err, "load config")
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		if debug {
			c.Debug = true
		}
		if err := c.Validate(); err != nil {
			return apperr.WrapValidation(err, "invalid config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return apperr.WrapValidation(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default ./config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.BoolVar(&debug, "debug", false, "include stack traces in error output")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperr.WrapValidation(err, "invalid flags")
	})
}

// commandContext records the command path and the flags set on it.
func commandContext(cmd *cobra.Command) map[string]any {
	ctx := map[string]any{"command": cmd.CommandPath()}
	flags := make(map[string]any)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		flags[f.Name] = f.Value.String()
	})
	if len(flags) > 0 {
		ctx["flags"] = flags
	}
	return ctx
}

// writeError prints err as a JSON envelope and returns the exit code.
func writeError(w io.Writer, err error, ctx map[string]any) int {
	verbose := debug || (cfg != nil && cfg.Debug)
	zap.L().Debug("cmd: command failed", apperr.ZapError(err), apperr.ZapContext(ctx))
	env := apperr.ToEnvelope(err, verbose, ctx)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(env)
	return apperr.ExitCode(err)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(writeError(os.Stderr, err, errContext))
	}
}
