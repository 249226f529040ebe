package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/paws-sec/paws/internal/config"
)

var (
	// errPolicyViolation is returned by audit when enforcement thresholds are
	// crossed. main turns it into exit code 1.
	errPolicyViolation = errors.New("policy enforcement failed")

	errUnhealthy = errors.New("environment is not healthy")
)

// globalOptions holds the persistent flags and the state PersistentPreRunE
// builds from them.
type globalOptions struct {
	verbose    bool
	configPath string

	log *zap.Logger
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:           "paws",
		Short:         "Read-only AWS security audit with optional third-party scanners",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(g.verbose)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			g.log = log

			loader := config.NewFileLoader(g.configPath)
			cfg, err := loader.Load()
			if err != nil {
				return err
			}
			g.cfg = cfg
			g.log.Debug("configuration loaded", zap.String("path", loader.ConfigPath()))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.log != nil {
				_ = g.log.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default ~/.config/paws/config.yaml)")

	root.AddCommand(
		newAuditCmd(g),
		newToolsCmd(g),
		newDoctorCmd(g),
		newExplainCmd(),
		newVersionCmd(),
	)
	return root
}

// newLogger builds the CLI logger: production config with console encoding,
// warn level by default and debug when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = !verbose
	return cfg.Build()
}

// useColor reports whether console output should carry ANSI colours.
// color.NoColor is set by fatih/color when stdout is not a terminal or
// NO_COLOR is present.
func useColor(noColorFlag bool) bool {
	return !noColorFlag && !color.NoColor
}

// progress prints a user-facing status line to the command's stderr.
func progress(cmd *cobra.Command, colored bool, format string, args ...any) {
	c := color.New(color.FgCyan)
	if colored {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	fmt.Fprintln(cmd.ErrOrStderr(), c.Sprintf("==> "+format, args...))
}
