package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/paws-sec/paws/internal/engine"
	"github.com/paws-sec/paws/internal/output"
	"github.com/paws-sec/paws/internal/tools"
)

func newToolsCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect and run external security tools",
	}
	cmd.AddCommand(newToolsCheckCmd(g), newToolsRunCmd(g))
	return cmd
}

func newToolsCheckCmd(g *globalOptions) *cobra.Command {
	var (
		format  string
		noColor bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report which external tools are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			avail := tools.NewLocator(g.cfg.Tools.Dirs).CheckAll()
			return writeAvailability(cmd.OutOrStdout(), avail, format, useColor(noColor))
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable coloured output")
	return cmd
}

func writeAvailability(w io.Writer, avail []tools.Availability, format string, colored bool) error {
	switch format {
	case "json":
		return output.WriteJSON(w, avail)
	case "table":
		output.RenderToolAvailability(w, avail, colored)
		return nil
	default:
		return fmt.Errorf("invalid --format %q: must be table or json", format)
	}
}

func newToolsRunCmd(g *globalOptions) *cobra.Command {
	var (
		profile     string
		region      string
		pacuModules []string
		outputPath  string
		format      string
		noColor     bool
	)
	cmd := &cobra.Command{
		Use:   "run <tool>...",
		Short: "Run the named external tools (pacu, scout, cloudmapper, public-ips, or all)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := tools.ParseKeys(args...)
			if err != nil {
				return err
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("invalid --format %q: must be table or json", format)
			}
			runner := newToolRunner(g, profile, toolRegion(g, region), pacuModules, cmd.ErrOrStderr())
			colored := useColor(noColor)
			progress(cmd, colored, "Running %d tool(s)", len(keys))
			return runTools(cmd.Context(), runner, keys, outputPath, format, colored, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile passed to the tools as AWS_PROFILE")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region passed to the tools as AWS_DEFAULT_REGION")
	cmd.Flags().StringSliceVar(&pacuModules, "pacu-modules", nil, "PACU modules to run")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the run results as JSON to this path")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable coloured output")
	return cmd
}

// runTools runs keys sequentially and prints the results. It fails only on
// output errors; individual tool failures are reported in the results.
func runTools(ctx context.Context, runner engine.ToolRunner, keys []string, outputPath, format string, colored bool, w io.Writer) error {
	runs := runner.RunAll(ctx, keys)

	if outputPath != "" {
		if err := output.WriteJSONFile(outputPath, runs); err != nil {
			return err
		}
	}
	if format == "json" {
		return output.WriteJSON(w, runs)
	}
	output.RenderToolRuns(w, runs, colored)
	return nil
}
