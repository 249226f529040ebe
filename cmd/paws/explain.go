package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paws-sec/paws/internal/compliance"
	"github.com/paws-sec/paws/internal/models"
	"github.com/paws-sec/paws/internal/render"
)

func newExplainCmd() *cobra.Command {
	var (
		reportPath string
		format     string
	)
	cmd := &cobra.Command{
		Use:   "explain <framework> <control-id>",
		Short: "Explain a compliance control from a saved JSON report",
		Example: "  paws audit --compliance cis -o report.json\n" +
			"  paws explain cis 1.10 --report report.json",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			framework, controlID := strings.ToLower(args[0]), args[1]
			if _, ok := compliance.Lookup(framework); !ok {
				return fmt.Errorf("unknown framework %q (valid: cis, nist, pci)", framework)
			}

			report, err := readReport(reportPath)
			if err != nil {
				return err
			}

			control := render.FindControl(report, framework, controlID)
			if format == "json" {
				return render.WriteExplainJSON(cmd.OutOrStdout(), control, report.Findings, framework, controlID)
			}
			if control == nil {
				return fmt.Errorf("no control %s found for framework %s in %s (was the audit run with --compliance?)",
					controlID, framework, reportPath)
			}
			render.RenderControlExplanation(cmd.OutOrStdout(), *control, report.Findings)
			return nil
		},
	}
	cmd.Flags().StringVar(&reportPath, "report", "", "JSON report written by paws audit --output (required)")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")
	_ = cmd.MarkFlagRequired("report")
	return cmd
}

// readReport loads an AuditReport written by `paws audit --output`.
func readReport(path string) (*models.AuditReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var report models.AuditReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &report, nil
}
