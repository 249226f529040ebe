package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/paws-sec/paws/internal/output"
	"github.com/paws-sec/paws/internal/policy"
	"github.com/paws-sec/paws/internal/providers/aws/common"
	"github.com/paws-sec/paws/internal/tools"
)

// DoctorResult is the structured output of paws doctor. It can be serialised
// to JSON via --format=json or rendered as a human-readable table (default).
type DoctorResult struct {
	AWS struct {
		Profile       string   `json:"profile,omitempty"`
		ProfilesFound []string `json:"profiles_found,omitempty"`
		Credentials   bool     `json:"credentials_ok"`
		AccountID     string   `json:"account_id,omitempty"`
		Region        string   `json:"region,omitempty"`
		RegionsOK     bool     `json:"regions_ok"`
		Error         string   `json:"error,omitempty"`
	} `json:"aws"`

	Tools []tools.Availability `json:"tools"`

	Policy struct {
		Path    string   `json:"path,omitempty"`
		Present bool     `json:"present"`
		Valid   bool     `json:"valid"`
		Errors  []string `json:"errors,omitempty"`
	} `json:"policy"`

	OverallHealthy bool `json:"overall_healthy"`
}

// doctorInput bundles what collectDoctorResult inspects.
type doctorInput struct {
	provider   common.AWSClientProvider
	locator    *tools.Locator
	profile    string
	region     string
	policyPath string
	home       string
}

func newDoctorCmd(g *globalOptions) *cobra.Command {
	var (
		format     string
		profile    string
		region     string
		policyPath string
	)
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run environment diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := doctorInput{
				provider:   common.NewDefaultAWSClientProvider(),
				locator:    tools.NewLocator(g.cfg.Tools.Dirs),
				profile:    g.cfg.ResolveProfile(profile),
				region:     firstNonEmpty(region, g.cfg.AWS.DefaultRegion),
				policyPath: policyPath,
			}
			result, err := runDoctor(cmd.Context(), in, cmd.OutOrStdout(), format)
			if err != nil {
				return err
			}
			if !result.OverallHealthy {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", `Output format: "table" or "json"`)
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile to use (default: credential chain)")
	cmd.Flags().StringVarP(&region, "region", "r", "", "Region used for the API checks")
	cmd.Flags().StringVar(&policyPath, "policy", "", "Policy file to validate (default: ./paws.yaml when present)")
	return cmd
}

// runDoctor collects all diagnostic results, renders them to w in the
// requested format, and returns the result.
// The returned error covers only rendering failures. Callers must inspect
// result.OverallHealthy to decide the exit status.
func runDoctor(ctx context.Context, in doctorInput, w io.Writer, format string) (DoctorResult, error) {
	result := collectDoctorResult(ctx, in)

	switch format {
	case "json":
		if err := output.WriteJSON(w, result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	default:
		renderDoctorTable(result, w)
	}

	return result, nil
}

// collectDoctorResult runs all environment checks and populates a DoctorResult.
// Tool availability is informational and never makes the result unhealthy.
func collectDoctorResult(ctx context.Context, in doctorInput) DoctorResult {
	var result DoctorResult

	// AWS: shared profiles → credentials → STS account ID → region discovery.
	result.AWS.Profile = in.profile
	if profiles, err := common.DiscoverProfiles(in.home); err == nil {
		result.AWS.ProfilesFound = profiles
	}
	profileCfg, err := in.provider.LoadProfile(ctx, in.profile, in.region)
	if err != nil {
		result.AWS.Error = err.Error()
	} else {
		result.AWS.Credentials = true
		result.AWS.AccountID = profileCfg.AccountID
		result.AWS.Region = profileCfg.Region
		if _, err := in.provider.GetActiveRegions(ctx, profileCfg); err != nil {
			result.AWS.Error = err.Error()
		} else {
			result.AWS.RegionsOK = true
		}
	}

	if in.locator != nil {
		result.Tools = in.locator.CheckAll()
	}

	// Policy: an explicit path must exist; the default file is optional.
	path := in.policyPath
	if path == "" {
		path = policy.DefaultPolicyFile
	}
	result.Policy.Path = path
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		result.Policy.Present = true
		cfg, loadErr := policy.LoadPolicy(path)
		if loadErr != nil {
			result.Policy.Errors = []string{loadErr.Error()}
			break
		}
		errs := policy.Validate(cfg, newRegistry().IDs())
		if len(errs) == 0 {
			result.Policy.Valid = true
		}
		for _, e := range errs {
			result.Policy.Errors = append(result.Policy.Errors, e.Error())
		}
	case os.IsNotExist(statErr) && in.policyPath == "":
		// The default policy file is optional.
	default:
		// An explicit path that is missing, or a stat failure, counts as a
		// present but unreadable policy.
		result.Policy.Present = true
		result.Policy.Errors = []string{statErr.Error()}
	}

	result.OverallHealthy = result.AWS.Credentials &&
		result.AWS.RegionsOK &&
		(!result.Policy.Present || result.Policy.Valid)

	return result
}

// renderDoctorTable writes the human-readable diagnostic output from result to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	fmt.Fprintf(w, "\nAWS (profile: %s):\n", displayProfile(result.AWS.Profile))
	if len(result.AWS.ProfilesFound) > 0 {
		doctorPrint(w, "Shared Profiles", "OK", fmt.Sprintf("%d found", len(result.AWS.ProfilesFound)))
	}
	if !result.AWS.Credentials {
		doctorPrint(w, "Credentials", "FAIL", result.AWS.Error)
		doctorPrint(w, "STS Identity", "FAIL", "skipped")
		doctorPrint(w, "Regions API", "FAIL", "skipped")
	} else {
		doctorPrint(w, "Credentials", "OK", "")
		doctorPrint(w, "STS Identity", "OK", "Account: "+result.AWS.AccountID)
		if result.AWS.RegionsOK {
			doctorPrint(w, "Regions API", "OK", result.AWS.Region)
		} else {
			doctorPrint(w, "Regions API", "FAIL", result.AWS.Error)
		}
	}

	fmt.Fprintln(w, "\nExternal Tools:")
	for _, t := range result.Tools {
		if t.Found {
			doctorPrint(w, t.Name, "OK", t.Path)
		} else {
			doctorPrint(w, t.Name, "Not found (optional)", t.InstallHint)
		}
	}

	fmt.Fprintln(w, "\nPolicy:")
	if !result.Policy.Present {
		doctorPrint(w, result.Policy.Path+" present", "Not found (optional)", "")
		return
	}
	doctorPrint(w, result.Policy.Path+" present", "YES", "")
	if result.Policy.Valid {
		doctorPrint(w, "Policy valid", "OK", "")
		return
	}
	for _, e := range result.Policy.Errors {
		doctorPrint(w, "Policy valid", "FAIL", e)
	}
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
