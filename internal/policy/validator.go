package policy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedVersion wraps the version error returned by Validate.
var ErrUnsupportedVersion = errors.New("unsupported policy version")

// MaxPort is the highest valid TCP/UDP port.
const MaxPort = 65535

// validCategories is the set of recognised check category names.
var validCategories = map[string]struct{}{
	"iam":        {},
	"s3":         {},
	"ec2":        {},
	"monitoring": {},
	"network":    {},
}

// validSeverities is the set of allowed severity strings (upper-case canonical form).
var validSeverities = map[string]struct{}{
	"CRITICAL": {},
	"HIGH":     {},
	"MEDIUM":   {},
	"LOW":      {},
	"INFO":     {},
}

// scoringParams are rule params that must be non-negative integers.
var scoringParams = []string{"weight", "cap"}

// Validate checks cfg for semantic correctness and returns all validation errors
// found. An empty slice means the config is valid.
//
// Checks performed:
//   - version must be 1
//   - category names must be one of: iam, s3, ec2, monitoring, network
//   - category min_severity must be a valid severity value if set
//   - rule IDs must appear in availableRuleIDs
//   - rule severity overrides must be valid severity values if set
//   - rule weight and cap params must not be negative
//   - rule ports must lie in [1, 65535]
//   - enforcement fail_on_severity must be a valid severity value if set
//   - enforcement min_score must lie in [0, 100] if set
//
// All errors are collected before returning; Validate never stops at the first error.
func Validate(cfg *PolicyConfig, availableRuleIDs []string) []error {
	if cfg == nil {
		return []error{fmt.Errorf("policy config is nil")}
	}

	knownIDs := make(map[string]struct{}, len(availableRuleIDs))
	for _, id := range availableRuleIDs {
		knownIDs[id] = struct{}{}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: %w %d; must be 1", ErrUnsupportedVersion, cfg.Version))
	}

	for name, ccfg := range cfg.Categories {
		if _, ok := validCategories[name]; !ok {
			errs = append(errs, fmt.Errorf("categories.%s: unknown category; valid values: iam, s3, ec2, monitoring, network", name))
		}
		if ccfg.MinSeverity != "" && !validSeverity(ccfg.MinSeverity) {
			errs = append(errs, fmt.Errorf("categories.%s.min_severity: invalid value %q; valid values: CRITICAL, HIGH, MEDIUM, LOW, INFO", name, ccfg.MinSeverity))
		}
	}

	for ruleID, rcfg := range cfg.Rules {
		if _, ok := knownIDs[ruleID]; !ok {
			errs = append(errs, fmt.Errorf("rules.%s: unknown rule ID", ruleID))
		}
		if rcfg.Severity != "" && !validSeverity(rcfg.Severity) {
			errs = append(errs, fmt.Errorf("rules.%s.severity: invalid value %q; valid values: CRITICAL, HIGH, MEDIUM, LOW, INFO", ruleID, rcfg.Severity))
		}
		for _, key := range scoringParams {
			if v, ok := rcfg.Params[key]; ok && v < 0 {
				errs = append(errs, fmt.Errorf("rules.%s.params.%s: must not be negative; got %v", ruleID, key, v))
			}
		}
		for _, p := range rcfg.Ports {
			if p < 1 || p > MaxPort {
				errs = append(errs, fmt.Errorf("rules.%s.ports: %d out of range; must be between 1 and %d", ruleID, p, MaxPort))
			}
		}
	}

	if s := cfg.Enforcement.FailOnSeverity; s != "" && !validSeverity(s) {
		errs = append(errs, fmt.Errorf("enforcement.fail_on_severity: invalid value %q; valid values: CRITICAL, HIGH, MEDIUM, LOW, INFO", s))
	}
	if m := cfg.Enforcement.MinScore; m != nil && (*m < 0 || *m > 100) {
		errs = append(errs, fmt.Errorf("enforcement.min_score: %d out of range; must be between 0 and 100", *m))
	}

	return errs
}

func validSeverity(s string) bool {
	_, ok := validSeverities[strings.ToUpper(s)]
	return ok
}
