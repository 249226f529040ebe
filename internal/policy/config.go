package policy

// PolicyConfig is the parsed form of paws.yaml.
type PolicyConfig struct {
	Version     int                       `yaml:"version"`
	Categories  map[string]CategoryConfig `yaml:"categories"`
	Rules       map[string]RuleConfig     `yaml:"rules"`
	Enforcement EnforcementConfig         `yaml:"enforcement"`
}

// CategoryConfig toggles a whole check category. A nil Enabled means enabled.
// MinSeverity drops findings below the given severity for the category.
type CategoryConfig struct {
	Enabled     *bool  `yaml:"enabled,omitempty"`
	MinSeverity string `yaml:"min_severity,omitempty"`
}

// RuleConfig overrides a single rule. Params carries numeric thresholds and
// the scoring overrides "weight" and "cap". Ports replaces the port list of
// port-matching rules such as EC2_SG_SENSITIVE_PORT_OPEN.
type RuleConfig struct {
	Enabled  *bool              `yaml:"enabled,omitempty"`
	Severity string             `yaml:"severity,omitempty"`
	Params   map[string]float64 `yaml:"params,omitempty"`
	Ports    []int              `yaml:"ports,omitempty"`
}

// EnforcementConfig makes the CLI exit non-zero when the audit result crosses
// a threshold.
type EnforcementConfig struct {
	FailOnSeverity string `yaml:"fail_on_severity,omitempty"`
	MinScore       *int   `yaml:"min_score,omitempty"`
}

// CategoryEnabled reports whether the named category is enabled. It is safe to
// call with cfg == nil.
func (cfg *PolicyConfig) CategoryEnabled(name string) bool {
	if cfg == nil {
		return true
	}
	c, ok := cfg.Categories[name]
	if !ok || c.Enabled == nil {
		return true
	}
	return *c.Enabled
}
