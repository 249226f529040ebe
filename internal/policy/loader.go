package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPolicyFile is the policy path looked up in the working directory
// when no --policy flag is given.
const DefaultPolicyFile = "paws.yaml"

// LoadPolicy reads and parses the policy file at path. It only checks the
// YAML syntax; Validate reports every semantic problem, the version included.
func LoadPolicy(path string) (*PolicyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg PolicyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse policy %s: %w", path, err)
	}

	if cfg.Categories == nil {
		cfg.Categories = make(map[string]CategoryConfig)
	}

	if cfg.Rules == nil {
		cfg.Rules = make(map[string]RuleConfig)
	}

	return &cfg, nil
}

// LoadOptional loads path when it is set, or DefaultPolicyFile when that file
// exists. It returns (nil, nil) when no policy applies.
func LoadOptional(path string) (*PolicyConfig, error) {
	if path != "" {
		return LoadPolicy(path)
	}
	if _, err := os.Stat(DefaultPolicyFile); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return LoadPolicy(DefaultPolicyFile)
}
