// Package tools locates and runs the external security scanners paws can
// drive: PACU, Scout Suite, CloudMapper, and aws-public-ips. Tools are run as
// subprocesses; their output is written to disk and only their run status is
// recorded in the audit report.
package tools

import (
	"fmt"
	"strings"
)

// Tool keys accepted by --tools and `paws tools run`.
const (
	KeyPACU        = "pacu"
	KeyScout       = "scout"
	KeyCloudMapper = "cloudmapper"
	KeyPublicIPs   = "public-ips"
)

// Tool describes one external scanner.
type Tool struct {
	// Key is the short identifier used on the command line.
	Key string

	// Name is the display name.
	Name string

	// Alternatives are the executable or directory names tried in order.
	Alternatives []string

	// InstallHint tells the user how to make the tool available.
	InstallHint string

	// Output is the default output location, relative to the output dir.
	Output string
}

// DefaultPACUModules are the read-only PACU modules run when none are given.
var DefaultPACUModules = []string{
	"iam__enum_users",
	"iam__enum_roles",
	"s3__enum_buckets",
	"s3__audit",
	"ec2__enum",
}

var registry = []Tool{
	{
		Key:          KeyPACU,
		Name:         "PACU",
		Alternatives: []string{"pacu", "pacu.py"},
		InstallHint:  "git clone https://github.com/RhinoSecurityLabs/pacu.git tools/pacu",
		Output:       "pacu/pacu.log",
	},
	{
		Key:          KeyScout,
		Name:         "Scout Suite",
		Alternatives: []string{"scout", "scout-suite"},
		InstallHint:  "git clone https://github.com/nccgroup/ScoutSuite.git tools/scout-suite && pip install -r tools/scout-suite/requirements.txt",
		Output:       "scout-suite",
	},
	{
		Key:          KeyCloudMapper,
		Name:         "CloudMapper",
		Alternatives: []string{"cloudmapper", "cloudmapper.py"},
		InstallHint:  "git clone https://github.com/duo-labs/cloudmapper.git tools/cloudmapper",
		Output:       "account-data",
	},
	{
		Key:          KeyPublicIPs,
		Name:         "aws-public-ips",
		Alternatives: []string{"aws-public-ips"},
		InstallHint:  "pip install aws-public-ips",
		Output:       "aws-public-ips/public-ips.json",
	},
}

// aliases maps alternative spellings accepted on the command line.
var aliases = map[string]string{
	"scout-suite":    KeyScout,
	"scoutsuite":     KeyScout,
	"aws-public-ips": KeyPublicIPs,
	"publicips":      KeyPublicIPs,
}

// All returns every registered tool in display order.
func All() []Tool {
	return append([]Tool(nil), registry...)
}

// Keys returns the keys of every registered tool.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for _, t := range registry {
		keys = append(keys, t.Key)
	}
	return keys
}

// Lookup returns the tool registered under key or one of its aliases.
func Lookup(key string) (Tool, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if canonical, ok := aliases[key]; ok {
		key = canonical
	}
	for _, t := range registry {
		if t.Key == key {
			return t, true
		}
	}
	return Tool{}, false
}

// ParseKeys resolves tool names to canonical keys. Each element may itself
// be a comma-separated list; "all" selects every tool. Duplicates are
// dropped and unknown names are an error.
func ParseKeys(names ...string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if strings.EqualFold(part, "all") {
				return Keys(), nil
			}
			t, ok := Lookup(part)
			if !ok {
				return nil, fmt.Errorf("unknown tool %q (valid: %s, all)", part, strings.Join(Keys(), ", "))
			}
			if !seen[t.Key] {
				seen[t.Key] = true
				out = append(out, t.Key)
			}
		}
	}
	return out, nil
}
