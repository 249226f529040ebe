package tools

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ErrToolNotFound is returned when a tool is neither on PATH nor in any of
// the configured tools directories.
var ErrToolNotFound = errors.New("tool not found")

// Locator resolves tool executables: PATH first, then the local tools
// directories in order.
type Locator struct {
	Dirs []string

	// lookPath defaults to exec.LookPath.
	lookPath func(string) (string, error)
}

// NewLocator returns a Locator that searches dirs after PATH.
func NewLocator(dirs []string) *Locator {
	return &Locator{Dirs: dirs, lookPath: exec.LookPath}
}

// Locate returns the absolute path of the tool's executable or entry-point
// script, or an error wrapping ErrToolNotFound.
func (l *Locator) Locate(t Tool) (string, error) {
	lookPath := l.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	for _, alt := range t.Alternatives {
		if p, err := lookPath(alt); err == nil {
			return filepath.Abs(p)
		}
	}

	for _, dir := range l.Dirs {
		for _, alt := range t.Alternatives {
			if p, ok := findInToolDir(filepath.Join(dir, alt), alt); ok {
				return filepath.Abs(p)
			}
			// Clones are usually checked out under their repository name.
			switch alt {
			case "scout", "scout-suite":
				if p := filepath.Join(dir, "scout-suite", "scout.py"); isFile(p) {
					return filepath.Abs(p)
				}
			case "cloudmapper":
				if p := filepath.Join(dir, "cloudmapper", "cloudmapper.py"); isFile(p) {
					return filepath.Abs(p)
				}
			}
		}
	}
	return "", fmt.Errorf("%s: %w", t.Name, ErrToolNotFound)
}

// findInToolDir checks the common entry points inside a tool checkout.
func findInToolDir(toolDir, alt string) (string, bool) {
	if !isDir(toolDir) {
		return "", false
	}
	candidates := []string{
		alt + ".py",
		"cli.py",
		alt,
		"pacu.py",
		"scout.py",
	}
	for _, c := range candidates {
		p := filepath.Join(toolDir, c)
		if isFile(p) {
			return p, true
		}
	}
	return "", false
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

// Availability is the lookup result for one tool.
type Availability struct {
	Key         string `json:"tool"`
	Name        string `json:"name"`
	Found       bool   `json:"found"`
	Path        string `json:"path,omitempty"`
	InstallHint string `json:"install_hint,omitempty"`
}

// CheckAll reports the availability of every registered tool.
func (l *Locator) CheckAll() []Availability {
	out := make([]Availability, 0, len(registry))
	for _, t := range registry {
		a := Availability{Key: t.Key, Name: t.Name}
		if p, err := l.Locate(t); err == nil {
			a.Found = true
			a.Path = p
		} else {
			a.InstallHint = t.InstallHint
		}
		out = append(out, a)
	}
	return out
}
