package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSampleReport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.json")
	data, err := json.Marshal(sampleReport())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExplainCmd_Table(t *testing.T) {
	path := writeSampleReport(t)

	out, _, err := execRoot(t, "explain", "CIS", "1.10", "--report", path)
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	for _, want := range []string{"CONTROL cis 1.10 (FAIL)", "IAM_USER_NO_MFA", "- alice (global)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ROOT_ACCOUNT_MFA_DISABLED") {
		t.Errorf("unrelated finding rendered:\n%s", out)
	}
}

func TestExplainCmd_JSON(t *testing.T) {
	path := writeSampleReport(t)

	out, _, err := execRoot(t, "explain", "cis", "2.1.4", "--report", path, "--format", "json")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	var got struct {
		Control struct {
			Status string `json:"status"`
		} `json:"control"`
		Findings []any `json:"findings"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Control.Status != "PASS" || len(got.Findings) != 0 {
		t.Errorf("unexpected explanation: %+v", got)
	}
}

func TestExplainCmd_UnknownControl(t *testing.T) {
	path := writeSampleReport(t)

	_, _, err := execRoot(t, "explain", "nist", "AC-2", "--report", path)
	if err == nil || !strings.Contains(err.Error(), "no control AC-2") {
		t.Fatalf("expected missing control error, got %v", err)
	}
}

func TestExplainCmd_UnknownFramework(t *testing.T) {
	path := writeSampleReport(t)

	_, _, err := execRoot(t, "explain", "hipaa", "1", "--report", path)
	if err == nil || !strings.Contains(err.Error(), "unknown framework") {
		t.Fatalf("expected framework error, got %v", err)
	}
}

func TestExplainCmd_RequiresReport(t *testing.T) {
	if _, _, err := execRoot(t, "explain", "cis", "1.10"); err == nil {
		t.Fatal("expected error without --report")
	}
}
