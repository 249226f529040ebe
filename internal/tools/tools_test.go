package tools

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paws-sec/paws/internal/models"
)

// noPath is a lookPath that never finds anything, isolating tests from the
// host PATH.
func noPath(string) (string, error) { return "", exec.ErrNotFound }

func writeScript(t *testing.T, path, body string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func testLocator(dirs ...string) *Locator {
	return &Locator{Dirs: dirs, lookPath: noPath}
}

func TestParseKeys(t *testing.T) {
	got, err := ParseKeys("pacu,scout-suite", "pacu", "aws-public-ips")
	require.NoError(t, err)
	assert.Equal(t, []string{"pacu", "scout", "public-ips"}, got)

	got, err = ParseKeys("all")
	require.NoError(t, err)
	assert.Equal(t, []string{"pacu", "scout", "cloudmapper", "public-ips"}, got)

	_, err = ParseKeys("prowler")
	assert.ErrorContains(t, err, "prowler")
}

func TestLocate_PathFirst(t *testing.T) {
	bin := t.TempDir()
	script := writeScript(t, filepath.Join(bin, "aws-public-ips"), "true")
	t.Setenv("PATH", bin)

	toolsDir := t.TempDir()
	writeScript(t, filepath.Join(toolsDir, "aws-public-ips", "aws-public-ips"), "true")

	tool, _ := Lookup(KeyPublicIPs)
	got, err := NewLocator([]string{toolsDir}).Locate(tool)
	require.NoError(t, err)
	assert.Equal(t, script, got)
}

func TestLocate_ToolsDirCandidates(t *testing.T) {
	dir := t.TempDir()
	pacu := writeScript(t, filepath.Join(dir, "pacu", "cli.py"), "true")
	// A package directory named like the tool must not be returned.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pacu", "pacu"), 0o755))

	tool, _ := Lookup(KeyPACU)
	got, err := testLocator(filepath.Join(dir, "missing"), dir).Locate(tool)
	require.NoError(t, err)
	assert.Equal(t, pacu, got)
}

func TestLocate_RepositoryNames(t *testing.T) {
	dir := t.TempDir()
	scout := writeScript(t, filepath.Join(dir, "scout-suite", "scout.py"), "true")
	cm := writeScript(t, filepath.Join(dir, "cloudmapper", "cloudmapper.py"), "true")
	l := testLocator(dir)

	tool, _ := Lookup(KeyScout)
	got, err := l.Locate(tool)
	require.NoError(t, err)
	assert.Equal(t, scout, got)

	tool, _ = Lookup(KeyCloudMapper)
	got, err = l.Locate(tool)
	require.NoError(t, err)
	assert.Equal(t, cm, got)
}

func TestLocate_NotFound(t *testing.T) {
	tool, _ := Lookup(KeyCloudMapper)
	_, err := testLocator(t.TempDir()).Locate(tool)
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestCheckAll(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, filepath.Join(dir, "pacu", "pacu.py"), "true")

	avail := testLocator(dir).CheckAll()
	require.Len(t, avail, 4)
	assert.True(t, avail[0].Found)
	assert.Empty(t, avail[0].InstallHint)
	for _, a := range avail[1:] {
		assert.False(t, a.Found, a.Key)
		assert.NotEmpty(t, a.InstallHint, a.Key)
	}
}

func TestRun_NotFound(t *testing.T) {
	r := NewRunner(testLocator(t.TempDir()), Options{OutputDir: t.TempDir()}, nil)
	run := r.Run(context.Background(), KeyScout)
	assert.Equal(t, models.ToolRunNotFound, run.Status)
	assert.Contains(t, run.Error, "install with")
	assert.Empty(t, run.Command)
}

func TestRun_PublicIPsWritesStdoutAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, filepath.Join(dir, "aws-public-ips", "aws-public-ips"),
		`echo "{\"profile\":\"$AWS_PROFILE\",\"region\":\"$AWS_DEFAULT_REGION\",\"args\":\"$*\"}"`)
	out := t.TempDir()

	r := NewRunner(testLocator(dir), Options{Profile: "audit", Region: "eu-west-1", OutputDir: out}, nil)
	run := r.Run(context.Background(), KeyPublicIPs)

	require.Equal(t, models.ToolRunSuccess, run.Status, run.Error)
	assert.Equal(t, 0, run.ExitCode)
	assert.Equal(t, filepath.Join(out, "aws-public-ips", "public-ips.json"), run.OutputPath)

	data, err := os.ReadFile(run.OutputPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"profile":"audit","region":"eu-west-1","args":"--format json"}`, string(data))
}

func TestRun_PythonEntryPoint(t *testing.T) {
	dir := t.TempDir()
	entry := writeScript(t, filepath.Join(dir, "pacu", "pacu.py"), "exit 3")
	python := writeScript(t, filepath.Join(t.TempDir(), "fakepython"), `echo "$@"`)
	out := t.TempDir()

	r := NewRunner(testLocator(dir), Options{OutputDir: out, Python: python, PACUModules: []string{"iam__enum_users", "ec2__enum"}}, nil)
	run := r.Run(context.Background(), KeyPACU)

	require.Equal(t, models.ToolRunSuccess, run.Status, run.Error)
	assert.Equal(t, []string{python, entry, "-m", "iam__enum_users,ec2__enum"}, run.Command)

	log, err := os.ReadFile(filepath.Join(out, "pacu", "pacu.log"))
	require.NoError(t, err)
	assert.Equal(t, entry+" -m iam__enum_users,ec2__enum\n", string(log))
}

func TestRun_FailureRecordsExitCodeAndStderr(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, filepath.Join(dir, "scout-suite", "scout.py"), `echo "credentials expired" >&2; exit 2`)
	out := t.TempDir()

	r := NewRunner(testLocator(dir), Options{OutputDir: out, Python: "/bin/sh", Profile: "prod"}, nil)
	run := r.Run(context.Background(), KeyScout)

	assert.Equal(t, models.ToolRunFailed, run.Status)
	assert.Equal(t, 2, run.ExitCode)
	assert.Contains(t, run.StderrTail, "credentials expired")
	assert.Equal(t, []string{"aws", "--report-dir", filepath.Join(out, "scout-suite"), "--no-browser", "--profile", "prod"}, run.Command[2:])
	assert.DirExists(t, filepath.Join(out, "scout-suite"))
}

func TestRun_CloudMapperRunsFromCheckout(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, filepath.Join(dir, "cloudmapper", "cloudmapper.py"), `pwd -P >&2`)

	r := NewRunner(testLocator(dir), Options{OutputDir: t.TempDir(), Python: "/bin/sh", Profile: "dev"}, nil)
	run := r.Run(context.Background(), KeyCloudMapper)

	require.Equal(t, models.ToolRunSuccess, run.Status, run.Error)
	assert.Equal(t, []string{"collect", "--account", "dev", "--profile", "dev"}, run.Command[2:])
	wd, err := filepath.EvalSymlinks(filepath.Join(dir, "cloudmapper"))
	require.NoError(t, err)
	assert.Equal(t, wd, strings.TrimSpace(run.StderrTail))
	assert.Equal(t, filepath.Join(dir, "cloudmapper", "account-data", "dev"), run.OutputPath)
}

func TestRun_Timeout(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, filepath.Join(dir, "aws-public-ips", "aws-public-ips"), "exec sleep 10")

	r := NewRunner(testLocator(dir), Options{OutputDir: t.TempDir(), Timeout: 200 * time.Millisecond}, nil)
	start := time.Now()
	run := r.Run(context.Background(), KeyPublicIPs)

	assert.Equal(t, models.ToolRunTimeout, run.Status)
	assert.Less(t, time.Since(start), 8*time.Second)
}

func TestRunAll_ContinuesPastMissingTools(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, filepath.Join(dir, "aws-public-ips", "aws-public-ips"), "echo []")

	r := NewRunner(testLocator(dir), Options{OutputDir: t.TempDir()}, nil)
	runs := r.RunAll(context.Background(), []string{KeyPACU, KeyPublicIPs})
	require.Len(t, runs, 2)
	assert.Equal(t, models.ToolRunNotFound, runs[0].Status)
	assert.Equal(t, models.ToolRunSuccess, runs[1].Status)
}

func TestTailBuffer(t *testing.T) {
	tb := newTailBuffer(5)
	_, _ = tb.Write([]byte("abc"))
	_, _ = tb.Write([]byte("defg"))
	assert.Equal(t, "cdefg", tb.String())
}
