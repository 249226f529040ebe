package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/paws-sec/paws/internal/models"
)

const (
	// DefaultTimeout bounds a single tool invocation.
	DefaultTimeout = 30 * time.Minute

	stderrTailBytes = 4096
	waitDelay       = 5 * time.Second
)

// Options configure how tools are invoked.
type Options struct {
	Profile string
	Region  string

	// OutputDir is the root under which tool output is written.
	OutputDir string

	// Python runs entry points ending in .py. Defaults to python3.
	Python string

	Timeout time.Duration

	PACUModules []string

	// CloudMapperAccount is the account name passed to `cloudmapper collect`.
	// Defaults to the profile name, then "default".
	CloudMapperAccount string

	// Progress receives tool stdout (when not redirected to a file) and
	// stderr. Nil discards it.
	Progress io.Writer
}

// Runner invokes external tools one at a time.
type Runner struct {
	locator *Locator
	opts    Options
	log     *zap.Logger
}

// NewRunner returns a Runner using locator to find executables.
func NewRunner(locator *Locator, opts Options, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Python == "" {
		opts.Python = "python3"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if len(opts.PACUModules) == 0 {
		opts.PACUModules = DefaultPACUModules
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "out"
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	return &Runner{locator: locator, opts: opts, log: log}
}

// RunAll runs the tools named by keys sequentially. A tool that cannot be
// found or fails does not stop the others. It stops early only when ctx is
// cancelled.
func (r *Runner) RunAll(ctx context.Context, keys []string) []models.ToolRun {
	runs := make([]models.ToolRun, 0, len(keys))
	for _, key := range keys {
		if ctx.Err() != nil {
			break
		}
		runs = append(runs, r.Run(ctx, key))
	}
	return runs
}

// invocation is the resolved command line of one tool run.
type invocation struct {
	args       []string
	dir        string
	stdoutFile string
	outputPath string
}

// Run locates and runs a single tool and returns its run record.
func (r *Runner) Run(ctx context.Context, key string) models.ToolRun {
	t, ok := Lookup(key)
	if !ok {
		return models.ToolRun{Tool: key, Name: key, Status: models.ToolRunError, ExitCode: -1,
			Error: fmt.Sprintf("unknown tool %q", key)}
	}
	run := models.ToolRun{Tool: t.Key, Name: t.Name, ExitCode: -1}

	path, err := r.locator.Locate(t)
	if err != nil {
		r.log.Warn("tool not found", zap.String("tool", t.Key))
		run.Status = models.ToolRunNotFound
		run.Error = fmt.Sprintf("%v; install with: %s", err, t.InstallHint)
		return run
	}
	run.Path = path

	inv, err := r.invocationFor(t, path)
	if err != nil {
		run.Status = models.ToolRunError
		run.Error = err.Error()
		return run
	}
	run.OutputPath = inv.outputPath

	argv := inv.args
	if strings.HasSuffix(path, ".py") {
		argv = append([]string{r.opts.Python, path}, argv...)
	} else {
		argv = append([]string{path}, argv...)
	}
	run.Command = argv

	r.execute(ctx, &run, argv, inv)
	return run
}

func (r *Runner) invocationFor(t Tool, path string) (invocation, error) {
	out := func(rel string) string { return filepath.Join(r.opts.OutputDir, rel) }

	switch t.Key {
	case KeyPACU:
		return invocation{
			args:       []string{"-m", strings.Join(r.opts.PACUModules, ",")},
			stdoutFile: out(t.Output),
			outputPath: out(t.Output),
		}, nil

	case KeyScout:
		dir := out(t.Output)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return invocation{}, fmt.Errorf("create %s: %w", dir, err)
		}
		args := []string{"aws", "--report-dir", dir, "--no-browser"}
		if r.opts.Profile != "" {
			args = append(args, "--profile", r.opts.Profile)
		}
		return invocation{args: args, outputPath: dir}, nil

	case KeyCloudMapper:
		account := r.opts.CloudMapperAccount
		if account == "" {
			account = r.opts.Profile
		}
		if account == "" {
			account = "default"
		}
		args := []string{"collect", "--account", account}
		if r.opts.Profile != "" {
			args = append(args, "--profile", r.opts.Profile)
		}
		// CloudMapper reads config.json and writes account-data/ relative to
		// its own checkout.
		workDir := filepath.Dir(path)
		return invocation{
			args:       args,
			dir:        workDir,
			outputPath: filepath.Join(workDir, t.Output, account),
		}, nil

	case KeyPublicIPs:
		return invocation{
			args:       []string{"--format", "json"},
			stdoutFile: out(t.Output),
			outputPath: out(t.Output),
		}, nil
	}
	return invocation{}, fmt.Errorf("no invocation defined for tool %q", t.Key)
}

func (r *Runner) execute(ctx context.Context, run *models.ToolRun, argv []string, inv invocation) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), r.envOverrides()...)
	if inv.dir != "" {
		cmd.Dir = inv.dir
		cmd.Env = append(cmd.Env, "PWD="+inv.dir)
	}
	cmd.WaitDelay = waitDelay

	stdout := r.opts.Progress
	if inv.stdoutFile != "" {
		if err := os.MkdirAll(filepath.Dir(inv.stdoutFile), 0o755); err != nil {
			run.Status = models.ToolRunError
			run.Error = fmt.Sprintf("create output directory: %v", err)
			return
		}
		f, err := os.Create(inv.stdoutFile)
		if err != nil {
			run.Status = models.ToolRunError
			run.Error = fmt.Sprintf("create output file: %v", err)
			return
		}
		defer f.Close()
		stdout = f
	}
	tail := newTailBuffer(stderrTailBytes)
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(tail, r.opts.Progress)

	r.log.Info("running tool", zap.String("tool", run.Tool), zap.Strings("argv", argv), zap.Duration("timeout", r.opts.Timeout))
	start := time.Now()
	err := cmd.Run()
	run.DurationSeconds = time.Since(start).Seconds()
	run.StderrTail = tail.String()
	if cmd.ProcessState != nil {
		run.ExitCode = cmd.ProcessState.ExitCode()
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		run.Status = models.ToolRunSuccess
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		run.Status = models.ToolRunTimeout
		run.Error = fmt.Sprintf("timed out after %s", r.opts.Timeout)
	case errors.As(err, &exitErr):
		run.Status = models.ToolRunFailed
		run.Error = err.Error()
	default:
		run.Status = models.ToolRunError
		run.Error = err.Error()
	}
	r.log.Info("tool finished",
		zap.String("tool", run.Tool),
		zap.String("status", string(run.Status)),
		zap.Int("exit_code", run.ExitCode),
		zap.Float64("duration_seconds", run.DurationSeconds))
}

func (r *Runner) envOverrides() []string {
	var env []string
	if r.opts.Profile != "" {
		env = append(env, "AWS_PROFILE="+r.opts.Profile)
	}
	if r.opts.Region != "" {
		env = append(env, "AWS_DEFAULT_REGION="+r.opts.Region)
	}
	return env
}
