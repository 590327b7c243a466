// Package runner executes task file targets as sequences of external commands.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/cchalm/devtasks/internal/builtin"
	"github.com/cchalm/devtasks/internal/taskfile"
)

// Options configure a Runner. The zero value runs real processes against the process stdio with logging and
// tracing disabled
type Options struct {
	// Vars override task file vars, e.g. from --set on the command line
	Vars   map[string]string
	// DryRun prints commands instead of running them
	DryRun bool
	// Dir is the base directory for relative step dirs. Defaults to the task file's directory, or the current
	// directory for the embedded task file
	Dir    string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Exec     CommandRunner
	Builtins *builtin.Registry
	Tracer   trace.Tracer
	Logger   *zerolog.Logger
}

// Runner runs targets from a single task file
type Runner struct {
	taskfile *taskfile.Taskfile
	vars     taskfile.Vars
	dryRun   bool
	dir      string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	exec     CommandRunner
	builtins *builtin.Registry
	tracer   trace.Tracer
	logger   zerolog.Logger
}

// Result summarizes a completed run
type Result struct {
	RunID   string
	Targets []TargetResult
}

// TargetResult records one target that ran to completion
type TargetResult struct {
	Name     string
	Steps    int
	Duration time.Duration
}

func New(tf *taskfile.Taskfile, opts Options) *Runner {
	r := &Runner{
		taskfile: tf,
		vars:     tf.ResolveVars(opts.Vars),
		dryRun:   opts.DryRun,
		dir:      opts.Dir,
		stdin:    opts.Stdin,
		stdout:   opts.Stdout,
		stderr:   opts.Stderr,
		exec:     opts.Exec,
		builtins: opts.Builtins,
		tracer:   opts.Tracer,
		logger:   zerolog.Nop(),
	}
	if opts.Logger != nil {
		r.logger = *opts.Logger
	}
	if r.dir == "" && !tf.IsEmbedded() {
		r.dir = filepath.Dir(tf.Path)
	}
	if r.stdin == nil {
		r.stdin = os.Stdin
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	if r.exec == nil {
		r.exec = ExecRunner{}
	}
	if r.builtins == nil {
		r.builtins = builtin.NewRegistry()
	}
	if r.tracer == nil {
		r.tracer = noop.NewTracerProvider().Tracer("devtasks")
	}
	return r
}

// Plan resolves the requested targets, or the default sequence when none are given, into execution order.
// Dependencies come before their dependents and every target appears at most once
func (r *Runner) Plan(targets ...string) ([]string, error) {
	if len(targets) == 0 {
		targets = r.taskfile.Default
		if len(targets) == 0 {
			return nil, errors.New("no target given and the task file defines no default")
		}
	}

	var plan []string
	planned := make(map[string]bool)
	var add func(name string) error
	add = func(name string) error {
		if planned[name] {
			return nil
		}
		target, ok := r.taskfile.Lookup(name)
		if !ok {
			return UnknownTargetError{Name: name}
		}
		planned[name] = true
		for _, dep := range target.Deps {
			if err := add(dep); err != nil {
				return err
			}
		}
		plan = append(plan, name)
		return nil
	}

	for _, name := range targets {
		if err := add(name); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

// Steps returns the steps of a target with vars expanded
func (r *Runner) Steps(name string) ([]taskfile.Step, error) {
	target, ok := r.taskfile.Lookup(name)
	if !ok {
		return nil, UnknownTargetError{Name: name}
	}
	steps := make([]taskfile.Step, len(target.Steps))
	for i, s := range target.Steps {
		steps[i] = r.vars.Expand(s)
	}
	return steps, nil
}

// Run executes the planned targets in order. The first failing step aborts the run; if it was an external command
// that exited non-zero the returned error is an *ExitError carrying its exit code
func (r *Runner) Run(ctx context.Context, targets ...string) (*Result, error) {
	plan, err := r.Plan(targets...)
	if err != nil {
		return nil, err
	}
	if err := r.checkBuiltins(plan); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.New().String()}
	logger := r.logger.With().Str("run_id", result.RunID).Logger()

	ctx, span := r.tracer.Start(ctx, "devtasks.run", trace.WithAttributes(
		attribute.String("devtasks.run_id", result.RunID),
		attribute.StringSlice("devtasks.plan", plan),
		attribute.Bool("devtasks.dry_run", r.dryRun),
	))
	defer span.End()

	logger.Debug().Strs("plan", plan).Msg("Planned run")
	for _, name := range plan {
		tr, err := r.runTarget(ctx, logger, name)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return result, err
		}
		result.Targets = append(result.Targets, tr)
	}
	return result, nil
}

func (r *Runner) checkBuiltins(plan []string) error {
	for _, name := range plan {
		target, _ := r.taskfile.Lookup(name)
		for _, s := range target.Steps {
			if !s.IsBuiltin() {
				continue
			}
			if _, err := r.builtins.Lookup(s.Builtin); err != nil {
				return fmt.Errorf("target '%s': %w", name, err)
			}
		}
	}
	return nil
}

func (r *Runner) runTarget(ctx context.Context, logger zerolog.Logger, name string) (TargetResult, error) {
	start := time.Now()
	logger = logger.With().Str("target", name).Logger()

	ctx, span := r.tracer.Start(ctx, "target "+name, trace.WithAttributes(attribute.String("devtasks.target", name)))
	defer span.End()

	steps, err := r.Steps(name)
	if err != nil {
		return TargetResult{}, err
	}

	logger.Info().Msg("Running target")
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return TargetResult{}, err
		}
		if err := r.runStep(ctx, logger, name, i, step); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return TargetResult{}, err
		}
	}

	tr := TargetResult{Name: name, Steps: len(steps), Duration: time.Since(start)}
	logger.Info().Dur("duration", tr.Duration).Msg("Target finished")
	return tr, nil
}

func (r *Runner) runStep(ctx context.Context, logger zerolog.Logger, target string, index int, step taskfile.Step) error {
	ctx, span := r.tracer.Start(ctx, "step", trace.WithAttributes(
		attribute.Int("devtasks.step", index+1),
		attribute.String("devtasks.command", step.String()),
	))
	defer span.End()

	if step.IsBuiltin() {
		logger.Debug().Str("builtin", step.Builtin).Msg("Running builtin")
		b, err := r.builtins.Lookup(step.Builtin)
		if err != nil {
			return err
		}
		err = b.Run(ctx, &builtin.Context{
			Taskfile: r.taskfile,
			Stdout:   r.stdout,
			Logger:   logger,
			DryRun:   r.dryRun,
		})
		if err != nil {
			return fmt.Errorf("target '%s': builtin %s: %w", target, step.Builtin, err)
		}
		return nil
	}

	dir := r.resolveDir(step.Dir)
	if r.dryRun {
		fmt.Fprintln(r.stdout, "$ "+CommandLine(step, dir))
		return nil
	}

	logger.Debug().Str("command", step.String()).Str("dir", dir).Msg("Running command")
	code, err := r.exec.Run(ctx, Command{
		Argv:   step.Run,
		Env:    step.Environ(),
		Dir:    dir,
		Stdin:  r.stdin,
		Stdout: r.stdout,
		Stderr: r.stderr,
	})
	span.SetAttributes(attribute.Int("devtasks.exit_code", code))

	switch {
	case err != nil && code == ExitCodeNotFound:
		return &ExitError{Target: target, Command: step.String(), Code: code, Err: err}
	case err != nil:
		return fmt.Errorf("target '%s': `%s`: %w", target, step.String(), err)
	case code != 0:
		return &ExitError{Target: target, Command: step.String(), Code: code}
	}
	return nil
}

// StepDir is the directory an expanded step runs in
func (r *Runner) StepDir(step taskfile.Step) string {
	return r.resolveDir(step.Dir)
}

func (r *Runner) resolveDir(stepDir string) string {
	if stepDir == "" {
		return r.dir
	}
	if filepath.IsAbs(stepDir) || r.dir == "" {
		return stepDir
	}
	return filepath.Join(r.dir, stepDir)
}

// CommandLine renders an expanded external step as a shell command line, including its env and directory
func CommandLine(step taskfile.Step, dir string) string {
	var b strings.Builder
	if step.Dir != "" {
		fmt.Fprintf(&b, "cd %s && ", taskfile.Argv{dir})
	}
	for _, kv := range step.Environ() {
		b.WriteString(taskfile.Argv{kv}.String())
		b.WriteByte(' ')
	}
	b.WriteString(step.Run.String())
	return b.String()
}
