// Package local runs submissions as raw OS processes on the host: one
// ephemeral workspace, one process group and one hard wall-clock deadline per
// run. Isolation is process + timeout only; it deliberately provides no
// memory, filesystem or network restrictions.
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ataljudge/executor/internal/apperror"
	"github.com/ataljudge/executor/internal/executor"
	"github.com/ataljudge/executor/internal/metrics"
)

// fallbackCompileMessage is reported when a failing compiler produced no
// diagnostics of its own.
const fallbackCompileMessage = "compilation failed"

// Executor implements executor.Executor with direct process execution.
type Executor struct {
	cfg       Config
	languages executor.Registry
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// New creates a local Executor and ensures the workspace root exists.
func New(cfg Config, languages executor.Registry, logger *slog.Logger, m *metrics.Metrics) (*Executor, error) {
	def := DefaultConfig()
	if cfg.WorkspaceRoot == "" {
		cfg.WorkspaceRoot = def.WorkspaceRoot
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = def.MaxOutputBytes
	}
	if cfg.BatchParallelism <= 0 {
		cfg.BatchParallelism = def.BatchParallelism
	}
	if languages == nil {
		languages = executor.BuiltinLanguages()
	}
	if m == nil {
		m = metrics.New()
	}

	if err := EnsureRoot(cfg.WorkspaceRoot); err != nil {
		return nil, fmt.Errorf("creating workspace root %s: %w", cfg.WorkspaceRoot, err)
	}

	return &Executor{
		cfg:       cfg,
		languages: languages,
		logger:    logger,
		metrics:   m,
	}, nil
}

// Metrics exposes the executor's counters for the stats endpoint.
func (e *Executor) Metrics() *metrics.Metrics {
	return e.metrics
}

// Execute runs one submission to completion and returns its judged result.
// Validation happens before any workspace is allocated; the workspace is
// removed on every exit path.
func (e *Executor) Execute(ctx context.Context, req executor.Request) (*executor.Result, error) {
	lang, err := e.resolveLanguage(req.SourceCode, req.Language)
	if err != nil {
		return nil, err
	}

	runCmd := lang.RunCmd
	if req.Command != "" {
		runCmd = req.Command
	}
	argv, err := executor.SplitCommand(runCmd)
	if err != nil {
		return nil, apperror.ValidationFailed("command", err.Error())
	}
	timeout := effectiveTimeout(req.CPUTimeLimitSeconds, lang)

	ws, err := newWorkspace(e.cfg.WorkspaceRoot)
	if err != nil {
		return nil, apperror.Infrastructure("could not allocate workspace", err)
	}
	defer e.cleanup(ws)

	if err := ws.writeFile(lang.SourceFilename, req.SourceCode); err != nil {
		return nil, apperror.Infrastructure("could not write source file", err)
	}

	if lang.NeedsCompile() {
		compileRes, err := e.compile(ws, lang)
		if err != nil {
			return nil, err
		}
		if compileRes != nil {
			return compileRes, nil
		}
	}

	return e.run(ws, argv, lang.Env, req.Stdin, timeout)
}

// ExecuteBatch runs one submission against every provided input, reusing a
// single workspace and a single compile. Results preserve input order. A
// compile failure short-circuits and is replicated for every input, so the
// caller still gets one result per test case.
func (e *Executor) ExecuteBatch(ctx context.Context, req executor.BatchRequest) ([]executor.Result, error) {
	lang, err := e.resolveLanguage(req.SourceCode, req.Language)
	if err != nil {
		return nil, err
	}
	if len(req.Stdins) == 0 {
		return nil, apperror.ValidationFailed("stdins", "stdins must contain at least one input")
	}

	argv, err := executor.SplitCommand(lang.RunCmd)
	if err != nil {
		return nil, apperror.Infrastructure("invalid run command", err)
	}
	timeout := effectiveTimeout(req.CPUTimeLimitSeconds, lang)

	ws, err := newWorkspace(e.cfg.WorkspaceRoot)
	if err != nil {
		return nil, apperror.Infrastructure("could not allocate workspace", err)
	}
	defer e.cleanup(ws)

	if err := ws.writeFile(lang.SourceFilename, req.SourceCode); err != nil {
		return nil, apperror.Infrastructure("could not write source file", err)
	}

	if lang.NeedsCompile() {
		compileRes, err := e.compile(ws, lang)
		if err != nil {
			return nil, err
		}
		if compileRes != nil {
			results := make([]executor.Result, len(req.Stdins))
			for i := range results {
				results[i] = *compileRes
			}
			return results, nil
		}
	}

	results := make([]executor.Result, len(req.Stdins))
	errs, _ := errgroup.WithContext(ctx)
	errs.SetLimit(e.cfg.BatchParallelism)
	for i, stdin := range req.Stdins {
		i, stdin := i, stdin
		errs.Go(func() error {
			res, err := e.run(ws, argv, lang.Env, stdin, timeout)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}
	if err := errs.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolveLanguage validates the mandatory request fields. It runs before any
// workspace exists, so a rejected request leaves nothing on disk.
func (e *Executor) resolveLanguage(sourceCode, language string) (executor.Language, error) {
	if sourceCode == "" {
		return executor.Language{}, apperror.ValidationFailed("sourceCode", "sourceCode is required")
	}
	if language == "" {
		return executor.Language{}, apperror.ValidationFailed("language", "language is required")
	}
	lang, ok := e.languages.Lookup(language)
	if !ok {
		return executor.Language{}, apperror.UnsupportedLanguage(language)
	}
	return lang, nil
}

// effectiveTimeout picks the caller's limit when one was supplied, otherwise
// the language default.
func effectiveTimeout(limitSeconds float64, lang executor.Language) time.Duration {
	if limitSeconds > 0 {
		return time.Duration(limitSeconds * float64(time.Second))
	}
	return lang.DefaultTimeout()
}

// compile invokes the language's compiler synchronously in the workspace.
// A non-zero compiler exit is a judged outcome, not an error: the returned
// result is terminal and the runtime process is never spawned. A nil, nil
// return means compilation succeeded.
func (e *Executor) compile(ws *workspace, lang executor.Language) (*executor.Result, error) {
	argv, err := executor.SplitCommand(lang.CompileCmd)
	if err != nil {
		return nil, apperror.Infrastructure("invalid compile command", err)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = ws.path
	stderr := &limitedBuffer{max: e.cfg.MaxOutputBytes}
	cmd.Stderr = stderr

	runErr := cmd.Run()
	if runErr == nil {
		return nil, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(runErr, &exitErr) {
		return nil, apperror.Infrastructure("could not start compiler", runErr)
	}

	diagnostics := stderr.contents()
	if diagnostics == "" {
		diagnostics = fallbackCompileMessage
	}
	e.metrics.CompileError()
	e.logger.Info("compilation rejected submission",
		slog.String("language", lang.ID),
		slog.Int("exitCode", exitErr.ExitCode()),
	)

	one := 1
	return &executor.Result{
		Stdout:      "",
		Stderr:      diagnostics,
		ExitCode:    &one,
		TimeSeconds: 0,
		MemoryKB:    0,
	}, nil
}

// run executes one process in the workspace and converts the raw outcome to
// the judged result shape.
func (e *Executor) run(ws *workspace, argv []string, env []string, stdin string, timeout time.Duration) (*executor.Result, error) {
	e.metrics.RunStarted()
	defer e.metrics.RunFinished()

	out, err := e.runProcess(ws, argv, env, stdin, timeout)
	if err != nil {
		return nil, apperror.Infrastructure("could not run program", err)
	}

	if out.timedOut {
		e.metrics.Timeout()
		e.logger.Info("run killed by deadline",
			slog.Duration("limit", timeout),
			slog.Duration("elapsed", out.elapsed),
		)
	}

	return &executor.Result{
		Stdout:      out.stdout,
		Stderr:      out.stderr,
		ExitCode:    out.exitCode,
		TimeSeconds: out.elapsed.Seconds(),
		MemoryKB:    0,
		TimedOut:    out.timedOut,
	}, nil
}

// cleanup removes the workspace. Removal failures are logged, never returned:
// a leftover directory must not fail an otherwise judged execution.
func (e *Executor) cleanup(ws *workspace) {
	if err := ws.remove(); err != nil {
		e.logger.Error("failed to remove workspace",
			slog.String("path", ws.path),
			slog.String("error", err.Error()),
		)
	}
}
