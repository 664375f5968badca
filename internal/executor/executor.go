package executor

import (
	"context"
)

// Request describes one code execution: the submitted source, the language it is
// written in, the input to feed the program, and optional limit/command overrides.
type Request struct {
	SourceCode string `json:"sourceCode"`
	Language   string `json:"language"`
	// Stdin is written to the program's standard input and the stream is then
	// closed. An absent value means the program sees an immediate end-of-input.
	Stdin string `json:"stdin,omitempty"`
	// CPUTimeLimitSeconds overrides the language's default time limit when > 0.
	CPUTimeLimitSeconds float64 `json:"cpuTimeLimitSeconds,omitempty"`
	// Command optionally replaces the language's run command. It is tokenized
	// shell-style; the first token is the executable.
	Command string `json:"command,omitempty"`
}

// BatchRequest runs one program against several inputs. Compiled languages are
// compiled once and the artifact is reused for every input.
type BatchRequest struct {
	SourceCode          string   `json:"sourceCode"`
	Language            string   `json:"language"`
	Stdins              []string `json:"stdins"`
	CPUTimeLimitSeconds float64  `json:"cpuTimeLimitSeconds,omitempty"`
}

// Result is the judged outcome of an execution. Compile errors, runtime crashes
// and timeouts are all reported through this structure; only infrastructure
// failures (spawn errors, workspace errors) surface as Go errors instead.
type Result struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	// ExitCode is nil when the process was killed before reporting one,
	// which is the normal case for a timed-out run.
	ExitCode *int `json:"exitCode"`
	// TimeSeconds is wall-clock time from spawn to exit.
	TimeSeconds float64 `json:"time"`
	// MemoryKB is not measured by this executor and is always 0.
	MemoryKB int  `json:"memory"`
	TimedOut bool `json:"timedOut"`
}

// Executor runs untrusted submissions in isolated workspaces.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Result, error)
	ExecuteBatch(ctx context.Context, req BatchRequest) ([]Result, error)
}
