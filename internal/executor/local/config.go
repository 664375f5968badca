package local

import (
	"os"
	"path/filepath"
)

// Config holds the configuration for local process execution.
type Config struct {
	// WorkspaceRoot is the directory under which per-execution workspaces
	// are created. It is created at startup if it does not exist.
	WorkspaceRoot string
	// MaxOutputBytes caps captured stdout and stderr, each. Output past the
	// cap is discarded and the stream is marked truncated.
	MaxOutputBytes int64
	// BatchParallelism bounds how many runs of a batch execute at once.
	BatchParallelism int
}

// DefaultConfig provides sensible defaults for running submissions on the host.
func DefaultConfig() Config {
	return Config{
		WorkspaceRoot: filepath.Join(os.TempDir(), "ataljudge-workspaces"),
		// 10 MB per stream keeps a print-loop submission from exhausting memory
		MaxOutputBytes:   10 * 1024 * 1024,
		BatchParallelism: 4,
	}
}
