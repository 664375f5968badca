package local

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"syscall"
	"time"
)

// timeoutMarker is appended to stderr when the deadline timer kills a run.
// Callers match on it to map the run to a time-limit verdict, so the exact
// string is part of the service contract.
const timeoutMarker = "Execution timed out."

// truncationMarker is appended to a stream that exceeded MaxOutputBytes.
const truncationMarker = "[output truncated]"

// limitedBuffer accumulates process output up to a byte cap. Writes past the
// cap report success but are discarded, so a print loop cannot exhaust memory.
type limitedBuffer struct {
	buf       bytes.Buffer
	max       int64
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	remaining := b.max - int64(b.buf.Len())
	if remaining <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *limitedBuffer) contents() string {
	s := b.buf.String()
	if b.truncated {
		if s != "" && !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		s += truncationMarker + "\n"
	}
	return s
}

// runOutcome is the raw data collected from one finished process.
type runOutcome struct {
	stdout   string
	stderr   string
	exitCode *int
	elapsed  time.Duration
	timedOut bool
}

// runProcess spawns argv inside the workspace, feeds it stdin, and enforces a
// hard wall-clock deadline. Stdin is always written and closed, even when
// empty: a submission that reads past its input must see end-of-stream
// instead of blocking until the deadline fires.
//
// Timeouts and non-zero exits are reported in the outcome; only spawn-level
// failures return an error.
func (e *Executor) runProcess(ws *workspace, argv []string, env []string, stdin string, timeout time.Duration) (*runOutcome, error) {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = ws.path
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdin = strings.NewReader(stdin)

	stdout := &limitedBuffer{max: e.cfg.MaxOutputBytes}
	stderr := &limitedBuffer{max: e.cfg.MaxOutputBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// Own process group, so the deadline kill reaches children the
	// submission may have forked.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", argv[0], err)
	}

	var timedOut atomic.Bool
	done := make(chan struct{})
	go func() {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-timer.C:
			// Hard kill, no graceful stage: the submission gets no
			// chance to observe or outlive the deadline.
			timedOut.Store(true)
			killProcessGroup(cmd.Process.Pid)
		case <-done:
		}
	}()

	waitErr := cmd.Wait()
	close(done)
	elapsed := time.Since(start)

	out := &runOutcome{
		elapsed:  elapsed,
		timedOut: timedOut.Load(),
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return nil, fmt.Errorf("waiting for %s: %w", argv[0], waitErr)
		}
	}

	// ExitCode is -1 when the process died on a signal, which includes our
	// own deadline kill. Report that as an absent exit code.
	if code := cmd.ProcessState.ExitCode(); code >= 0 && !out.timedOut {
		out.exitCode = &code
	}

	out.stdout = stdout.contents()
	out.stderr = stderr.contents()
	if out.timedOut {
		if out.stderr != "" && !strings.HasSuffix(out.stderr, "\n") {
			out.stderr += "\n"
		}
		out.stderr += timeoutMarker + "\n"
	}
	return out, nil
}

// killProcessGroup force-terminates pid's whole process group.
func killProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
		// Fall back to the process itself if the group is already gone.
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}
}
