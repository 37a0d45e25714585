// Package runner spawns one short-lived checker process per invocation and
// captures its output. Timeout and cancellation arrive through the caller's
// context; there is no coordination across invocations.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"time"
)

// DefaultMaxOutputSize caps how much of each stream is retained (10MB).
// The pipes are still drained past the cap so the child never blocks on a
// full pipe buffer.
const DefaultMaxOutputSize = 10 * 1024 * 1024

// killGracePeriod is how long a signaled process gets before SIGKILL.
const killGracePeriod = 2 * time.Second

// ExitCodeNotFound is reported when the checker binary cannot be located.
const ExitCodeNotFound = 127

// Options configures a Runner.
type Options struct {
	// Dir is the working directory for the child, normally the project root.
	Dir string
	// MaxOutputSize caps retained bytes per stream; 0 means the default.
	MaxOutputSize int64
	// Debug enables diagnostic logging to stderr.
	Debug bool
}

// Result holds the captured outcome of one invocation. A non-zero ExitCode
// is a normal outcome for a checker — it exits non-zero whenever it finds
// errors — so Result is populated even when Run returns an error.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Runner executes checker invocations.
type Runner struct {
	opts Options
}

// New returns a Runner with the given options.
func New(opts Options) *Runner {
	if opts.MaxOutputSize <= 0 {
		opts.MaxOutputSize = DefaultMaxOutputSize
	}
	return &Runner{opts: opts}
}

// Run executes argv and waits for it to exit.
//
// Error semantics:
//   - (result, nil) when the process ran to completion, regardless of exit
//     code; callers inspect Result.ExitCode if they care.
//   - (result, error) for infrastructure failures: empty argv, binary not
//     found (Result.ExitCode is 127), pipe errors, context cancellation.
//
// Use errors.Is(err, exec.ErrNotFound) to detect a missing checker binary.
func (r *Runner) Run(ctx context.Context, argv []string) (*Result, error) {
	if len(argv) == 0 {
		return &Result{ExitCode: 1}, errors.New("runner: empty argv")
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.opts.Dir
	cmd.Env = os.Environ()
	setProcessGroup(cmd)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return &Result{ExitCode: 1, Duration: time.Since(start)},
			fmt.Errorf("runner: stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		_ = stdoutPipe.Close()
		return &Result{ExitCode: 1, Duration: time.Since(start)},
			fmt.Errorf("runner: stderr pipe: %w", err)
	}

	var stdout, stderr cappedBuffer
	stdout.max = r.opts.MaxOutputSize
	stderr.max = r.opts.MaxOutputSize

	var wg sync.WaitGroup
	wg.Add(2)
	drain := func(dst *cappedBuffer, src io.Reader, name string) {
		defer wg.Done()
		if _, copyErr := io.Copy(dst, src); copyErr != nil && !isIgnorableReadError(copyErr) && r.opts.Debug {
			fmt.Fprintf(os.Stderr, "[DEBUG Run] error draining %s: %v\n", name, copyErr)
		}
	}
	go drain(&stdout, stdoutPipe, "stdout")
	go drain(&stderr, stderrPipe, "stderr")

	if err := cmd.Start(); err != nil {
		_ = stdoutPipe.Close()
		_ = stderrPipe.Close()
		wg.Wait()
		code := 1
		if isNotFoundError(err) {
			code = ExitCodeNotFound
		}
		return &Result{ExitCode: code, Duration: time.Since(start)},
			fmt.Errorf("runner: starting %q: %w", argv[0], err)
	}

	cmdDone := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, interruptSignals()...)
	go r.forwardSignals(cmd, sigChan, cmdDone)

	waitErr := cmd.Wait()
	wg.Wait()
	close(cmdDone)
	signal.Stop(sigChan)

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode(waitErr),
		Duration: time.Since(start),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("runner: %q: %w", argv[0], ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		// The checker legitimately exits non-zero when it finds
		// diagnostics. The captured output is the real answer.
		return result, nil
	}
	if waitErr != nil {
		return result, fmt.Errorf("runner: waiting for %q: %w", argv[0], waitErr)
	}
	return result, nil
}

// forwardSignals relays interrupts to the child's process group, escalating
// to SIGKILL after the grace period.
func (r *Runner) forwardSignals(cmd *exec.Cmd, sigChan chan os.Signal, cmdDone chan struct{}) {
	select {
	case sig := <-sigChan:
		if r.opts.Debug {
			fmt.Fprintf(os.Stderr, "[DEBUG forwardSignals] forwarding %v to pid %d\n", sig, cmd.Process.Pid)
		}
		_ = signalProcessGroup(cmd, sig)
		select {
		case <-cmdDone:
		case <-time.After(killGracePeriod):
			if cmd.ProcessState == nil {
				_ = killProcessGroup(cmd)
			}
		}
	case <-cmdDone:
	}
}

// cappedBuffer stores up to max bytes and silently discards the rest, so
// the reader side keeps draining a chatty child without unbounded growth.
type cappedBuffer struct {
	buf bytes.Buffer
	max int64
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.max - int64(b.buf.Len())
	if room <= 0 {
		return len(p), nil
	}
	if int64(len(p)) > room {
		b.buf.Write(p[:room])
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) Bytes() []byte { return b.buf.Bytes() }

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code, ok := exitCodeFromError(exitErr); ok {
			return code
		}
		return 1
	}
	if isNotFoundError(err) {
		return ExitCodeNotFound
	}
	return 1
}

// isNotFoundError checks whether the error indicates a missing binary,
// with string fallbacks for edge cases exec.ErrNotFound does not cover.
func isNotFoundError(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	msg := err.Error()
	if strings.Contains(msg, "executable file not found") {
		return true
	}
	return runtime.GOOS != "windows" && strings.Contains(msg, "no such file or directory")
}

func isIgnorableReadError(err error) bool {
	return errors.Is(err, io.EOF) ||
		strings.Contains(err.Error(), "file already closed") ||
		strings.Contains(err.Error(), "broken pipe")
}
