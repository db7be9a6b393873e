// SPDX-License-Identifier: MPL-2.0

package procrun

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/creack/pty"
	"mvdan.cc/sh/v3/shell"
)

const (
	// StreamStdout marks a line read from the command's stdout.
	StreamStdout Stream = "stdout"
	// StreamStderr marks a line read from the command's stderr.
	StreamStderr Stream = "stderr"
	// StreamTerminal marks a line read from the pseudo-terminal, where
	// stdout and stderr are merged.
	StreamTerminal Stream = "tty"

	// maxLineSize bounds a single output line.
	maxLineSize = 1024 * 1024
)

// ErrEmptyCommand is returned when there is nothing to run.
var ErrEmptyCommand = errors.New("empty command")

type (
	// Stream identifies where a line came from.
	Stream string

	// LineFunc receives each output line without its terminator. It is always
	// called from the goroutine that called Run.
	LineFunc func(stream Stream, line string)

	// ExecCommandFunc is the function signature for creating exec.Cmd.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Option configures a Runner.
	Option func(*Runner)

	// Runner runs commands and streams their output.
	Runner struct {
		execCommand ExecCommandFunc
		dir         string
		env         []string
		usePTY      bool
	}

	// StartError is returned when the command could not be started.
	StartError struct {
		Command string
		Err     error
	}

	line struct {
		stream Stream
		text   string
	}
)

func (e *StartError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Command, e.Err)
}

func (e *StartError) Unwrap() error { return e.Err }

// WithExecCommand replaces exec.CommandContext.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(r *Runner) {
		r.execCommand = fn
	}
}

// WithDir sets the working directory of the command.
func WithDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// WithEnv sets the command environment. nil inherits the current one.
func WithEnv(env []string) Option {
	return func(r *Runner) {
		r.env = env
	}
}

// WithPTY runs the command on a pseudo-terminal. Tools that buffer their
// output when it is not a terminal then print line by line.
func WithPTY(enabled bool) Option {
	return func(r *Runner) {
		r.usePTY = enabled
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{execCommand: exec.CommandContext}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts argv, calls onLine for every output line and returns the exit
// code once the command has finished. A non-zero exit code is not an error;
// err is set when the command could not be started or ctx was canceled.
func (r *Runner) Run(ctx context.Context, argv []string, onLine LineFunc) (exitCode int, err error) {
	if len(argv) == 0 {
		return -1, ErrEmptyCommand
	}
	if onLine == nil {
		onLine = func(Stream, string) {}
	}

	cmd := r.execCommand(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.dir
	if r.env != nil {
		cmd.Env = r.env
	}

	if r.usePTY {
		err = runPTY(cmd, onLine)
	} else {
		err = runPipes(cmd, onLine)
	}

	var startErr *StartError
	if errors.As(err, &startErr) {
		return -1, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, fmt.Errorf("%s: %w", argv[0], ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// runPipes reads stdout and stderr concurrently and delivers their lines in
// arrival order.
func runPipes(cmd *exec.Cmd, onLine LineFunc) error {
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &StartError{Command: cmd.Path, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &StartError{Command: cmd.Path, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return &StartError{Command: cmd.Path, Err: err}
	}

	lines := make(chan line)
	var wg sync.WaitGroup
	wg.Add(2)
	go scan(stdout, StreamStdout, lines, &wg)
	go scan(stderr, StreamStderr, lines, &wg)
	go func() {
		wg.Wait()
		close(lines)
	}()

	for l := range lines {
		onLine(l.stream, l.text)
	}

	// Both pipes are drained, so Wait cannot lose output.
	return cmd.Wait()
}

func runPTY(cmd *exec.Cmd, onLine LineFunc) error {
	tty, err := pty.Start(cmd)
	if err != nil {
		return &StartError{Command: cmd.Path, Err: err}
	}
	defer tty.Close()

	lines := make(chan line)
	var wg sync.WaitGroup
	wg.Add(1)
	go scan(tty, StreamTerminal, lines, &wg)
	go func() {
		wg.Wait()
		close(lines)
	}()

	for l := range lines {
		onLine(l.stream, l.text)
	}

	return cmd.Wait()
}

// scan sends every line of r to out. Read errors end the stream: a
// pseudo-terminal reports EIO once the child has exited.
func scan(r io.Reader, stream Stream, out chan<- line, wg *sync.WaitGroup) {
	defer wg.Done()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		out <- line{stream: stream, text: strings.TrimRight(sc.Text(), "\r")}
	}
	// Drain so a line longer than maxLineSize cannot block the child.
	_, _ = io.Copy(io.Discard, r)
}

// SplitCommand splits a command line into argv using shell word rules:
// quotes, escapes and $VAR expansion through env (nil uses the process
// environment). Command substitution is rejected.
func SplitCommand(command string, env func(string) string) ([]string, error) {
	fields, err := shell.Fields(command, env)
	if err != nil {
		return nil, fmt.Errorf("invalid command %q: %w", command, err)
	}
	if len(fields) == 0 {
		return nil, ErrEmptyCommand
	}
	return fields, nil
}
