package shell

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/pkg/errors"
)

// Result is the outcome of a finished process. A non-zero ExitCode is not an error.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

type Executor interface {
	// Execute runs the command to completion. An error is returned only when the
	// process could not be started or was interrupted by ctx.
	Execute(ctx context.Context, command string, args ...string) (*Result, error)
}

type Command struct {
	Cmd    *exec.Cmd
	ctx    context.Context
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func NewCommand(ctx context.Context, command string, args ...string) *Command {
	c := &Command{
		Cmd: exec.CommandContext(ctx, command, args...),
		ctx: ctx,
	}
	c.Cmd.Stdout = &c.stdout
	c.Cmd.Stderr = &c.stderr
	return c
}

func (c *Command) RunAndCollect() (*Result, error) {
	err := c.Cmd.Run()
	res := &Result{
		Stdout: c.stdout.Bytes(),
		Stderr: c.stderr.Bytes(),
	}
	if err == nil {
		return res, nil
	}
	if ctxErr := c.ctx.Err(); ctxErr != nil {
		return res, errors.Wrap(ctxErr, "command interrupted")
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, errors.Wrap(err, "failed to start command")
}

// LocalExecutor runs commands as child processes of the current one.
type LocalExecutor struct{}

func (LocalExecutor) Execute(ctx context.Context, command string, args ...string) (*Result, error) {
	return NewCommand(ctx, command, args...).RunAndCollect()
}
