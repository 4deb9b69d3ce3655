package srctree

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kballard/go-shellquote"

	"pyglue-generator/internal/diagnostic"
)

// Provider turns C++ source text into a syntax tree.
type Provider interface {
	Parse(ctx context.Context, source []byte, encoding string) (*Node, error)
}

// ParseError reports a failed external tree producer.
type ParseError struct {
	// ExitStatus of the process, or -1 if it never ran to completion.
	ExitStatus int
	// Output is the captured stderr (and stdout when it could not be decoded).
	Output string
	cause  error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("syntax tree producer failed (exit status %d)", e.ExitStatus)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}

	return msg
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

// ExecProvider runs an external command that reads source on stdin and writes
// a JSON tree (see Node) on stdout.
type ExecProvider struct {
	argv    []string
	timeout time.Duration
}

// NewExecProvider parses a shell-style command line.
func NewExecProvider(command string, timeout time.Duration) (*ExecProvider, error) {
	argv, err := shellquote.Split(command)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing parser command %q", command)
	}

	if len(argv) == 0 {
		return nil, errors.New("parser command is empty")
	}

	return &ExecProvider{argv: argv, timeout: timeout}, nil
}

// Parse implements Provider. The encoding is passed to the command through
// the PYGLUE_ENCODING environment variable.
func (p *ExecProvider) Parse(ctx context.Context, source []byte, encoding string) (*Node, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, p.argv[0], p.argv[1:]...)
	cmd.Stdin = bytes.NewReader(source)
	cmd.Env = append(cmd.Environ(), "PYGLUE_ENCODING="+encoding)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		status := -1

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			status = exitErr.ExitCode()
		}

		if ctx.Err() != nil {
			err = errors.CombineErrors(err, ctx.Err())
		}

		return nil, diagnostic.Mark(&ParseError{ExitStatus: status, Output: stderr.String(), cause: err},
			diagnostic.KindSyntaxCollaborator)
	}

	root, err := Decode(&stdout)
	if err != nil {
		return nil, diagnostic.Mark(&ParseError{ExitStatus: 0, Output: stderr.String() + stdout.String(), cause: err},
			diagnostic.KindSyntaxCollaborator)
	}

	return root, nil
}
