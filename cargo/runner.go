// Package cargo drives the Rust toolchain: it reads manifests, resolves
// workspace members and builds rustdoc JSON for a shared library crate.
package cargo

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/cruxgen/errors"
	"github.com/teranos/cruxgen/logger"
)

// Runner runs an external command in dir and returns its standard output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	Logger *zap.SugaredLogger
}

// Run implements Runner. Standard error is folded into the returned error.
func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if r.Logger != nil {
		r.Logger.Debugw("Ran command",
			"command", name+" "+strings.Join(args, " "),
			"dir", dir,
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
		)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, errors.Wrapf(err, "%s %s", name, strings.Join(args, " "))
		}
		return nil, errors.WithDetail(errors.Wrapf(err, "%s %s", name, strings.Join(args, " ")), msg)
	}
	return out, nil
}
