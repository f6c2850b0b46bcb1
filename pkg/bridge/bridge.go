// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bridge

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/NVIDIA/catalog-gateway/pkg/defaults"
	"github.com/NVIDIA/catalog-gateway/pkg/errors"
)

// PathResolver supplies the engine executable path. *locator.Resolver
// satisfies it.
type PathResolver interface {
	Path(ctx context.Context) (string, error)
	Invalidate()
}

// Bridge runs engine operations as child processes and classifies the outcome.
// It is safe for concurrent use; every call spawns its own process.
type Bridge struct {
	resolver      PathResolver
	timeout       time.Duration
	waitDelay     time.Duration
	maxOutput     int
	maxConcurrent int64
	engineName    string
	encoding      string

	decoder *textDecoder
	sem     *semaphore.Weighted
}

// Option is a functional option for configuring Bridge instances.
type Option func(*Bridge)

// WithTimeout sets the wall-clock limit for one invocation.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithWaitDelay bounds how long output pipes may stay open after the
// engine was killed or exited.
func WithWaitDelay(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.waitDelay = d
		}
	}
}

// WithMaxOutputBytes caps each captured output stream.
func WithMaxOutputBytes(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.maxOutput = n
		}
	}
}

// WithMaxConcurrent limits the number of engine processes running at once.
// Zero means unlimited.
func WithMaxConcurrent(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.maxConcurrent = int64(n)
		}
	}
}

// WithEngineName sets the display name used in error payloads.
func WithEngineName(name string) Option {
	return func(b *Bridge) {
		if name != "" {
			b.engineName = name
		}
	}
}

// WithEncoding sets the text encoding of the engine's output streams.
func WithEncoding(name string) Option {
	return func(b *Bridge) {
		if name != "" {
			b.encoding = name
		}
	}
}

// New creates a Bridge that resolves the engine through resolver.
func New(resolver PathResolver, opts ...Option) (*Bridge, error) {
	if resolver == nil {
		return nil, fmt.Errorf("bridge requires a path resolver")
	}

	b := &Bridge{
		resolver:   resolver,
		timeout:    defaults.EngineTimeout,
		waitDelay:  defaults.EngineWaitDelay,
		maxOutput:  defaults.EngineMaxOutputBytes,
		engineName: defaults.EngineName,
		encoding:   defaults.EngineEncoding,
	}
	for _, opt := range opts {
		opt(b)
	}

	dec, err := newTextDecoder(b.encoding)
	if err != nil {
		return nil, err
	}
	b.decoder = dec

	if b.maxConcurrent > 0 {
		b.sem = semaphore.NewWeighted(b.maxConcurrent)
	}
	return b, nil
}

// EngineName returns the display name used in error payloads.
func (b *Bridge) EngineName() string {
	return b.engineName
}

// Timeout returns the per-invocation limit.
func (b *Bridge) Timeout() time.Duration {
	return b.timeout
}

// Do executes inv and normalizes the result into an HTTP response.
func (b *Bridge) Do(ctx context.Context, inv Invocation) Response {
	return Normalize(b.Execute(ctx, inv), b.engineName)
}

// Execute runs inv once and returns its classified outcome. It blocks until
// the engine exits, the timeout fires, or the process fails to start.
// There are no retries.
func (b *Bridge) Execute(ctx context.Context, inv Invocation) Result {
	start := time.Now()
	res := b.execute(ctx, inv)
	res.Duration = time.Since(start)
	b.record(ctx, inv, res)
	return res
}

func (b *Bridge) execute(ctx context.Context, inv Invocation) Result {
	args, err := inv.Args()
	if err != nil {
		return Result{Kind: KindUnexpectedFailure, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if b.sem != nil {
		if err := b.sem.Acquire(ctx, 1); err != nil {
			return contextResult(ctx, err)
		}
		defer b.sem.Release(1)
	}

	path, res, ok := b.resolve(ctx)
	if !ok {
		return res
	}

	stdout := newCappedBuffer(b.maxOutput)
	stderr := newCappedBuffer(b.maxOutput)

	cmd, err := b.start(ctx, path, args, stdout, stderr)
	if err != nil && (stderrors.Is(err, fs.ErrNotExist) || stderrors.Is(err, fs.ErrPermission)) {
		// The cached executable vanished or lost its execute bit between
		// the check and the spawn.
		slog.WarnContext(ctx, "engine executable unusable at spawn, re-resolving", "path", path, "error", err)
		b.resolver.Invalidate()
		if path, res, ok = b.resolve(ctx); !ok {
			return res
		}
		cmd, err = b.start(ctx, path, args, stdout, stderr)
	}
	if err != nil {
		return contextResult(ctx, err)
	}

	engineInvocationsInFlight.Inc()
	waitErr := cmd.Wait()
	engineInvocationsInFlight.Dec()

	errText := b.decoder.decode(stderr.Bytes())
	if waitErr != nil && ctx.Err() != nil {
		res := contextResult(ctx, waitErr)
		res.Stderr = errText
		return res
	}

	b.noteTruncation(ctx, inv, "stdout", stdout)
	b.noteTruncation(ctx, inv, "stderr", stderr)

	slog.DebugContext(ctx, "engine exited",
		"operation", inv.Operation,
		"exitCode", cmd.ProcessState.ExitCode(),
		"waitError", waitErr)

	return classifyOutput(b.decoder.decode(stdout.Bytes()), errText)
}

// resolve returns the engine path, or the Result to report when it cannot.
func (b *Bridge) resolve(ctx context.Context) (string, Result, bool) {
	path, err := b.resolver.Path(ctx)
	if err == nil {
		return path, Result{}, true
	}
	if errors.HasCode(err, errors.ErrCodeNotFound) {
		return "", Result{Kind: KindEngineNotFound, Err: err}, false
	}
	return "", contextResult(ctx, err), false
}

// start spawns the engine directly, without a shell.
func (b *Bridge) start(ctx context.Context, path string, args []string, stdout, stderr io.Writer) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = b.waitDelay
	configureProcess(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (b *Bridge) noteTruncation(ctx context.Context, inv Invocation, stream string, buf *cappedBuffer) {
	if !buf.Truncated() {
		return
	}
	engineOutputTruncations.WithLabelValues(stream).Inc()
	slog.WarnContext(ctx, "engine output truncated",
		"operation", inv.Operation,
		"stream", stream,
		"limit", b.maxOutput)
}

func (b *Bridge) record(ctx context.Context, inv Invocation, res Result) {
	op := string(inv.Operation)
	engineInvocationsTotal.WithLabelValues(op, res.Kind.String()).Inc()
	engineInvocationDuration.WithLabelValues(op).Observe(res.Duration.Seconds())

	attrs := []any{
		"operation", op,
		"outcome", res.Kind.String(),
		"duration", res.Duration.String(),
	}
	if res.Kind == KindSuccess {
		slog.InfoContext(ctx, "engine invocation", attrs...)
		return
	}
	if res.Err != nil {
		attrs = append(attrs, "error", res.Err.Error())
	}
	if res.Stderr != "" {
		attrs = append(attrs, "stderr", res.Stderr)
	}
	slog.WarnContext(ctx, "engine invocation failed", attrs...)
}

// contextResult classifies a failure observed after ctx may have ended.
func contextResult(ctx context.Context, err error) Result {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Result{Kind: KindTimeout, Err: ctx.Err()}
	}
	if ctx.Err() != nil {
		return Result{Kind: KindUnexpectedFailure, Err: fmt.Errorf("invocation canceled: %w", ctx.Err())}
	}
	return Result{Kind: KindUnexpectedFailure, Err: err}
}
