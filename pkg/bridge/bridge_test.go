//go:build unix

package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gwerrors "github.com/NVIDIA/catalog-gateway/pkg/errors"
	"github.com/NVIDIA/catalog-gateway/pkg/locator"
)

// writeEngine writes a POSIX shell script acting as the engine and returns
// its directory.
func writeEngine(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "main")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return dir
}

func newTestBridge(t *testing.T, dir string, opts ...Option) *Bridge {
	t.Helper()
	l, err := locator.New(locator.WithDir(dir))
	require.NoError(t, err)
	b, err := New(locator.NewResolver(l), opts...)
	require.NoError(t, err)
	return b
}

// echoArgs prints the received argv as a JSON document.
const echoArgs = `printf '{"argc":%d,"args":[' "$#"
sep=""
for a in "$@"; do printf '%s"%s"' "$sep" "$a"; sep=","; done
printf ']}\n'`

func waitUntil(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func processGone(pid int) bool {
	err := syscall.Kill(pid, syscall.Signal(0))
	return errors.Is(err, syscall.ESRCH)
}

func TestExecute_Success(t *testing.T) {
	dir := writeEngine(t, `echo '{"status":"ok"}'`)
	b := newTestBridge(t, dir, WithEngineName("engine"))

	resp := b.Do(context.Background(), NewInvocation(OpGetProducts))

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"status":"ok"}`, encode(t, resp.Payload))
}

func TestExecute_ArgumentOrder(t *testing.T) {
	dir := writeEngine(t, echoArgs)
	b := newTestBridge(t, dir)

	res := b.Execute(context.Background(), NewInvocation(OpAddProduct, "Widget", "General", "9.99"))

	require.Equal(t, KindSuccess, res.Kind, "stderr: %s", res.Stderr)
	assert.JSONEq(t, `{"argc":4,"args":["--add-product","Widget","General","9.99"]}`, encode(t, res.Payload))
}

func TestExecute_NoShellInterpretation(t *testing.T) {
	dir := writeEngine(t, echoArgs)
	b := newTestBridge(t, dir)

	res := b.Execute(context.Background(), NewInvocation(OpAddUser, "Bob; echo pwned"))

	require.Equal(t, KindSuccess, res.Kind)
	assert.JSONEq(t, `{"argc":2,"args":["--add-user","Bob; echo pwned"]}`, encode(t, res.Payload))
}

func TestExecute_MalformedOutput(t *testing.T) {
	dir := writeEngine(t, `echo hello`)
	b := newTestBridge(t, dir, WithEngineName("engine"))

	resp := b.Do(context.Background(), NewInvocation(OpGetUsers))

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.JSONEq(t, `{"error":"Invalid JSON from engine","raw_output":"hello"}`, encode(t, resp.Payload))
}

func TestExecute_StderrOnly(t *testing.T) {
	dir := writeEngine(t, `echo "database locked" >&2; exit 2`)
	b := newTestBridge(t, dir)

	res := b.Execute(context.Background(), NewInvocation(OpGetUsers))

	assert.Equal(t, KindProcessError, res.Kind)
	assert.Equal(t, "database locked", res.Stderr)
}

func TestExecute_NoOutput(t *testing.T) {
	dir := writeEngine(t, `exit 0`)
	b := newTestBridge(t, dir)

	res := b.Execute(context.Background(), NewInvocation(OpGetUsers))
	assert.Equal(t, KindEmptyOutput, res.Kind)
}

func TestExecute_ExitCodeIgnored(t *testing.T) {
	dir := writeEngine(t, `echo '{"error":"Invalid command or missing parameters."}'; exit 1`)
	b := newTestBridge(t, dir)

	resp := b.Do(context.Background(), NewInvocation(OpGetUsers))

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"error":"Invalid command or missing parameters."}`, encode(t, resp.Payload))
}

func TestExecute_StderrNotMergedIntoPayload(t *testing.T) {
	dir := writeEngine(t, `echo "debug: loaded 3 users" >&2; echo '[]'`)
	b := newTestBridge(t, dir)

	resp := b.Do(context.Background(), NewInvocation(OpGetUsers))

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `[]`, encode(t, resp.Payload))
}

func TestExecute_Encoding(t *testing.T) {
	dir := writeEngine(t, `printf '{"name":"caf\351"}\n'`)
	b := newTestBridge(t, dir, WithEncoding("iso-8859-1"))

	res := b.Execute(context.Background(), NewInvocation(OpGetProducts))

	require.Equal(t, KindSuccess, res.Kind)
	assert.JSONEq(t, `{"name":"café"}`, encode(t, res.Payload))
}

func TestExecute_OutputLimit(t *testing.T) {
	dir := writeEngine(t, `echo '{"description":"this document is longer than the limit"}'`)
	b := newTestBridge(t, dir, WithMaxOutputBytes(16))

	before := testutil.ToFloat64(engineOutputTruncations.WithLabelValues("stdout"))
	res := b.Execute(context.Background(), NewInvocation(OpGetProducts))

	assert.Equal(t, KindMalformedOutput, res.Kind)
	assert.Len(t, res.Stdout, 16)
	assert.Equal(t, before+1, testutil.ToFloat64(engineOutputTruncations.WithLabelValues("stdout")))
}

func TestExecute_Timeout(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "engine.pid")
	dir := writeEngine(t, fmt.Sprintf(`echo $$ > %s; exec sleep 30`, pidFile))
	b := newTestBridge(t, dir, WithTimeout(300*time.Millisecond), WithEngineName("engine"))

	start := time.Now()
	resp := b.Do(context.Background(), NewInvocation(OpRecommend, "1"))
	elapsed := time.Since(start)

	assert.Equal(t, http.StatusGatewayTimeout, resp.Status)
	assert.JSONEq(t, `{"error":"engine execution timed out."}`, encode(t, resp.Payload))
	assert.Less(t, elapsed, 3*time.Second)

	raw, err := os.ReadFile(pidFile)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	assert.True(t, waitUntil(2*time.Second, func() bool { return processGone(pid) }),
		"engine process %d still running after timeout", pid)
}

func TestExecute_TimeoutKillsForkedHelpers(t *testing.T) {
	// The helper keeps stdout open; without a group kill Wait would block
	// until it exits on its own.
	dir := writeEngine(t, `sleep 30 &
sleep 30`)
	b := newTestBridge(t, dir, WithTimeout(300*time.Millisecond), WithWaitDelay(time.Second))

	start := time.Now()
	res := b.Execute(context.Background(), NewInvocation(OpGetUsers))

	assert.Equal(t, KindTimeout, res.Kind)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestExecute_ClientCancel(t *testing.T) {
	dir := writeEngine(t, `exec sleep 30`)
	b := newTestBridge(t, dir, WithTimeout(10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	start := time.Now()
	res := b.Execute(ctx, NewInvocation(OpGetUsers))

	assert.Equal(t, KindUnexpectedFailure, res.Kind)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestExecute_EngineNotFound(t *testing.T) {
	b := newTestBridge(t, t.TempDir(), WithEngineName("engine"))

	res := b.Execute(context.Background(), NewInvocation(OpGetProducts))
	assert.Equal(t, KindEngineNotFound, res.Kind)
	assert.True(t, gwerrors.HasCode(res.Err, gwerrors.ErrCodeNotFound))

	resp := Normalize(res, b.EngineName())
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.JSONEq(t, `{"error":"engine not found"}`, encode(t, resp.Payload))
}

func TestExecute_InvalidParamsDoNotSpawn(t *testing.T) {
	r := &stubResolver{path: "/nonexistent/engine"}
	b, err := New(r)
	require.NoError(t, err)

	res := b.Execute(context.Background(), NewInvocation(OpPurchase, "1"))

	assert.Equal(t, KindUnexpectedFailure, res.Kind)
	assert.Zero(t, r.pathCalls(), "resolver must not be consulted for invalid invocations")
}

func TestExecute_StartFailureReResolves(t *testing.T) {
	// A missing interpreter makes the spawn fail with ENOENT.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main"), []byte("#!/nonexistent/interpreter\n"), 0o755))

	r := &stubResolver{path: filepath.Join(dir, "main")}
	b, err := New(r)
	require.NoError(t, err)

	resp := b.Do(context.Background(), NewInvocation(OpGetUsers))

	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Contains(t, encode(t, resp.Payload), "Unexpected error: ")
	assert.Equal(t, 1, r.invalidations())
	assert.Equal(t, 2, r.pathCalls())
}

func TestExecute_PermissionDenied(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\necho '{}'\n"), 0o644))

	r := &stubResolver{path: path}
	b, err := New(r)
	require.NoError(t, err)

	res := b.Execute(context.Background(), NewInvocation(OpGetUsers))
	assert.Equal(t, KindUnexpectedFailure, res.Kind)
	assert.ErrorIs(t, res.Err, os.ErrPermission)
	assert.Equal(t, 1, r.invalidations(), "a permission failure re-resolves once")
	assert.Equal(t, 2, r.pathCalls())
}

func TestExecute_FallsBackWhenCachedEngineLosesExecuteBit(t *testing.T) {
	dir := writeEngine(t, `echo '{"engine":"main"}'`)
	fallback := filepath.Join(dir, "recommendation_system")
	require.NoError(t, os.WriteFile(fallback, []byte("#!/bin/sh\necho '{\"engine\":\"fallback\"}'\n"), 0o755))
	b := newTestBridge(t, dir)

	res := b.Execute(context.Background(), NewInvocation(OpGetUsers))
	require.Equal(t, KindSuccess, res.Kind)
	assert.JSONEq(t, `{"engine":"main"}`, encode(t, res.Payload))

	require.NoError(t, os.Chmod(filepath.Join(dir, "main"), 0o644))

	for range 3 {
		res = b.Execute(context.Background(), NewInvocation(OpGetUsers))
		require.Equal(t, KindSuccess, res.Kind, "err: %v", res.Err)
		assert.JSONEq(t, `{"engine":"fallback"}`, encode(t, res.Payload))
	}
}

func TestExecute_ConcurrencyLimit(t *testing.T) {
	dir := writeEngine(t, `sleep 0.3; echo '{}'`)
	b := newTestBridge(t, dir, WithMaxConcurrent(1), WithTimeout(5*time.Second))

	start := time.Now()
	var wg sync.WaitGroup
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := b.Execute(context.Background(), NewInvocation(OpGetUsers))
			assert.Equal(t, KindSuccess, res.Kind)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, time.Since(start), 800*time.Millisecond)
}

func TestExecute_ConcurrencyLimitCountsTowardTimeout(t *testing.T) {
	dir := writeEngine(t, `exec sleep 30`)
	b := newTestBridge(t, dir, WithMaxConcurrent(1), WithTimeout(300*time.Millisecond))

	var wg sync.WaitGroup
	results := make([]Result, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = b.Execute(context.Background(), NewInvocation(OpGetUsers))
		}()
	}
	wg.Wait()

	for _, res := range results {
		assert.Equal(t, KindTimeout, res.Kind)
	}
}

func TestExecute_RecordsMetrics(t *testing.T) {
	dir := writeEngine(t, `echo '{}'`)
	b := newTestBridge(t, dir)

	counter := engineInvocationsTotal.WithLabelValues(string(OpRate), KindSuccess.String())
	before := testutil.ToFloat64(counter)

	b.Execute(context.Background(), NewInvocation(OpRate, "1", "2", "5"))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(&stubResolver{}, WithEncoding("klingon-8"))
	assert.Error(t, err)

	b, err := New(&stubResolver{}, WithTimeout(-1), WithEngineName(""))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, b.Timeout())
	assert.Equal(t, "recommendation engine", b.EngineName())
}

type stubResolver struct {
	mu          sync.Mutex
	path        string
	err         error
	calls       int
	invalidated int
}

func (s *stubResolver) Path(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.path, s.err
}

func (s *stubResolver) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated++
}

func (s *stubResolver) pathCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubResolver) invalidations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated
}
