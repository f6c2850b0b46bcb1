package locator

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NVIDIA/catalog-gateway/pkg/errors"
)

func writeFile(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("execute bit semantics are POSIX only")
	}
}

func TestDefaultCandidates(t *testing.T) {
	assert.Equal(t, "main.exe", DefaultCandidates("windows")[0])
	assert.Equal(t, "main", DefaultCandidates("linux")[0])
	assert.Len(t, DefaultCandidates("darwin"), 4)
}

func TestLocate_PriorityOrder(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	writeFile(t, dir, "recommendation_system", 0o755)
	want := writeFile(t, dir, "main", 0o755)

	l, err := New(WithDir(dir))
	require.NoError(t, err)

	got, err := l.Locate()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLocate_FallsBackToLaterCandidate(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	want := writeFile(t, dir, "recommendation_system", 0o755)

	l, err := New(WithDir(dir))
	require.NoError(t, err)

	got, err := l.Locate()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLocate_SkipsNonExecutableAndDirectories(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	writeFile(t, dir, "main", 0o644)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "recommendation_system"), 0o755))
	want := writeFile(t, dir, "main.exe", 0o755)

	l, err := New(WithDir(dir))
	require.NoError(t, err)

	got, err := l.Locate()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLocate_WindowsIgnoresExecuteBit(t *testing.T) {
	dir := t.TempDir()
	want := writeFile(t, dir, "main.exe", 0o644)

	l, err := New(WithDir(dir))
	require.NoError(t, err)
	l.goos = "windows"
	l.candidates = DefaultCandidates("windows")

	got, err := l.Locate()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLocate_NotFound(t *testing.T) {
	dir := t.TempDir()

	l, err := New(WithDir(dir), WithCandidates("engine-a", "engine-b"))
	require.NoError(t, err)

	_, err = l.Locate()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))

	var se *errors.StructuredError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, l.Dir(), se.Context["dir"])
	assert.Equal(t, []string{"engine-a", "engine-b"}, se.Context["candidates"])
}

func TestNew_DefaultsToExecutableDir(t *testing.T) {
	l, err := New()
	require.NoError(t, err)

	want, err := ExecutableDir()
	require.NoError(t, err)
	assert.Equal(t, want, l.Dir())
	assert.Equal(t, DefaultCandidates(runtime.GOOS), l.Candidates())
}

func TestNew_RelativeDirBecomesAbsolute(t *testing.T) {
	l, err := New(WithDir("."))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(l.Dir()))
}

type countingFinder struct {
	mu    sync.Mutex
	calls int
	inner Finder
}

func (f *countingFinder) Locate() (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.inner.Locate()
}

func (f *countingFinder) Usable(path string) bool {
	return f.inner.Usable(path)
}

func (f *countingFinder) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestResolver_CachesPath(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	want := writeFile(t, dir, "main", 0o755)

	l, err := New(WithDir(dir))
	require.NoError(t, err)
	finder := &countingFinder{inner: l}
	r := NewResolver(finder)

	for range 3 {
		got, err := r.Path(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 1, finder.Calls())
	assert.Equal(t, want, r.Cached())
}

func TestResolver_ReResolvesWhenCachedPathDisappears(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	first := writeFile(t, dir, "main", 0o755)
	second := writeFile(t, dir, "recommendation_system", 0o755)

	l, err := New(WithDir(dir))
	require.NoError(t, err)
	r := NewResolver(l)

	got, err := r.Path(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, got)

	require.NoError(t, os.Remove(first))

	got, err = r.Path(context.Background())
	require.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestResolver_ReResolvesWhenCachedPathLosesExecuteBit(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	first := writeFile(t, dir, "main", 0o755)
	second := writeFile(t, dir, "recommendation_system", 0o755)

	l, err := New(WithDir(dir))
	require.NoError(t, err)
	finder := &countingFinder{inner: l}
	r := NewResolver(finder)

	got, err := r.Path(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, got)

	require.NoError(t, os.Chmod(first, 0o644))

	for range 3 {
		got, err = r.Path(context.Background())
		require.NoError(t, err)
		assert.Equal(t, second, got)
	}
	assert.Equal(t, 2, finder.Calls(), "the replacement path is cached again")
}

func TestLocator_Usable(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	exe := writeFile(t, dir, "main", 0o755)
	plain := writeFile(t, dir, "notes", 0o644)

	l, err := New(WithDir(dir))
	require.NoError(t, err)

	assert.True(t, l.Usable(exe))
	assert.False(t, l.Usable(plain))
	assert.False(t, l.Usable(dir))
	assert.False(t, l.Usable(filepath.Join(dir, "missing")))
}

func TestResolver_DoesNotCacheErrors(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()

	l, err := New(WithDir(dir))
	require.NoError(t, err)
	r := NewResolver(l)

	_, err = r.Path(context.Background())
	require.Error(t, err)

	want := writeFile(t, dir, "main", 0o755)
	got, err := r.Path(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestResolver_Invalidate(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	writeFile(t, dir, "main", 0o755)

	l, err := New(WithDir(dir))
	require.NoError(t, err)
	finder := &countingFinder{inner: l}
	r := NewResolver(finder)

	_, err = r.Path(context.Background())
	require.NoError(t, err)
	r.Invalidate()
	assert.Empty(t, r.Cached())

	_, err = r.Path(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, finder.Calls())
}

func TestResolver_ConcurrentFirstUse(t *testing.T) {
	skipOnWindows(t)
	dir := t.TempDir()
	want := writeFile(t, dir, "main", 0o755)

	l, err := New(WithDir(dir))
	require.NoError(t, err)
	r := NewResolver(l)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := r.Path(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}

func TestResolver_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	r := NewResolver(blockingFinder{release: release})
	_, err := r.Path(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type blockingFinder struct {
	release chan struct{}
}

func (f blockingFinder) Locate() (string, error) {
	<-f.release
	return "", os.ErrNotExist
}

func (blockingFinder) Usable(string) bool { return false }
