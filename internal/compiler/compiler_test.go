package compiler

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gopkg.microglot.org/erlc.go/internal/exc"
	"gopkg.microglot.org/erlc.go/internal/fs"
	"gopkg.microglot.org/erlc.go/internal/idl"
)

func openStrings(sources map[string]string) func(path string) idl.File {
	return func(path string) idl.File {
		content, ok := sources[path]
		if !ok {
			return fs.NewFileString(path, "", idl.FileKindNone)
		}
		return fs.NewFileString(path, content, idl.FileKindErlang)
	}
}

func newTestCompiler(t *testing.T, sources map[string]string) (Compiler, exc.Reporter) {
	t.Helper()
	reporter := exc.NewReporter(nil)
	c, err := New(
		OptionWithOpen(openStrings(sources)),
		OptionWithExcReporter(reporter),
	)
	require.Nil(t, err)
	return c, reporter
}

func TestCompileMultipleFiles(t *testing.T) {
	t.Parallel()

	c, reporter := newTestCompiler(t, map[string]string{
		"/src/a.erl": "-module(a).\nf() -> ok.",
		"/src/b.erl": "-module(b).\n-export([g/0]).\ng() -> a:f().",
	})

	resp, err := c.Compile(context.Background(), &ParseRequest{
		Files: []string{"/src/a.erl", "/src/b.erl"},
	})
	require.Nil(t, err)
	require.Empty(t, reporter.Reported())
	require.Len(t, resp.Modules, 2)

	names := map[string]bool{}
	for _, mod := range resp.Modules {
		names[mod.Name()] = true
	}
	require.True(t, names["a"])
	require.True(t, names["b"])
}

func TestCompileDeduplicatesTargets(t *testing.T) {
	t.Parallel()

	c, _ := newTestCompiler(t, map[string]string{
		"/src/a.erl": "-module(a).",
	})

	resp, err := c.Compile(context.Background(), &ParseRequest{
		Files: []string{"/src/a.erl", "/src/a.erl", "src/a.erl"},
	})
	require.Nil(t, err)
	require.Len(t, resp.Modules, 1)
}

func TestCompileParseError(t *testing.T) {
	t.Parallel()

	c, _ := newTestCompiler(t, map[string]string{
		"/src/a.erl":   "-module(a).",
		"/src/bad.erl": "-module(bad).\nf() -> .",
	})

	resp, err := c.Compile(context.Background(), &ParseRequest{
		Files: []string{"/src/a.erl", "/src/bad.erl"},
	})
	require.NotNil(t, err)
	multi, ok := err.(MultiException)
	require.True(t, ok)
	require.NotEmpty(t, multi)
	require.NotEmpty(t, multi.Error())

	// the healthy file still parses
	require.Len(t, resp.Modules, 1)
	require.Equal(t, "a", resp.Modules[0].Name())
}

func TestCompileWarningsAreNotFatal(t *testing.T) {
	t.Parallel()

	c, reporter := newTestCompiler(t, map[string]string{
		"/src/a.erl": "-module(a).\n-deprecated(foo).",
	})

	resp, err := c.Compile(context.Background(), &ParseRequest{
		Files: []string{"/src/a.erl"},
	})
	require.Nil(t, err)
	require.Len(t, resp.Modules, 1)
	require.Len(t, reporter.Warnings(), 1)
	require.Equal(t, exc.CodeBadDeprecatedTarget, reporter.Warnings()[0].Code())
}

func TestCompileUnsupportedFileFormat(t *testing.T) {
	t.Parallel()

	c, reporter := newTestCompiler(t, map[string]string{})

	resp, err := c.Compile(context.Background(), &ParseRequest{
		Files: []string{"/src/readme.txt"},
	})
	require.NotNil(t, err)
	require.Empty(t, resp.Modules)
	require.Equal(t, exc.CodeUnsupportedFileFormat, reporter.Reported()[0].Code())
}

func TestCompileCancelled(t *testing.T) {
	t.Parallel()

	c, _ := newTestCompiler(t, map[string]string{
		"/src/a.erl": "-module(a).",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Compile(ctx, &ParseRequest{Files: []string{"/src/a.erl"}})
	if err != nil {
		require.ErrorIs(t, err, context.Canceled)
	}
}

// not parallel: the goroutine count comparison needs a quiet runtime
func TestCompileCancelledDrainsWorkers(t *testing.T) {
	gate := make(chan struct{})
	open := func(path string) idl.File {
		<-gate
		return fs.NewFileString(path, "-module(a).", idl.FileKindErlang)
	}
	reporter := exc.NewReporter(nil)
	c, err := New(
		OptionWithOpen(open),
		OptionWithExcReporter(reporter),
	)
	require.Nil(t, err)

	before := runtime.NumGoroutine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Compile(ctx, &ParseRequest{Files: []string{"/src/a.erl", "/src/b.erl"}})
	require.ErrorIs(t, err, context.Canceled)

	// the abandoned workers finish their sends and exit
	close(gate)
	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, 5*time.Second, 10*time.Millisecond)
}
