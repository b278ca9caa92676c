package compiler

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"gopkg.microglot.org/erlc.go/internal/compiler/erlang"
	"gopkg.microglot.org/erlc.go/internal/exc"
	"gopkg.microglot.org/erlc.go/internal/fs"
	"gopkg.microglot.org/erlc.go/internal/idl"
	"gopkg.microglot.org/erlc.go/internal/target"
)

type ParseRequest struct {
	Files      []string
	DumpTokens bool
	DumpTree   bool
}

type ParseResponse struct {
	Modules []idl.Module
}

// Compiler is the parse front end: it drives lexing and parsing over a set of
// source files and accumulates diagnostics in a shared reporter.
type Compiler interface {
	Compile(ctx context.Context, req *ParseRequest) (*ParseResponse, error)
}

type Option func(c *compiler) error

// OptionWithOpen replaces how the compiler resolves a target path to a file.
// Tests use this to parse in-memory sources.
func OptionWithOpen(open func(path string) idl.File) Option {
	return func(c *compiler) error {
		c.Open = open
		return nil
	}
}

func OptionWithMaxConcurrency(n int) Option {
	return func(c *compiler) error {
		c.MaxConcurrency = n
		return nil
	}
}

func OptionWithExcReporter(reporter exc.Reporter) Option {
	return func(c *compiler) error {
		c.Reporter = reporter
		return nil
	}
}

func New(opts ...Option) (Compiler, error) {
	c := &compiler{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.Open == nil {
		c.Open = fs.NewFileLocal
	}
	if c.MaxConcurrency == 0 {
		max := runtime.GOMAXPROCS(-1)
		cpus := runtime.NumCPU()
		if max > cpus {
			max = cpus
		}
		c.MaxConcurrency = max
	}
	if c.Semaphore == nil {
		c.Semaphore = newSemaphore(c.MaxConcurrency)
	}
	if c.Reporter == nil {
		c.Reporter = exc.NewReporter(nil)
	}
	return c, nil
}

type compiler struct {
	Open           func(path string) idl.File
	MaxConcurrency int
	Semaphore      *semaphore
	Reporter       exc.Reporter
}

func (self *compiler) Compile(ctx context.Context, req *ParseRequest) (*ParseResponse, error) {
	targets := make([]string, 0, len(req.Files))
	for _, f := range req.Files {
		targets = append(targets, target.Normalize(f))
	}

	modules := make([]idl.Module, 0, len(targets))
	loaded := &sync.Map{}
	// buffered so workers never block sending after a cancelled fan-in exits
	results := make(chan fileResult, len(targets))
	expectedResults := len(targets)

	for _, t := range targets {
		go func(t string) {
			module, err := self.parseFile(ctx, t, loaded, req.DumpTokens, req.DumpTree)
			results <- fileResult{module, err}
		}(t)
	}

	for x := 0; x < expectedResults; x = x + 1 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-results:
			if result.module != nil {
				modules = append(modules, result.module)
			}
			_ = result.err
		}
	}

	final := &ParseResponse{}
	included := make(map[string]bool)
	for _, mod := range modules {
		if _, ok := included[mod.URI()]; ok {
			continue
		}
		included[mod.URI()] = true
		final.Modules = append(final.Modules, mod)
	}

	caught := self.Reporter.Reported()
	for _, e := range caught {
		if e.Severity() == exc.SeverityError {
			return final, MultiException(caught)
		}
	}
	return final, nil
}

func (self *compiler) parseFile(ctx context.Context, path string, loaded *sync.Map, dumpTokens bool, dumpTree bool) (idl.Module, error) {
	self.Semaphore.Lock()
	defer self.Semaphore.Unlock()
	if _, ok := loaded.Load(path); ok {
		return nil, nil
	}
	loaded.Store(path, true)

	file := self.Open(path)
	if file.Kind(ctx) != idl.FileKindErlang {
		e := exc.New(exc.Location{URI: path}, exc.CodeUnsupportedFileFormat, "unsupported file format")
		return nil, self.Reporter.Report(e)
	}

	lexerFile, err := erlang.NewLexerErlang(self.Reporter).Lex(ctx, file)
	if err != nil {
		return nil, self.Reporter.Report(exc.WrapUnknown(exc.Location{URI: path}, err))
	}
	if dumpTokens {
		if err := self.dumpTokens(ctx, lexerFile); err != nil {
			return nil, err
		}
	}

	module, err := erlang.NewParserErlang(self.Reporter).Parse(ctx, lexerFile)
	if err != nil {
		// already in the reporter
		return nil, err
	}
	if dumpTree {
		fmt.Println(module)
	}
	return module, nil
}

func (self *compiler) dumpTokens(ctx context.Context, lexerFile idl.LexerFile) error {
	tokens, err := lexerFile.Tokens(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tokens.Close(ctx)
	}()
	for {
		maybeToken := tokens.Next(ctx)
		if !maybeToken.IsPresent() {
			return nil
		}
		fmt.Println(maybeToken.Value())
	}
}

type fileResult struct {
	module idl.Module
	err    error
}

type MultiException []exc.Exception

func (self MultiException) Error() string {
	var b strings.Builder
	for _, err := range self[:len(self)-1] {
		b.WriteString(err.Error())
		b.WriteString("; ")
	}
	b.WriteString(self[len(self)-1].Error())
	return b.String()
}
