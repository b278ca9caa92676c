package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"

	"gopkg.microglot.org/erlc.go/internal/compiler"
	"gopkg.microglot.org/erlc.go/internal/exc"
)

type opts struct {
	DumpTokens bool
	DumpTree   bool
	Watch      bool
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	op := &opts{}
	flags := pflag.NewFlagSet("erlc", pflag.PanicOnError)
	flags.BoolVar(&op.DumpTokens, "dump-tokens", false, "Output the token stream as it is processed")
	flags.BoolVar(&op.DumpTree, "dump-tree", false, "Output the parse tree after parsing")
	flags.BoolVar(&op.Watch, "watch", false, "Stay running and reparse whenever an input file changes.")
	_ = flags.Parse(os.Args[1:])
	targets := flags.Args()

	if !op.Watch {
		os.Exit(run(ctx, op, targets))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = watcher.Close()
	}()
	for _, t := range targets {
		if err := watcher.Add(t); err != nil {
			panic(err)
		}
	}

	_ = run(ctx, op, targets)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				_ = run(ctx, op, targets)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintln(os.Stderr, err.Error())
		}
	}
}

func run(ctx context.Context, op *opts, targets []string) int {
	reporter := exc.NewReporter(nil)
	c, err := compiler.New(compiler.OptionWithExcReporter(reporter))
	if err != nil {
		panic(err)
	}

	out, err := c.Compile(ctx, &compiler.ParseRequest{
		Files:      targets,
		DumpTokens: op.DumpTokens,
		DumpTree:   op.DumpTree,
	})
	for _, w := range reporter.Warnings() {
		fmt.Fprintln(os.Stderr, w.Error())
	}
	if err != nil {
		var me compiler.MultiException
		if errors.As(err, &me) {
			for _, e := range me {
				if e.Severity() == exc.SeverityError {
					fmt.Fprintln(os.Stderr, e.Error())
				}
			}
			return 1
		}
		panic(err)
	}

	for _, module := range out.Modules {
		fmt.Println(module.Name())
	}
	return 0
}
