// Package batch parses many Jack files concurrently.
//
// Each worker owns its own parser, so parsers are never shared between
// goroutines. Results come back in the order the files were named,
// independent of which worker finished first.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tliron/commonlog"

	"github.com/jreyes33/jackparse/jack/cst"
	"github.com/jreyes33/jackparse/jack/grammar"
	"github.com/jreyes33/jackparse/jack/parser"
)

var log = commonlog.GetLogger("jackparse.batch")

var (
	// ErrDecode is returned for files that are not valid UTF-8.
	ErrDecode = errors.New("file is not valid UTF-8")
	// ErrTimeout is returned when a file's parse outlives Options.Timeout.
	ErrTimeout = errors.New("parse timed out")
)

// IOError wraps a failure to read or list a path.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

type Options struct {
	// Table is the grammar to parse with. Nil means grammar.Jack().
	Table *grammar.Table
	// Parser options applied to every file. WithFile is added per file.
	Parser []parser.Option
	// Workers bounds concurrent parses. Zero means runtime.NumCPU().
	Workers int
	// Timeout bounds a single file. Zero means no limit.
	Timeout time.Duration
}

// Result is the outcome for one file. Exactly one of Tree and Err is set.
type Result struct {
	Path     string
	Tree     *cst.Tree
	Err      error
	Elapsed  time.Duration
	TimedOut bool
}

// Expand replaces each directory in paths with the .jack files below it,
// sorted by path. Plain files are kept as given.
func Expand(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, &IOError{Path: path, Err: err}
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".jack") {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, &IOError{Path: path, Err: err}
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	return files, nil
}

// Run parses every file in paths and returns one result per file, in
// order. A cancelled ctx marks the files not yet started as failed with
// ctx's error.
func Run(ctx context.Context, paths []string, opts Options) []Result {
	table := opts.Table
	if table == nil {
		table = grammar.Jack()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(paths))

	results := make([]Result, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = parseFile(ctx, table, paths[i], opts)
			}
		}()
	}

	log.Debugf("parsing %d files with %d workers", len(paths), workers)
	next := 0
feed:
	for ; next < len(paths); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- next:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(paths); i++ {
		results[i] = Result{Path: paths[i], Err: ctx.Err()}
	}
	return results
}

func parseFile(ctx context.Context, table *grammar.Table, path string, opts Options) Result {
	start := time.Now()
	res := Result{Path: path}

	src, err := os.ReadFile(path)
	if err != nil {
		res.Err = &IOError{Path: path, Err: err}
		return finish(res, start)
	}
	if !utf8.Valid(src) {
		res.Err = fmt.Errorf("%s: %w", path, ErrDecode)
		return finish(res, start)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	popts := append(slices.Clip(opts.Parser), parser.WithFile(path))
	p := parser.New(table, popts...)

	type outcome struct {
		tree *cst.Tree
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		tree, err := p.Parse(src)
		done <- outcome{tree, err}
	}()

	select {
	case out := <-done:
		res.Tree, res.Err = out.tree, out.err
	case <-ctx.Done():
		res.TimedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)
		if res.TimedOut {
			res.Err = fmt.Errorf("%s: %w after %s", path, ErrTimeout, opts.Timeout)
		} else {
			res.Err = ctx.Err()
		}
		log.Warningf("%s: abandoned parse: %v", path, res.Err)
	}
	return finish(res, start)
}

func finish(res Result, start time.Time) Result {
	res.Elapsed = time.Since(start)
	if res.Tree != nil {
		log.Infof("%s: parsed in %s with %d diagnostics", res.Path, res.Elapsed, len(res.Tree.Diagnostics))
	}
	return res
}

// Summary counts results by outcome.
type Summary struct {
	Files    int
	Errors   int
	Warnings int
	Failed   int
}

func Summarize(results []Result) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		for _, d := range r.Tree.Diagnostics {
			switch d.Severity {
			case cst.SeverityError:
				s.Errors++
			case cst.SeverityWarning:
				s.Warnings++
			}
		}
	}
	return s
}
