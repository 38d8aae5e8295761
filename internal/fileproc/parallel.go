// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/panbanda/ooscan/pkg/parser"
	"github.com/panbanda/ooscan/pkg/source"
)

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Len returns the number of collected errors.
func (e *ProcessingErrors) Len() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors)
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d files failed to process (first: %v)", len(e.Errors), e.Errors[0])
}

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
// 2x suits the mix of I/O and CGO parsing work.
const DefaultWorkerMultiplier = 2

// ProgressFunc is called once per file, processed or not.
type ProgressFunc func(path string)

// Options configures MapSourceFiles.
type Options struct {
	// Workers bounds concurrency. <= 0 means 2x NumCPU.
	Workers int
	// MaxFileSize skips larger files. 0 means no limit.
	MaxFileSize int64
	// OnProgress is optional.
	OnProgress ProgressFunc
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// fileWithContent holds a file path and its content.
type fileWithContent struct {
	path    string
	content []byte
}

// MapSourceFiles reads files from src and processes them in parallel, giving
// each call a parser owned by the running worker. Content is read sequentially
// first since git tree sources are not safe for concurrent reads.
//
// Results keep the input order of the files that succeeded. Unreadable files
// and files whose fn fails are reported in the returned errors and left out;
// the run continues. Once ctx is cancelled no new files are started.
func MapSourceFiles[T any](
	ctx context.Context,
	files []string,
	src source.ContentSource,
	opts Options,
	fn func(*parser.Parser, string, []byte) (T, error),
) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	errs := &ProcessingErrors{}
	loaded := make([]fileWithContent, 0, len(files))
	for _, path := range files {
		content, err := src.Read(path)
		if err != nil {
			errs.Add(path, fmt.Errorf("read: %w", err))
			progress(opts.OnProgress, path)
			continue
		}
		if opts.MaxFileSize > 0 && int64(len(content)) > opts.MaxFileSize {
			progress(opts.OnProgress, path)
			continue
		}
		loaded = append(loaded, fileWithContent{path: path, content: content})
	}

	workers := opts.workers()
	parsers := newParserPool(workers)
	defer parsers.close()

	results := make([]T, len(loaded))
	ok := make([]bool, len(loaded))

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx)
	for i, fc := range loaded {
		p.Go(func(ctx context.Context) error {
			defer progress(opts.OnProgress, fc.path)

			select {
			case <-ctx.Done():
				errs.Add(fc.path, ctx.Err())
				return nil
			default:
			}

			psr := parsers.get()
			defer parsers.put(psr)

			result, err := fn(psr, fc.path, fc.content)
			if err != nil {
				errs.Add(fc.path, err)
				return nil
			}
			results[i] = result
			ok[i] = true
			return nil
		})
	}
	_ = p.Wait()

	out := make([]T, 0, len(loaded))
	for i, r := range results {
		if ok[i] {
			out = append(out, r)
		}
	}

	if !errs.HasErrors() {
		return out, nil
	}
	return out, errs
}

func progress(fn ProgressFunc, path string) {
	if fn != nil {
		fn(path)
	}
}

// parserPool hands out at most one parser per worker. Parsers are created on
// demand and closed together.
type parserPool struct {
	ch  chan *parser.Parser
	mu  sync.Mutex
	all []*parser.Parser
}

func newParserPool(size int) *parserPool {
	return &parserPool{ch: make(chan *parser.Parser, size)}
}

func (p *parserPool) get() *parser.Parser {
	select {
	case psr := <-p.ch:
		return psr
	default:
		psr := parser.New()
		p.mu.Lock()
		p.all = append(p.all, psr)
		p.mu.Unlock()
		return psr
	}
}

func (p *parserPool) put(psr *parser.Parser) {
	p.ch <- psr
}

func (p *parserPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, psr := range p.all {
		psr.Close()
	}
	p.all = nil
}

// created reports how many parsers the pool has made.
func (p *parserPool) created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.all)
}
