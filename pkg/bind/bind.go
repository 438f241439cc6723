// Package bind resolves external CAD DSL files, discovers the callables they
// define and turns each into a factory producing included scene nodes.
//
// Host code cannot synthesize named functions at run time, so a bound file
// is exposed as a Library: a table from host-adjusted names to signatures
// plus a generic Make.
//
//	lib, err := binder.Use("steps.scad")
//	n, err := lib.Make("steps", 5)   // steps(n = 5); after "use <.../steps.scad>"
package bind

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chazu/scadgen/pkg/catalog"
	"github.com/chazu/scadgen/pkg/scadparse"
	"github.com/chazu/scadgen/pkg/scene"
)

// ErrNotFound is returned when a path does not resolve to a readable file.
var ErrNotFound = errors.New("dsl file not found")

// Form selects the directive emitted for a bound file.
type Form string

const (
	Use     Form = "use"     // callables only
	Include Form = "include" // callables and top-level statements
)

// ParseForm accepts "use" or "include".
func ParseForm(s string) (Form, error) {
	switch Form(s) {
	case Use, Include:
		return Form(s), nil
	}
	return "", fmt.Errorf("unknown directive %q (want use or include)", s)
}

// Directive returns the directive line for path, e.g. "use <path>".
func (f Form) Directive(path string) string {
	return string(f) + " <" + path + ">"
}

// Binder resolves and parses DSL files. Parsed files are cached by resolved
// path and modification time, so rebinding an unchanged file skips the
// parse. A Binder is safe for concurrent use.
type Binder struct {
	searchPath []string
	logger     *slog.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	modTime time.Time
	size    int64
	file    *scadparse.File
}

// New returns a binder searching the given directories in order. Relative
// directories are taken relative to the working directory at resolve time.
// A nil logger discards output.
func New(searchPath []string, logger *slog.Logger) *Binder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Binder{
		searchPath: append([]string(nil), searchPath...),
		logger:     logger,
		cache:      make(map[string]cacheEntry),
	}
}

// SearchPath returns the directories consulted for relative paths.
func (b *Binder) SearchPath() []string {
	return append([]string(nil), b.searchPath...)
}

// Resolve returns the absolute path of the first regular file matching path.
// Absolute paths are checked as given; relative ones are tried against each
// search directory, then the working directory.
func (b *Binder) Resolve(path string) (string, error) {
	var tried []string
	try := func(candidate string) (string, bool) {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return "", false
		}
		tried = append(tried, abs)
		info, err := os.Stat(abs)
		if err != nil || !info.Mode().IsRegular() {
			return "", false
		}
		return abs, true
	}

	if filepath.IsAbs(path) {
		if abs, ok := try(path); ok {
			return abs, nil
		}
	} else {
		for _, dir := range b.searchPath {
			if abs, ok := try(filepath.Join(dir, path)); ok {
				b.logger.Debug("resolved dsl file", "path", path, "resolved", abs)
				return abs, nil
			}
		}
		if abs, ok := try(path); ok {
			b.logger.Debug("resolved dsl file", "path", path, "resolved", abs)
			return abs, nil
		}
	}
	return "", fmt.Errorf("%w: %s (tried %s)", ErrNotFound, path, strings.Join(tried, ", "))
}

// Use binds path with a "use" directive.
func (b *Binder) Use(path string) (*Library, error) {
	return b.Bind(path, Use)
}

// Include binds path with an "include" directive.
func (b *Binder) Include(path string) (*Library, error) {
	return b.Bind(path, Include)
}

// Bind resolves path, parses it and returns its callables as a Library
// whose factories carry the directive for the resolved path.
func (b *Binder) Bind(path string, form Form) (*Library, error) {
	if _, err := ParseForm(string(form)); err != nil {
		return nil, err
	}
	resolved, err := b.Resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := b.parse(resolved)
	if err != nil {
		return nil, err
	}
	lib := newLibrary(resolved, form, f)
	b.logger.Info("bound dsl file", "path", resolved, "form", string(form), "callables", len(lib.sigs))
	return lib, nil
}

// parse returns the parsed file, reusing the cached parse while the file's
// modification time and size are unchanged.
func (b *Binder) parse(path string) (*scadparse.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", path, err)
	}

	b.mu.Lock()
	entry, ok := b.cache[path]
	b.mu.Unlock()
	if ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
		b.logger.Debug("dsl parse cache hit", "path", path)
		return entry.file, nil
	}

	f, err := scadparse.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", path, err)
	}

	b.mu.Lock()
	b.cache[path] = cacheEntry{modTime: info.ModTime(), size: info.Size(), file: f}
	b.mu.Unlock()
	return f, nil
}

// ---------------------------------------------------------------------------
// Library
// ---------------------------------------------------------------------------

// Library is the set of factories discovered in one bound file.
type Library struct {
	Path      string // resolved absolute path
	Form      Form
	Directive string // "use <Path>" or "include <Path>"
	File      *scadparse.File

	sigs  map[string]*catalog.Signature // keyed by host name
	order []string
}

func newLibrary(path string, form Form, f *scadparse.File) *Library {
	lib := &Library{
		Path:      path,
		Form:      form,
		Directive: form.Directive(path),
		File:      f,
		sigs:      make(map[string]*catalog.Signature, len(f.Callables)),
	}
	for _, c := range f.Callables {
		host := scene.HostName(c.Name)
		if _, dup := lib.sigs[host]; !dup {
			lib.order = append(lib.order, host)
		}
		// A later definition replaces an earlier one, as in the CAD engine.
		lib.sigs[host] = &catalog.Signature{
			Name:       c.Name,
			Kind:       scene.KindIncluded,
			Positional: c.Positional,
			Keyword:    c.Keyword,
			Include:    lib.Directive,
			Doc:        fmt.Sprintf("%s from %s:%d", c.Kind, filepath.Base(path), c.Line),
		}
	}
	return lib
}

// Names returns the host names of the discovered callables in file order.
func (l *Library) Names() []string {
	return append([]string(nil), l.order...)
}

// Signatures returns the discovered signatures in file order.
func (l *Library) Signatures() []*catalog.Signature {
	out := make([]*catalog.Signature, 0, len(l.order))
	for _, name := range l.order {
		out = append(out, l.sigs[name])
	}
	return out
}

// Lookup accepts a host name or the DSL name.
func (l *Library) Lookup(name string) (*catalog.Signature, bool) {
	if s, ok := l.sigs[name]; ok {
		return s, true
	}
	s, ok := l.sigs[scene.HostName(name)]
	return s, ok
}

// Make builds an included node for the named callable.
func (l *Library) Make(name string, args ...any) (*scene.Node, error) {
	s, ok := l.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", l.Path, catalog.UnknownCallableError(name, l.order))
	}
	return s.Make(args...)
}

// MustMake is like Make but panics if binding fails.
func (l *Library) MustMake(name string, args ...any) *scene.Node {
	n, err := l.Make(name, args...)
	if err != nil {
		panic(err)
	}
	return n
}

// Install registers every discovered callable in r, replacing entries with
// the same DSL name.
func (l *Library) Install(r *catalog.Registry) {
	for _, s := range l.Signatures() {
		r.Register(s)
	}
}
