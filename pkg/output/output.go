// Package output writes rendered DSL programs to disk.
//
// By default the program lands next to the Go file that asked for it, with
// the extension replaced by .scad, and the Go source is appended as a block
// comment so the artifact records how it was made.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/chazu/scadgen/pkg/scene"
)

// DefaultName is used when no path is given and no caller source file can be
// found.
const DefaultName = "solid.scad"

// Options controls where and how a program is written.
type Options struct {
	// Path is the output file. When empty it is derived from the source
	// path, or DefaultName in the working directory.
	Path string
	// OutDir, when set and Path is empty, receives the derived file name.
	OutDir string
	// Header is emitted before the include directives.
	Header string
	// SourcePath is the host source recorded in the trailer and used to
	// derive Path. RenderToFile fills it with the caller's file when empty.
	SourcePath string
	// OmitSource suppresses the source trailer.
	OmitSource bool
}

// RenderToFile renders root and writes it, returning the resolved path.
func RenderToFile(root *scene.Node, opts Options) (string, error) {
	if opts.SourcePath == "" {
		opts.SourcePath = callerFile(2)
	}
	return WriteProgram(scene.Render(root, opts.Header), opts)
}

// RenderAnimatedToFile is RenderToFile for an animation.
func RenderAnimatedToFile(f scene.FrameFunc, steps int, backAndForth bool, opts Options) (string, error) {
	if opts.SourcePath == "" {
		opts.SourcePath = callerFile(2)
	}
	return WriteProgram(scene.RenderAnimated(f, steps, backAndForth, opts.Header), opts)
}

// WriteProgram writes an already rendered program, appending the source
// trailer unless disabled. The file is replaced atomically.
func WriteProgram(program string, opts Options) (string, error) {
	path := ResolvePath(opts)

	if !opts.OmitSource && opts.SourcePath != "" {
		src, err := os.ReadFile(opts.SourcePath)
		if err != nil {
			return "", fmt.Errorf("read source %s: %w", opts.SourcePath, err)
		}
		program += Trailer(filepath.Base(opts.SourcePath), string(src))
	}

	if err := writeAtomic(path, []byte(program)); err != nil {
		return "", err
	}
	return path, nil
}

// ResolvePath applies the output path rules to opts.
func ResolvePath(opts Options) string {
	if opts.Path != "" {
		return opts.Path
	}
	name := DefaultName
	if opts.SourcePath != "" {
		name = strings.TrimSuffix(opts.SourcePath, filepath.Ext(opts.SourcePath)) + ".scad"
	}
	if opts.OutDir != "" {
		return filepath.Join(opts.OutDir, filepath.Base(name))
	}
	return name
}

// Trailer wraps source in a labelled block comment. Any "*/" inside the
// source is broken up so the comment cannot end early.
func Trailer(label, source string) string {
	source = strings.ReplaceAll(source, "*/", "*\\/")
	var b strings.Builder
	b.WriteString("\n\n/***********************************************\n")
	fmt.Fprintf(&b, "*  Generated from %s\n", label)
	b.WriteString("************************************************\n\n")
	b.WriteString(source)
	if !strings.HasSuffix(source, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString("\n***********************************************/\n")
	return b.String()
}

// callerFile returns the Go source file skip frames up the stack, or "" when
// it is not a readable .go file (stripped binaries, go run from a cache).
func callerFile(skip int) string {
	_, file, _, ok := runtime.Caller(skip)
	if !ok || filepath.Ext(file) != ".go" {
		return ""
	}
	if _, err := os.Stat(file); err != nil {
		return ""
	}
	return file
}

// writeAtomic writes data to a temporary file in the target directory and
// renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
